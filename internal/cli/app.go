// Package cli is the finboard command line: the dashboard server plus the
// offline render, inspect and export commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"finboard/internal/aggregate"
	"finboard/internal/config"
	"finboard/internal/fetch"
	"finboard/internal/log"
)

// App is the root command and the state its subcommands share.
type App struct {
	rootCmd *cobra.Command
	version string

	cfg    *config.Config
	logger *log.Logger
}

// NewApp builds the command tree.
func NewApp(version string) *App {
	app := &App{version: version}

	rootCmd := &cobra.Command{
		Use:               "finboard",
		Short:             "Personal finance dashboard",
		Version:           version,
		SilenceUsage:      true,
		PersistentPreRunE: app.setup,
	}
	rootCmd.SetVersionTemplate(`{{printf "finboard version: %s\n" .Version}}`)

	flags := rootCmd.PersistentFlags()
	flags.StringP("config-file", "C", "", "Path to a TOML, YAML, or JSON configuration file")
	flags.String("env-file", ".env", "Environment file loaded before the configuration")
	flags.StringP("data", "D", "", "Read dashboard data from a JSON file instead of the data endpoint")
	flags.String("data-url", "", "Dashboard data endpoint")
	flags.String("locale", "", "Locale for month names, e.g. it_IT")
	flags.String("currency", "", "Currency symbol shown before amounts")
	flags.String("log-level", "", "Log level: debug, info, warn or error")
	flags.String("log-format", "", "Log format: text or json")
	flags.Bool("no-color", false, "Disable colored output")

	rootCmd.AddCommand(
		app.newServeCmd(),
		app.newRenderCmd(),
		app.newInspectCmd(),
		app.newExportCmd(),
	)

	app.rootCmd = rootCmd
	return app
}

// Execute runs the CLI with os.Args.
func (app *App) Execute() error {
	return app.rootCmd.Execute()
}

// ExecuteContext runs the CLI; cancelling ctx stops a running server.
func (app *App) ExecuteContext(ctx context.Context) error {
	return app.rootCmd.ExecuteContext(ctx)
}

// SetArgs replaces os.Args[1:].
func (app *App) SetArgs(args []string) { app.rootCmd.SetArgs(args) }

// SetOutput redirects command output and logs.
func (app *App) SetOutput(out, errOut io.Writer) {
	app.rootCmd.SetOut(out)
	app.rootCmd.SetErr(errOut)
}

// setup loads the env file and configuration, applies flag overrides and
// builds the logger. Precedence: flags, environment, config file, defaults.
func (app *App) setup(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()

	if noColor, _ := flags.GetBool("no-color"); noColor {
		color.NoColor = true
		pterm.DisableColor()
	}

	envFile, _ := flags.GetString("env-file")
	if err := loadEnvFile(envFile); err != nil {
		return err
	}

	configFile, _ := flags.GetString("config-file")
	if configFile == "" {
		configFile = os.Getenv("FINBOARD_CONFIG_FILE")
	}
	cfg, err := config.LoadFrom(configFile)
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}

	override := func(flag string, dst *string) {
		if flags.Changed(flag) {
			*dst, _ = flags.GetString(flag)
		}
	}
	override("data", &cfg.DataFile)
	override("data-url", &cfg.DataURL)
	override("locale", &cfg.Locale)
	override("currency", &cfg.Currency)
	override("log-level", &cfg.LogLevel)
	override("log-format", &cfg.LogFormat)
	if flags.Changed("data-url") && !flags.Changed("data") {
		cfg.DataFile = ""
	}
	if cmd.Name() == "serve" {
		override("port", &cfg.Port)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	logOut := cmd.ErrOrStderr()
	if cmd.Name() == "serve" {
		logOut = cmd.OutOrStdout()
	}
	app.cfg = cfg
	app.logger = newLogger(cfg, logOut)
	return nil
}

// source is the configured data source. A data file wins over the endpoint.
func (app *App) source() fetch.Source {
	if app.cfg.DataFile != "" {
		return fetch.FileSource{Path: app.cfg.DataFile}
	}
	return fetch.NewHTTPSource(app.cfg.DataURL, app.cfg.FetchTimeout)
}

func describe(src fetch.Source) string {
	if s, ok := src.(fmt.Stringer); ok {
		return s.String()
	}
	return "custom"
}

func (app *App) viewOptions() aggregate.Options {
	return aggregate.Options{
		Locale:   app.cfg.MondayLocale(),
		Currency: app.cfg.Currency,
	}
}

// loadViews fetches the payload once and builds every view model.
func (app *App) loadViews(ctx context.Context) (aggregate.Views, error) {
	src := app.source()
	logger := app.logger.With(log.FieldSource, describe(src))

	p, err := src.Load(ctx)
	if err != nil {
		logger.Error("Failed to load dashboard data",
			log.FieldOperation, log.OpFetch,
			log.FieldError, err.Error())
		return aggregate.Views{}, err
	}
	v, err := aggregate.Build(p, app.viewOptions())
	if err != nil {
		logger.Error("Failed to build dashboard views",
			log.FieldOperation, log.OpBuild,
			log.FieldError, err.Error())
		return aggregate.Views{}, err
	}
	return v, nil
}

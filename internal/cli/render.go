package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"finboard/internal/log"
	"finboard/internal/widgets"
	appweb "finboard/web"
)

func (app *App) newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the dashboard once into a standalone HTML file",
		Long: "Render fetches the dashboard data once and writes a self-contained page.\n" +
			"Charts work offline; tab switching needs the server.",
		Args: cobra.NoArgs,
		RunE: app.runRender,
	}
	cmd.Flags().StringP("out", "o", "dashboard.html", "Output file, or - for stdout")
	cmd.Flags().String("title", "", "Page title")
	return cmd
}

func (app *App) runRender(cmd *cobra.Command, _ []string) error {
	out, _ := cmd.Flags().GetString("out")
	title, _ := cmd.Flags().GetString("title")

	shell, err := appweb.NewShell()
	if err != nil {
		return err
	}
	doc, err := shell.Document(appweb.Page{
		Title:      title,
		Anchors:    app.cfg.Anchors,
		Locale:     app.cfg.MondayLocale(),
		Generated:  time.Now(),
		Standalone: true,
	})
	if err != nil {
		return err
	}

	dash := widgets.NewDashboard(doc, widgets.Config{
		Anchors: app.cfg.Anchors,
		Logger:  app.logger,
		View:    app.viewOptions(),
	})
	if err := dash.Load(cmd.Context(), app.source()); err != nil {
		return err
	}
	if werr := dash.Err(); werr != nil {
		app.logger.Warn("Dashboard rendered with missing widgets", log.FieldError, werr.Error())
	}

	var buf bytes.Buffer
	if err := dash.Render(&buf); err != nil {
		return fmt.Errorf("error rendering dashboard: %w", err)
	}

	if out == "-" {
		_, err := io.Copy(cmd.OutOrStdout(), &buf)
		return err
	}
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("error writing %s: %w", out, err)
	}
	app.logger.Info("Dashboard rendered", log.FieldOutput, out, log.FieldOperation, log.OpRender)
	fmt.Fprint(cmd.OutOrStdout(), pterm.Success.Sprintfln("Dashboard written to %s", out))
	return nil
}

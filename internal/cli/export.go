package cli

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"finboard/internal/export"
)

func (app *App) newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the dashboard views to CSV, JSON or PDF",
		Args:  cobra.NoArgs,
		RunE:  app.runExport,
	}
	cmd.Flags().StringSliceP("format", "y", []string{"csv"}, "Export formats: csv, json, pdf")
	cmd.Flags().StringP("dir", "d", "", "Directory to save the files (default: current directory)")
	cmd.Flags().StringP("name", "n", "finboard", "Base name of the files, without extension")
	cmd.Flags().String("title", "", "PDF report title")
	return cmd
}

func (app *App) runExport(cmd *cobra.Command, _ []string) error {
	rawFormats, _ := cmd.Flags().GetStringSlice("format")
	dir, _ := cmd.Flags().GetString("dir")
	name, _ := cmd.Flags().GetString("name")
	title, _ := cmd.Flags().GetString("title")

	formats, err := export.ParseFormats(strings.Join(rawFormats, ","))
	if err != nil {
		return err
	}

	v, err := app.loadViews(cmd.Context())
	if err != nil {
		return err
	}

	e := &export.Exporter{
		Dir:      dir,
		Base:     name,
		Title:    title,
		Currency: app.cfg.Currency,
		Logger:   app.logger,
	}
	paths, err := e.Export(v, formats)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, p := range paths {
		fmt.Fprint(out, pterm.Success.Sprintfln("Saved %s", p))
	}
	return nil
}

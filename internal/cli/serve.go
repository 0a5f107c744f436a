package cli

import (
	"time"

	"github.com/spf13/cobra"

	apphttp "finboard/internal/http"
	"finboard/internal/log"
	"finboard/internal/middleware/ratelimit"
)

const shutdownTimeout = 30 * time.Second

func (app *App) newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			srv := app.newServer()
			app.logger.Info("Starting finboard server",
				"addr", srv.Addr,
				log.FieldSource, describe(app.source()),
				"locale", app.cfg.Locale)
			return serveUntilDone(cmd.Context(), app.logger, srv, shutdownTimeout)
		},
	}
	cmd.Flags().StringP("port", "P", "", "Port to listen on (default from PORT or 8081)")
	return cmd
}

func (app *App) newServer() *apphttp.Server {
	cfg := app.cfg
	srv := apphttp.NewServer(apphttp.Options{
		Addr:        ":" + cfg.Port,
		Source:      app.source(),
		Anchors:     cfg.Anchors,
		View:        app.viewOptions(),
		SessionTTL:  cfg.SessionTTL,
		MaxSessions: cfg.MaxSessions,
		RateLimit:   ratelimit.Config{RequestsPerMinute: cfg.RateLimit},
		Logger:      app.logger.WithComponent(log.ComponentApp),
	})

	// A page load waits on the data endpoint, so writes get the fetch
	// timeout on top of the usual budget.
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = cfg.FetchTimeout + 10*time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16
	return srv
}

package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cesde-ntp/tablero/dataset"
	"github.com/cesde-ntp/tablero/server"
	"github.com/cesde-ntp/tablero/session"
)

var serveAddr string

// serveCmd runs the dashboard and analytics API over HTTP.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard pages and the analytics API over HTTP",
	Long: `Serve every dashboard page per session and the products analytics API.

  POST /sessions                         start a session (X-Session-ID)
  GET  /pages                            list pages
  GET  /pages/{page}                     render a page
  POST /pages/{page}/actions/{action}    toggle, select, refresh or generate
  GET  /api/...                          products analytics

The server stops gracefully on SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := app.cfg
	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	// Fail at startup rather than on the first page view.
	if _, err := loadSales(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := session.NewStore(session.WithTTL(cfg.Server.SessionTTL), session.WithLogger(app.logger))
	srv := server.New(server.Config{
		CORSOrigins: cfg.Server.CORSOrigins,
		RateLimit: server.RateLimitConfig{
			RequestsPerSecond: cfg.Server.RequestsPerSecond,
			Burst:             cfg.Server.Burst,
		},
	}, newDashboard(), store, dataset.Products(), app.logger)

	if err := srv.ListenAndServe(ctx, addr); err != nil && ctx.Err() == nil {
		return classify(err)
	}
	return nil
}


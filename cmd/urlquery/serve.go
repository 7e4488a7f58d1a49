package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/urlquery/internal/config"
	"github.com/vango-dev/urlquery/internal/server"
)

func serveCmd(configPath *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve query state over HTTP and WebSocket",
		Long: `Start the query server.

Routes:
  GET  /api/health
  GET  /api/query?<params>
  POST /api/query
  GET  /ws?<params>
  GET  /metrics

Examples:
  urlquery serve
  urlquery serve --config urlquery.yaml --addr :9090`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}

			logger := cfg.Logger(cmd.ErrOrStderr())
			if cfg.Path() != "" {
				logger.Info("config loaded", "path", cfg.Path())
			}

			srv, err := server.New(cfg, server.WithLogger(logger))
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from config)")
	return cmd
}

package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/reactor/internal/demo"
	"github.com/vango-dev/reactor/pkg/live"
	"github.com/vango-dev/reactor/pkg/vdom"
)

func serveCmd() *cobra.Command {
	var (
		addr  string
		theme string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the demo app over live sessions",
		Long: `Serve the todo demo to browsers. Each browser tab gets its own
app instance on the server; the page's client script applies patches
and forwards events over a websocket.

Examples:
  reactor serve
  reactor serve --addr :8080 --theme dark`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFrom(cmd.Context())
			if addr != "" {
				cfg.Live.Addr = addr
			}

			srv := live.New(demo.TodoApp, live.Config{
				Addr:           cfg.Live.Addr,
				Title:          cfg.Name,
				Path:           cfg.Live.Path,
				MetricsPath:    cfg.Live.MetricsPath,
				ReadTimeout:    cfg.ReadTimeout(),
				WriteTimeout:   cfg.WriteTimeout(),
				MaxMessageSize: cfg.Live.MaxMessageSize,
			}).WithProps(vdom.Props{"title": cfg.Name, demo.ThemeKey: theme})

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			info("serving %s on %s", cfg.Name, cfg.Live.Addr)
			info("metrics at %s", cfg.Live.MetricsPath)
			if err := srv.ListenAndServe(ctx); err != nil {
				return err
			}
			success("stopped")
			return nil
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from reactor.json)")
	cmd.Flags().StringVar(&theme, "theme", "light", "Theme provided to the todo items")

	return cmd
}

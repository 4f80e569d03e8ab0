package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	clierrors "github.com/vango-dev/statebind/internal/errors"
	"github.com/vango-dev/statebind/internal/demo"
	"github.com/vango-dev/statebind/pkg/live"
)

func serveCmd(configPath *string) *cobra.Command {
	var addr, watch string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the counter over websockets",
		Long: `Serve the counter at /ws. Every connection mounts its own component
over the shared state, so all clients see each other's changes.

Also serves /healthz, /state and, when metrics are enabled, the
Prometheus endpoint.

Examples:
  statebind serve
  statebind serve --addr :9090 --watch count.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newEnv(*configPath, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if addr != "" {
				rt.cfg.Server.Addr = addr
			}
			if watch != "" {
				rt.cfg.Watch.File = watch
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, rt)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from config)")
	cmd.Flags().StringVarP(&watch, "watch", "w", "", "Yaml file whose count key drives the counter")

	return cmd
}

func serve(ctx context.Context, rt *env) error {
	cfg := live.Config{Logger: rt.logger}
	if rt.cfg.Metrics.Enabled {
		cfg.Gatherer = rt.registry
		cfg.MetricsPath = rt.cfg.Metrics.Path
	}
	s := live.New(rt.def, demo.Render, rt.loop, cfg)
	srv := &http.Server{
		Addr:              rt.cfg.Server.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go rt.loop.Run(ctx)
	rt.watch(ctx)

	errc := make(chan error, 1)
	go func() {
		rt.logger.Info("listening", "addr", srv.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return clierrors.New("SB060").Wrap(err)
		}
		return nil
	case <-ctx.Done():
	}

	rt.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.Close()
	err := srv.Shutdown(shutdownCtx)
	rt.loop.Close()
	return err
}

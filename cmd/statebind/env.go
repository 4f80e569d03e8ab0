package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/vango-dev/statebind/internal/config"
	"github.com/vango-dev/statebind/internal/demo"
	"github.com/vango-dev/statebind/internal/source"
	"github.com/vango-dev/statebind/pkg/bind"
	"github.com/vango-dev/statebind/pkg/loop"
	"github.com/vango-dev/statebind/pkg/middleware"
)

// env is the wiring shared by every command.
type env struct {
	cfg      config.Config
	logger   *slog.Logger
	loop     *loop.Loop
	app      *demo.App
	def      *bind.Definition
	registry *prometheus.Registry
}

func newEnv(configPath string, logOut io.Writer) (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger := cfg.Log.Logger(logOut)

	l := loop.New(loop.WithLogger(logger))
	app := demo.New(l,
		demo.WithAsyncDelay(cfg.Demo.AsyncDelay),
		demo.WithLoadable(cfg.Demo.LoadableDelay, cfg.Demo.LoadableValue),
	)

	registry := prometheus.NewRegistry()
	var observers []bind.Observer
	if cfg.Metrics.Enabled {
		observers = append(observers, middleware.Prometheus(
			middleware.WithNamespace(cfg.Metrics.Namespace),
			middleware.WithRegistry(registry),
		))
	}
	if cfg.Tracing.Enabled {
		observers = append(observers, middleware.OpenTelemetry(
			middleware.WithTracerName(cfg.Tracing.Name),
		))
	}

	def, err := app.Connect(
		bind.WithLogger(logger),
		bind.WithObserver(middleware.Chain(observers...)),
	)
	if err != nil {
		return nil, err
	}

	return &env{
		cfg:      cfg,
		logger:   logger,
		loop:     l,
		app:      app,
		def:      def,
		registry: registry,
	}, nil
}

// watch starts the file source when one is configured.
func (r *env) watch(ctx context.Context) {
	if r.cfg.Watch.File == "" {
		return
	}
	f := source.NewFile(r.cfg.Watch.File, r.app.Count, r.loop,
		source.WithKey("count"),
		source.WithLogger(r.logger),
	)
	go func() {
		if err := f.Run(ctx); err != nil && ctx.Err() == nil {
			r.logger.Error("file source stopped", "path", r.cfg.Watch.File, "error", err)
		}
	}()
	r.logger.Info("watching file", "path", r.cfg.Watch.File)
}

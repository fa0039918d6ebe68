package commands

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/targetdocs/internal/config"
	"git.home.luguber.info/inful/targetdocs/internal/metrics"
	"git.home.luguber.info/inful/targetdocs/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	InfoDir     string `name:"info-dir" short:"i" help:"Directory of target info files (overrides config)"`
	Out         string `name:"out" short:"o" help:"Output directory for target pages (overrides config)"`
	MetricsAddr string `name:"metrics-addr" help:"Serve Prometheus metrics on this address (enables metrics)"`
}

func (w *WatchCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root, config.Overrides{InfoDir: w.InfoDir, OutputDir: w.Out})
	if err != nil {
		return err
	}
	if w.MetricsAddr != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.ListenAddr = w.MetricsAddr
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var rec metrics.Recorder = metrics.NoopRecorder{}
	if cfg.Metrics.Enabled {
		reg := prom.NewRegistry()
		rec = metrics.NewPrometheusRecorder(reg)
		stop := serveMetrics(cfg.Metrics.ListenAddr, reg)
		defer stop()
	}

	src, filter, err := newSource(cfg)
	if err != nil {
		return err
	}
	gen, cleanup, err := newGenerator(cfg, rec)
	defer cleanup()
	if err != nil {
		return err
	}

	req := newRequest(cfg, src, filter)
	return watch.Run(ctx, watch.Options{
		Dir:             cfg.InfoDir,
		Debounce:        cfg.Watch.DebounceDuration(),
		RefreshInterval: cfg.Watch.RefreshDuration(),
		Rebuild: func(ctx context.Context) error {
			_, err := gen.Run(ctx, req)
			return err
		},
	})
}

// serveMetrics starts the metrics endpoint and returns its shutdown func.
func serveMetrics(addr string, reg *prom.Registry) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler(reg))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics server failed", "addr", addr, "error", err)
		}
	}()
	slog.Info("Serving metrics", "addr", addr, "path", "/metrics")
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

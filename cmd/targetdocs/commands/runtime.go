package commands

import (
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/targetdocs/internal/config"
	ferrors "git.home.luguber.info/inful/targetdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/targetdocs/internal/generate"
	"git.home.luguber.info/inful/targetdocs/internal/metrics"
	"git.home.luguber.info/inful/targetdocs/internal/notify"
	"git.home.luguber.info/inful/targetdocs/internal/retry"
	"git.home.luguber.info/inful/targetdocs/internal/pattern"
	"git.home.luguber.info/inful/targetdocs/internal/state"
	"git.home.luguber.info/inful/targetdocs/internal/targets"
)

// loadConfig reads the configuration file. A missing file at the default
// path falls back to defaults so flags alone can drive a run.
func loadConfig(root *CLI, overrides config.Overrides) (*config.Config, error) {
	var cfg *config.Config
	if _, err := os.Stat(root.Config); os.IsNotExist(err) && isDefaultConfigPath(root.Config) {
		slog.Debug("No configuration file; using defaults", "path", root.Config)
		config.LoadEnvFiles()
		cfg = config.Default()
	} else {
		loaded, err := config.Load(root.Config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	overrides.Apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "configuration validation failed").Build()
	}
	root.configureLogging(cfg)
	return cfg, nil
}

// isDefaultConfigPath reports whether -c was left at its default. Kong
// resolves path flags, so the default arrives absolute.
func isDefaultConfigPath(path string) bool {
	if path == config.DefaultPath {
		return true
	}
	abs, err := filepath.Abs(config.DefaultPath)
	return err == nil && abs == path
}

// newSource builds the configured target source.
func newSource(cfg *config.Config) (targets.Source, *pattern.Filter, error) {
	filter, err := pattern.NewFilter(cfg.Targets.Include)
	if err != nil {
		return nil, nil, ferrors.WrapError(err, ferrors.CategoryConfig, "invalid targets.include").Build()
	}
	switch cfg.Targets.Source {
	case config.SourceFile:
		return &targets.FileSource{Path: cfg.Targets.File, Filter: filter}, filter, nil
	default:
		src := targets.NewRustcSource(cfg.Targets.Rustc)
		src.Concurrency = cfg.Targets.Concurrency
		src.Filter = filter
		return src, filter, nil
	}
}

// newRequest maps the configuration onto a generator request.
func newRequest(cfg *config.Config, src targets.Source, filter *pattern.Filter) generate.Request {
	return generate.Request{
		InfoDir:             cfg.InfoDir,
		OutputDir:           cfg.Output.Directory,
		PlatformSupportFile: cfg.Output.PlatformSupportFile,
		SummaryFile:         cfg.Output.SummaryFile,
		LinkPrefix:          cfg.Output.LinkPrefix,
		StubText:            cfg.StubText,
		Strict:              cfg.Strict,
		Source:              src,
		Filter:              filter,
	}
}

// newGenerator wires the optional state store and notifier. The returned
// cleanup closes whatever was opened.
func newGenerator(cfg *config.Config, rec metrics.Recorder) (*generate.Generator, func(), error) {
	g := generate.New()
	if rec != nil {
		g.Recorder = rec
	}
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.State.Path != "" {
		store, err := openStore(cfg.State.Path)
		if err != nil {
			return nil, cleanup, err
		}
		g.History = store
		closers = append(closers, func() { _ = store.Close() })
	}

	if cfg.Notify.NATSURL != "" {
		n, err := notify.NewNATSNotifier(notify.NATSOptions{
			URL:       cfg.Notify.NATSURL,
			Subject:   cfg.Notify.Subject,
			JetStream: cfg.Notify.JetStream,
			Retry:     retry.NewPolicy(retry.Mode(cfg.Notify.Backoff), 0, 0, cfg.Notify.Retries),
		})
		if err != nil {
			// Notifications are best effort; the run proceeds without them.
			slog.Warn("Notifications disabled", "error", ferrors.WrapError(err, ferrors.CategoryNotify, "connect").Build())
		} else {
			g.Notifier = n
			closers = append(closers, func() { _ = n.Close() })
		}
	}
	return g, cleanup, nil
}

func openStore(path string) (*state.Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create state directory").
				WithContext("path", dir).
				Build()
		}
	}
	store, err := state.Open(path)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryState, "failed to open state store").
			WithContext("path", path).
			Build()
	}
	return store, nil
}

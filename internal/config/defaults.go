package config

import "git.home.luguber.info/inful/targetdocs/internal/targets"

const (
	DefaultInfoDir    = "target-info"
	DefaultOutputDir  = "platform-support"
	DefaultRustc      = "rustc"
	DefaultDebounce   = "300ms"
	DefaultListenAddr = ":9464"
)

func applyDefaults(cfg *Config) {
	if cfg.InfoDir == "" {
		cfg.InfoDir = DefaultInfoDir
	}
	if cfg.Output.Directory == "" {
		cfg.Output.Directory = DefaultOutputDir
	}
	if cfg.Targets.Source == "" {
		cfg.Targets.Source = SourceRustc
	}
	if cfg.Targets.Source == SourceRustc && cfg.Targets.Rustc == "" {
		cfg.Targets.Rustc = DefaultRustc
	}
	if cfg.Targets.Concurrency <= 0 {
		cfg.Targets.Concurrency = targets.DefaultConcurrency
	}
	if cfg.Watch.Debounce == "" {
		cfg.Watch.Debounce = DefaultDebounce
	}
	if cfg.Metrics.ListenAddr == "" {
		cfg.Metrics.ListenAddr = DefaultListenAddr
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = LogLevelInfo
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = LogFormatText
	}
}

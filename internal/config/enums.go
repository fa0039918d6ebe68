package config

import (
	"git.home.luguber.info/inful/targetdocs/internal/foundation/normalization"
)

// SourceKind selects the target source.
type SourceKind string

const (
	SourceRustc SourceKind = "rustc"
	SourceFile  SourceKind = "file"
)

var sourceKindNormalizer = normalization.NewEnumNormalizer("targets.source", map[string]SourceKind{
	"rustc": SourceRustc,
	"file":  SourceFile,
})

// LogLevel enumerates supported logging levels.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var logLevelNormalizer = normalization.NewEnumNormalizer("logging.level", map[string]LogLevel{
	"debug":   LogLevelDebug,
	"info":    LogLevelInfo,
	"warn":    LogLevelWarn,
	"warning": LogLevelWarn,
	"error":   LogLevelError,
})

// LogFormat enumerates supported log output formats.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

var logFormatNormalizer = normalization.NewEnumNormalizer("logging.format", map[string]LogFormat{
	"json": LogFormatJSON,
	"text": LogFormatText,
})

// normalize case-folds enumerations. Empty values are left for defaults;
// unrecognized ones are errors.
func normalize(cfg *Config) error {
	if cfg.Targets.Source != "" {
		v, err := sourceKindNormalizer.Normalize(string(cfg.Targets.Source))
		if err != nil {
			return err
		}
		cfg.Targets.Source = v
	}
	if cfg.Logging.Level != "" {
		v, err := logLevelNormalizer.Normalize(string(cfg.Logging.Level))
		if err != nil {
			return err
		}
		cfg.Logging.Level = v
	}
	if cfg.Logging.Format != "" {
		v, err := logFormatNormalizer.Normalize(string(cfg.Logging.Format))
		if err != nil {
			return err
		}
		cfg.Logging.Format = v
	}
	return nil
}

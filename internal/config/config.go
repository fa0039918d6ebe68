// Package config loads targetdocs.yaml.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/targetdocs/internal/foundation/errors"
)

// Version is the only configuration version this build understands.
const Version = "1.0"

// DefaultPath is the configuration file used when -c is not given.
const DefaultPath = "targetdocs.yaml"

// Config is the targetdocs configuration file.
type Config struct {
	Version string `yaml:"version"`
	// InfoDir holds the target info files.
	InfoDir  string         `yaml:"info_dir"`
	Output   OutputConfig   `yaml:"output"`
	Targets  TargetsConfig  `yaml:"targets"`
	StubText string         `yaml:"stub_text,omitempty"`
	Strict   bool           `yaml:"strict,omitempty"`
	State    StateConfig    `yaml:"state,omitempty"`
	Watch    WatchConfig    `yaml:"watch,omitempty"`
	Metrics  MetricsConfig  `yaml:"metrics,omitempty"`
	Notify   NotifyConfig   `yaml:"notify,omitempty"`
	Logging  LoggingConfig  `yaml:"logging,omitempty"`
}

// OutputConfig says where generated documents go.
type OutputConfig struct {
	// Directory receives one page per target.
	Directory string `yaml:"directory"`
	// PlatformSupportFile gets the support table spliced between markers. Optional.
	PlatformSupportFile string `yaml:"platform_support_file,omitempty"`
	// SummaryFile gets the page list spliced between markers. Optional.
	SummaryFile string `yaml:"summary_file,omitempty"`
	// LinkPrefix is prepended to page file names in the table and summary.
	LinkPrefix string `yaml:"link_prefix,omitempty"`
}

// TargetsConfig selects where the target list comes from.
type TargetsConfig struct {
	Source      SourceKind `yaml:"source"`
	Rustc       string     `yaml:"rustc,omitempty"`
	File        string     `yaml:"file,omitempty"`
	Concurrency int        `yaml:"concurrency,omitempty"`
	// Include limits the documented targets to those matching any of these globs.
	Include []string `yaml:"include,omitempty"`
}

// StateConfig locates the run history database. An empty path disables it.
type StateConfig struct {
	Path string `yaml:"path,omitempty"`
}

// WatchConfig tunes the watch command.
type WatchConfig struct {
	Debounce string `yaml:"debounce,omitempty"`
	// RefreshInterval forces a full run periodically, picking up compiler changes.
	RefreshInterval string `yaml:"refresh_interval,omitempty"`
}

// MetricsConfig enables the Prometheus endpoint of the watch command.
type MetricsConfig struct {
	Enabled    bool   `yaml:"enabled,omitempty"`
	ListenAddr string `yaml:"listen_addr,omitempty"`
}

// NotifyConfig enables run notifications over NATS.
type NotifyConfig struct {
	NATSURL   string `yaml:"nats_url,omitempty"`
	Subject   string `yaml:"subject,omitempty"`
	JetStream bool   `yaml:"jetstream,omitempty"`
	// Retries is the number of republish attempts after a failed publish.
	Retries int    `yaml:"retries,omitempty"`
	Backoff string `yaml:"backoff,omitempty"` // fixed, linear or exponential
}

// LoggingConfig selects the log handler.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level,omitempty"`
	Format LogFormat `yaml:"format,omitempty"`
}

// DebounceDuration returns the parsed watch debounce.
func (w WatchConfig) DebounceDuration() time.Duration {
	d, _ := time.ParseDuration(w.Debounce)
	return d
}

// RefreshDuration returns the parsed refresh interval, zero when disabled.
func (w WatchConfig) RefreshDuration() time.Duration {
	d, _ := time.ParseDuration(w.RefreshInterval)
	return d
}

// Load reads, expands, defaults and validates the configuration at path.
func Load(path string) (*Config, error) {
	LoadEnvFiles()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ferrors.NotFoundError("configuration file not found").
			WithContext("path", path).
			WithContext("hint", "run 'targetdocs init' to create one").
			Build()
	}
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to read config file").
			WithContext("path", path).
			Build()
	}
	return Parse(data)
}

// Parse decodes configuration content. Environment references are expanded
// before decoding.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to unmarshal config").Build()
	}
	if cfg.Version != Version {
		return nil, ferrors.ConfigError(fmt.Sprintf("unsupported configuration version: %q (expected %s)", cfg.Version, Version)).Build()
	}

	if err := normalize(&cfg); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "normalize").Build()
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "configuration validation failed").Build()
	}
	return &cfg, nil
}

// Default returns a configuration with every default applied, used when no
// configuration file exists and flags supply the rest.
func Default() *Config {
	cfg := &Config{Version: Version}
	applyDefaults(cfg)
	return cfg
}

// Init writes an example configuration file.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return ferrors.ValidationError("configuration file already exists").
			WithContext("path", path).
			WithContext("hint", "use --force to overwrite").
			Build()
	}

	example := Config{
		Version: Version,
		InfoDir: "src/doc/rustc/target-info",
		Output: OutputConfig{
			Directory:           "src/doc/rustc/src/platform-support",
			PlatformSupportFile: "src/doc/rustc/src/platform-support.md",
			SummaryFile:         "src/doc/rustc/src/SUMMARY.md",
			LinkPrefix:          "platform-support",
		},
		Targets: TargetsConfig{
			Source:      SourceRustc,
			Rustc:       "${RUSTC}",
			Concurrency: 8,
		},
		State: StateConfig{Path: ".targetdocs/state.db"},
		Watch: WatchConfig{Debounce: "300ms"},
		Logging: LoggingConfig{
			Level:  LogLevelInfo,
			Format: LogFormatText,
		},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryInternal, "failed to marshal config").Build()
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write config file").
			WithContext("path", path).
			Build()
	}
	return nil
}

package config

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"git.home.luguber.info/inful/targetdocs/internal/pattern"
)

func init() {
	// Report fields by their YAML keys.
	validation.ErrorTag = "yaml"
}

// Validate checks the configuration after defaults have been applied.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Version, validation.Required, validation.In(Version)),
		validation.Field(&c.InfoDir, validation.Required),
		validation.Field(&c.Output),
		validation.Field(&c.Targets),
		validation.Field(&c.Watch),
		validation.Field(&c.Metrics),
		validation.Field(&c.Notify),
	)
}

// Validate implements validation.Validatable.
func (o OutputConfig) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.Directory, validation.Required),
	)
}

// Validate implements validation.Validatable.
func (t TargetsConfig) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.Source, validation.Required, validation.In(SourceRustc, SourceFile)),
		validation.Field(&t.Rustc, validation.When(t.Source == SourceRustc, validation.Required)),
		validation.Field(&t.File, validation.When(t.Source == SourceFile, validation.Required)),
		validation.Field(&t.Concurrency, validation.Min(1), validation.Max(256)),
		validation.Field(&t.Include, validation.Each(validation.By(validGlob))),
	)
}

// Validate implements validation.Validatable.
func (w WatchConfig) Validate() error {
	return validation.ValidateStruct(&w,
		validation.Field(&w.Debounce, validation.By(positiveDuration)),
		validation.Field(&w.RefreshInterval, validation.By(positiveDuration)),
	)
}

// Validate implements validation.Validatable.
func (m MetricsConfig) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.ListenAddr, validation.When(m.Enabled, validation.Required)),
	)
}

// Validate implements validation.Validatable.
func (n NotifyConfig) Validate() error {
	return validation.ValidateStruct(&n,
		validation.Field(&n.Subject, validation.When(n.NATSURL == "", validation.Empty.Error("requires nats_url"))),
		validation.Field(&n.Retries, validation.Min(0), validation.Max(10)),
		validation.Field(&n.Backoff, validation.In("fixed", "linear", "exponential")),
	)
}

func positiveDuration(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return validation.NewError("validation_duration_invalid", "must be a duration such as 300ms or 1h")
	}
	if d <= 0 {
		return validation.NewError("validation_duration_positive", "must be positive")
	}
	return nil
}

func validGlob(value any) error {
	s, _ := value.(string)
	if _, err := pattern.Compile(s); err != nil {
		return validation.NewError("validation_glob_invalid", err.Error())
	}
	return nil
}

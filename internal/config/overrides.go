package config

// Overrides are command-line values that win over the configuration file.
// Zero values leave the file's setting untouched.
type Overrides struct {
	InfoDir   string
	OutputDir string
	Strict    bool
	Include   []string
}

// Apply copies the set overrides onto cfg.
func (o Overrides) Apply(cfg *Config) {
	if o.InfoDir != "" {
		cfg.InfoDir = o.InfoDir
	}
	if o.OutputDir != "" {
		cfg.Output.Directory = o.OutputDir
	}
	if o.Strict {
		cfg.Strict = true
	}
	if len(o.Include) > 0 {
		cfg.Targets.Include = o.Include
	}
}

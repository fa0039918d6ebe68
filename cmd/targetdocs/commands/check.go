package commands

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/targetdocs/internal/config"
	"git.home.luguber.info/inful/targetdocs/internal/infofile"
	"git.home.luguber.info/inful/targetdocs/internal/targets"
)

// CheckCmd implements the 'check' command: validation only, nothing is
// rendered or written.
type CheckCmd struct {
	InfoDir string `name:"info-dir" short:"i" help:"Directory of target info files (overrides config)"`
	Strict  bool   `help:"Treat validation warnings as errors"`
}

func (c *CheckCmd) Run(global *Global, root *CLI) error {
	cfg, err := loadConfig(root, config.Overrides{InfoDir: c.InfoDir, Strict: c.Strict})
	if err != nil {
		return err
	}
	set, err := infofile.LoadDir(cfg.InfoDir)
	if err != nil {
		return err
	}
	src, _, err := newSource(cfg)
	if err != nil {
		return err
	}
	ctx := context.Background()
	ts, err := src.Targets(ctx)
	if err != nil {
		return err
	}
	known, err := targets.AllNames(ctx, src, ts)
	if err != nil {
		return err
	}

	report := set.Validate(known)
	for _, p := range report.Problems {
		_, _ = fmt.Fprintf(global.Out, "%s: %s\n", p.Severity, p)
	}
	if err := report.Err(cfg.Strict); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(global.Out, "%d info files, %d targets: ok (%d warnings)\n",
		len(set.Files), len(ts), len(report.Warnings()))
	return nil
}

package commands

import (
	"context"
	"fmt"
	"strings"

	"git.home.luguber.info/inful/targetdocs/internal/assemble"
	"git.home.luguber.info/inful/targetdocs/internal/config"
	"git.home.luguber.info/inful/targetdocs/internal/infofile"
)

// ListCmd implements the 'list' command.
type ListCmd struct {
	Target  []string `name:"target" short:"t" help:"Only list targets matching these globs"`
	Sources bool     `help:"Show which info file provides each section"`
}

func (l *ListCmd) Run(global *Global, root *CLI) error {
	cfg, err := loadConfig(root, config.Overrides{Include: l.Target})
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
	ts, err := src.Targets(context.Background())
	if err != nil {
		return err
	}

	pages := assemble.AssembleAll(ts, set, assemble.Options{StubText: cfg.StubText})
	for _, p := range pages {
		files := "-"
		if len(p.Sources) > 0 {
			files = strings.Join(p.Sources, ", ")
		}
		_, _ = fmt.Fprintf(global.Out, "%s\ttier %s\t%d/%d sections\t%s\n",
			p.Target.Name, p.Target.Metadata.TierLabel(),
			len(p.Sections)-len(p.Stubbed()), len(p.Sections), files)
		if !l.Sources {
			continue
		}
		for _, s := range p.Sections {
			from := s.Source
			if s.Stubbed {
				from = "(stub)"
			}
			_, _ = fmt.Fprintf(global.Out, "  %-24s %s\n", s.Name, from)
		}
	}
	return nil
}

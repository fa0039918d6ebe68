package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/targetdocs/internal/config"
)

// GenerateCmd implements the 'generate' command.
type GenerateCmd struct {
	InfoDir string `name:"info-dir" short:"i" help:"Directory of target info files (overrides config)"`
	Out     string `name:"out" short:"o" help:"Output directory for target pages (overrides config)"`
	Check   bool   `help:"Fail if any generated document is out of date instead of writing"`
	Strict  bool   `help:"Treat validation warnings as errors"`
}

func (g *GenerateCmd) Run(global *Global, root *CLI) error {
	cfg, err := loadConfig(root, config.Overrides{InfoDir: g.InfoDir, OutputDir: g.Out, Strict: g.Strict})
	if err != nil {
		return err
	}
	src, filter, err := newSource(cfg)
	if err != nil {
		return err
	}
	gen, cleanup, err := newGenerator(cfg, nil)
	defer cleanup()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	req := newRequest(cfg, src, filter)
	req.Check = g.Check
	res, err := gen.Run(ctx, req)
	if res != nil {
		for _, w := range res.Warnings {
			_, _ = fmt.Fprintf(global.Out, "warning: %s\n", w)
		}
	}
	if err != nil {
		return err
	}
	if g.Check {
		_, _ = fmt.Fprintf(global.Out, "Up to date: %s\n", res)
		return nil
	}
	_, _ = fmt.Fprintf(global.Out, "Generated %s\n", res)
	return nil
}

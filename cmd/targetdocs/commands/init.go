package commands

import (
	"fmt"

	"git.home.luguber.info/inful/targetdocs/internal/config"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite existing configuration file"`
}

func (i *InitCmd) Run(global *Global, root *CLI) error {
	_, _ = fmt.Fprintf(global.Out, "Writing configuration to %s\n", root.Config)
	if err := config.Init(root.Config, i.Force); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(global.Out, "Initialized successfully")
	return nil
}

package main

import (
	"log/slog"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/targetdocs/cmd/targetdocs/commands"
	ferrors "git.home.luguber.info/inful/targetdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/targetdocs/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("targetdocs"),
		kong.Description("Generate per-target platform support pages from target info files."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	global := commands.NewGlobal()
	if err := parser.Run(global, cli); err != nil {
		ferrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}

package main

import (
	"log/slog"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/checkem/cmd/checkem/commands"
	"git.home.luguber.info/inful/checkem/internal/foundation/errors"
	"git.home.luguber.info/inful/checkem/internal/version"
)

func main() {
	var cli commands.CLI
	global := commands.NewGlobal()

	ctx := kong.Parse(&cli,
		kong.Name("checkem"),
		kong.Description("Track whether values, files and repositories changed since they were last checked."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
		kong.Bind(global),
	)

	if err := ctx.Run(global, &cli); err != nil {
		errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}

package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/imgup/cmd/imgup/commands"
	"git.home.luguber.info/inful/imgup/internal/foundation/errors"
	"git.home.luguber.info/inful/imgup/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("imgup"),
		kong.Description("Upload images referenced by markdown notes and rewrite the links."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	global := &commands.Global{Logger: slog.Default(), Out: os.Stdout}
	err := parser.Run(global, cli)
	errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
}

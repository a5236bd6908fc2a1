package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"

	"github.com/broady/polyenum/cmd/polyenum/internal/check"
	"github.com/broady/polyenum/cmd/polyenum/internal/gen"
	"github.com/broady/polyenum/internal/config"
	"github.com/broady/polyenum/internal/logging"
)

type CLI struct {
	Config  string `help:"Config file (default: polyenum.toml or polyenum.yaml found by walking up)." type:"existingfile" short:"c"`
	Verbose bool   `help:"Log every generation stage." short:"v"`
	LogJSON bool   `help:"Log as JSON." name:"log-json"`

	Version VersionCmd `cmd:"" help:"Print version information."`
	Gen     gen.Cmd    `cmd:"" help:"Generate union dispatch code for polyenum input files."`
	Check   check.Cmd  `cmd:"" help:"Report generated files that are missing or out of date."`
}

func main() {
	cli := &CLI{}
	kctx := kong.Parse(cli,
		kong.Name("polyenum"),
		kong.Description("Generate tagged-union dispatch code from polyenum input files."),
		kong.UsageOnError(),
	)

	log := logging.New(logging.Options{Verbose: cli.Verbose, JSON: cli.LogJSON})
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	kctx.BindTo(ctx, (*context.Context)(nil))
	kctx.Bind(log, config.Options{Path: cli.Config})
	err := kctx.Run()
	stop()
	_ = log.Sync()
	if err != nil {
		pterm.Error.Println(err)
		if hints := errors.FlattenHints(err); hints != "" {
			pterm.Info.Println(hints)
		}
		os.Exit(1)
	}
}

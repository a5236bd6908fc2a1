package check

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"go.uber.org/zap"

	"github.com/broady/polyenum/cmd/polyenum/internal/gen"
	"github.com/broady/polyenum/internal/config"
	"github.com/broady/polyenum/internal/discover"
	"github.com/broady/polyenum/internal/runner"
)

type Cmd struct {
	Patterns []string `arg:"" optional:"" help:"Input files (*.go) or package patterns (default: .)."`

	config.Overrides `embed:""`
}

func (c *Cmd) Run(ctx context.Context, log *zap.Logger, opts config.Options) error {
	cfg, err := gen.Setup(opts, c.Overrides, log)
	if err != nil {
		return err
	}

	found, err := discover.Find(c.Patterns, "")
	if err != nil {
		return errors.Wrap(err, "discover")
	}

	report, err := runner.Run(ctx, found.Inputs, runner.Options{
		Config: cfg.Generator(log),
		Jobs:   cfg.Jobs,
		Check:  true,
	})
	if err != nil {
		return err
	}

	gen.Print(report)
	if err := gen.Failure(report); err != nil {
		return err
	}

	if drift := report.Drift(); len(drift) > 0 {
		return errors.WithHint(
			errors.Newf("%d of %d generated files are stale", len(drift), len(report.Outcomes)),
			"run polyenum gen to regenerate them")
	}
	pterm.Success.Printfln("%d generated files are up to date", len(report.Outcomes))
	return nil
}

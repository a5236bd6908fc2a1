package gen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"go.uber.org/zap"

	"github.com/broady/polyenum/internal/config"
	"github.com/broady/polyenum/internal/discover"
	"github.com/broady/polyenum/internal/runner"
	"github.com/broady/polyenum/internal/watch"
	"github.com/broady/polyenum/polyenumgen/diag"
)

type Cmd struct {
	Patterns []string `arg:"" optional:"" help:"Input files (*.go) or package patterns (default: .)."`
	Watch    bool     `help:"Watch input files and regenerate on change." short:"w"`

	config.Overrides `embed:""`
}

func (c *Cmd) Run(ctx context.Context, log *zap.Logger, opts config.Options) error {
	cfg, err := Setup(opts, c.Overrides, log)
	if err != nil {
		return err
	}

	found, err := discover.Find(c.Patterns, "")
	if err != nil {
		return errors.Wrap(err, "discover")
	}
	if len(found.Inputs) == 0 && !c.Watch {
		pterm.Warning.Println("No polyenum input files found.")
		return nil
	}

	runOpts := runner.Options{Config: cfg.Generator(log), Jobs: cfg.Jobs}
	report, err := runner.Run(ctx, found.Inputs, runOpts)
	if err != nil {
		return err
	}
	Print(report)
	if !c.Watch {
		return Failure(report)
	}

	w, err := watch.New(found.Dirs, watch.Options{Match: isInput, Logger: log})
	if err != nil {
		return err
	}
	defer w.Close()

	pterm.Info.Printfln("Watching %d directories. Press Ctrl+C to stop.", len(found.Dirs))
	err = w.Run(ctx, func(ctx context.Context, changed []string) {
		inputs := make([]discover.Input, len(changed))
		for i, p := range changed {
			inputs[i] = discover.Input{Path: p}
		}
		report, err := runner.Run(ctx, inputs, runOpts)
		if err != nil {
			log.Warn("regeneration interrupted", zap.Error(err))
			return
		}
		Print(report)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Setup loads the configuration and applies flag overrides.
func Setup(opts config.Options, o config.Overrides, log *zap.Logger) (*config.Config, error) {
	cfg, err := config.Load(opts)
	if err != nil {
		return nil, err
	}
	if err := cfg.Apply(o); err != nil {
		return nil, err
	}
	if cfg.File != "" {
		log.Debug("loaded config", zap.String("path", cfg.File))
	}
	return cfg, nil
}

// Failure summarizes the failed inputs of report, or returns nil. The
// individual errors have already been printed.
func Failure(report *runner.Report) error {
	if n := report.Failed(); n > 0 {
		return errors.Newf("%d of %d inputs failed", n, len(report.Outcomes))
	}
	return nil
}

// Print writes one status line per outcome.
func Print(report *runner.Report) {
	for _, o := range report.Outcomes {
		rel := relPath(o.Input)
		switch {
		case o.Err != nil:
			pterm.Error.Println(describe(rel, o.Err))
			if hints := errors.FlattenHints(o.Err); hints != "" {
				pterm.Printfln("  %s %s", pterm.Gray("hint:"), hints)
			}
		case o.Drift != nil:
			pterm.Warning.Println(relPath(o.Drift.Path) + driftSuffix(o.Drift.Missing))
		default:
			pterm.Success.Printfln("%s %s %s %s",
				rel,
				pterm.Gray("→"),
				filepath.Base(o.Output),
				pterm.Gray(pterm.Sprintf("(%s: %d variants, %d methods)", o.Result.Union, o.Result.Variants, o.Result.Methods)))
		}
	}
}

func driftSuffix(missing bool) string {
	if missing {
		return " is missing"
	}
	return " is out of date"
}

func isInput(path string) bool {
	if filepath.Ext(path) != ".go" {
		return false
	}
	ok, err := discover.IsInput(path)
	return err == nil && ok
}

func relPath(path string) string {
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	if rel, err := filepath.Rel(wd, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}

// describe labels err with its diagnostic class, when it has one.
func describe(rel string, err error) string {
	if kind := diag.Kind(err); kind != nil {
		return fmt.Sprintf("%s: %v: %v", rel, kind, err)
	}
	return fmt.Sprintf("%s: %v", rel, err)
}

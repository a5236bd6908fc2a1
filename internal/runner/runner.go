// Package runner generates every discovered input, in parallel.
//
// Each input is generated independently; one failing input does not stop
// the others. In check mode nothing is written and outputs that differ from
// what would be generated are reported as drift.
package runner

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/broady/polyenum/internal/discover"
	"github.com/broady/polyenum/polyenumgen"
	"github.com/broady/polyenum/polyenumgen/golang"
	"github.com/broady/polyenum/polyenumgen/sink"
)

// UnformattedSuffix is appended to the output path when generated source
// fails to format and is dumped for inspection.
const UnformattedSuffix = ".unformatted"

// Options configures a run.
type Options struct {
	// Config is passed to every generation. Its Logger is also used by
	// the runner.
	Config polyenumgen.Config

	// Jobs bounds concurrent generations. Default: runtime.NumCPU().
	Jobs int

	// Check compares instead of writing.
	Check bool
}

// Outcome is the result for one input.
type Outcome struct {
	Input  string
	Output string // absolute output path, "" when generation failed early
	Result *polyenumgen.Result
	Err    error

	// Drift is set in check mode when the output is missing or stale.
	Drift *sink.Drift
}

// Report collects the outcome of every input, in input order.
type Report struct {
	Outcomes []Outcome
}

// Err joins the errors of every failed input, or returns nil.
func (r *Report) Err() error {
	var errs []error
	for _, o := range r.Outcomes {
		if o.Err != nil {
			errs = append(errs, errors.Wrapf(o.Err, "%s", o.Input))
		}
	}
	return errors.Join(errs...)
}

// Failed counts the inputs that failed.
func (r *Report) Failed() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Err != nil {
			n++
		}
	}
	return n
}

// Drift returns every drifting output.
func (r *Report) Drift() []sink.Drift {
	var out []sink.Drift
	for _, o := range r.Outcomes {
		if o.Drift != nil {
			out = append(out, *o.Drift)
		}
	}
	return out
}

// Run generates each input. The returned error is only for the run as a
// whole, such as cancellation; per-input failures are in the Report.
func Run(ctx context.Context, inputs []discover.Input, opts Options) (*Report, error) {
	log := opts.Config.Logger
	if log == nil {
		log = zap.NewNop()
		opts.Config.Logger = log
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	report := &Report{Outcomes: make([]Outcome, len(inputs))}
	var failed atomic.Int32

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, in := range inputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			o := runOne(ctx, in.Path, opts, log)
			if o.Err != nil {
				failed.Add(1)
			}
			report.Outcomes[i] = o
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}

	log.Debug("run complete",
		zap.Int("inputs", len(inputs)),
		zap.Int32("failed", failed.Load()),
		zap.Bool("check", opts.Check))
	return report, nil
}

func runOne(ctx context.Context, input string, opts Options, log *zap.Logger) Outcome {
	o := Outcome{Input: input}
	dir := filepath.Dir(input)

	var out sink.OutputSink
	var check *sink.CheckSink
	if opts.Check {
		check = sink.NewCheckSink(dir)
		out = check
	} else {
		out = sink.NewFilesystemSink(dir)
	}

	res, err := polyenumgen.FromFile(input).WithConfig(opts.Config).To(ctx, out)
	if err != nil {
		o.Err = err
		var fe *golang.FormatError
		if !opts.Check && errors.As(err, &fe) {
			o.Err = dumpUnformatted(input, opts.Config.Suffix, fe, err, log)
		}
		return o
	}

	o.Result = res
	o.Output = filepath.Join(dir, res.Output)
	if check != nil {
		if d := check.Drift(); len(d) > 0 {
			o.Drift = &sink.Drift{Path: filepath.Join(dir, d[0].Path), Missing: d[0].Missing}
		}
	}
	log.Debug("generated", zap.String("input", input), zap.String("output", o.Output), zap.Bool("drift", o.Drift != nil))
	return o
}

// dumpUnformatted writes the source that failed to format next to where the
// output would have gone, and hints at it in the returned error.
func dumpUnformatted(input, suffix string, fe *golang.FormatError, err error, log *zap.Logger) error {
	path := filepath.Join(filepath.Dir(input), polyenumgen.OutputName(input, suffix)+UnformattedSuffix)
	if werr := os.WriteFile(path, fe.Source, 0644); werr != nil {
		log.Warn("could not save unformatted output", zap.String("path", path), zap.Error(werr))
		return err
	}
	log.Debug("saved unformatted output", zap.String("path", path))
	return errors.WithHintf(err, "the unformatted output was saved to %s", path)
}

package polyenumgen

import (
	"context"

	"go.uber.org/zap"

	"github.com/broady/polyenum/polyenumgen/model"
	"github.com/broady/polyenum/polyenumgen/sink"
)

// Generator provides a fluent API for code generation.
// Create with FromFile() or FromSource() and configure with method chaining.
//
// Example:
//
//	polyenumgen.FromFile("moves.polyenum.go").
//	    Builder("makeMoves").
//	    Receiver(model.ReceiverPointer).
//	    ToDir(ctx, ".")
type Generator struct {
	in  Input
	cfg Config
}

// FromFile creates a Generator reading the input from path.
func FromFile(path string) *Generator {
	return &Generator{in: Input{Filename: path}}
}

// FromSource creates a Generator for an input held in memory. name is used
// in diagnostics, the output header and the output file name.
func FromSource(name string, src []byte) *Generator {
	if src == nil {
		src = []byte{}
	}
	return &Generator{in: Input{Filename: name, Src: src}}
}

// WithConfig replaces the accumulated configuration with cfg. Options set
// afterwards apply on top of it.
func (g *Generator) WithConfig(cfg Config) *Generator {
	cfg.Header = append([]string(nil), cfg.Header...)
	g.cfg = cfg
	return g
}

// Builder overrides the name of the builder helper.
func (g *Generator) Builder(name string) *Generator {
	g.cfg.Builder = name
	return g
}

// Receiver sets the default dispatcher receiver.
func (g *Generator) Receiver(kind model.ReceiverKind) *Generator {
	g.cfg.Receiver = kind
	return g
}

// PositionalPrefix sets the prefix of synthesized positional field names.
func (g *Generator) PositionalPrefix(prefix string) *Generator {
	g.cfg.PositionalPrefix = prefix
	return g
}

// Suffix sets the output file suffix.
func (g *Generator) Suffix(suffix string) *Generator {
	g.cfg.Suffix = suffix
	return g
}

// RuntimeImport sets the import path of the runtime support package.
func (g *Generator) RuntimeImport(path string) *Generator {
	g.cfg.RuntimeImport = path
	return g
}

// Header adds comment lines under the generated-code line.
func (g *Generator) Header(lines ...string) *Generator {
	g.cfg.Header = append(g.cfg.Header, lines...)
	return g
}

// Logger sets the logger for stage debug output.
func (g *Generator) Logger(log *zap.Logger) *Generator {
	g.cfg.Logger = log
	return g
}

// Config returns the accumulated configuration.
func (g *Generator) Config() Config {
	return g.cfg
}

// Generate returns the generated file in memory without writing to disk.
// Use ToDir() to write it instead.
func (g *Generator) Generate(ctx context.Context) (*Result, error) {
	return Generate(ctx, g.in, g.cfg)
}

// To generates and writes the output through s.
func (g *Generator) To(ctx context.Context, s sink.OutputSink) (*Result, error) {
	res, err := g.Generate(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.WriteFile(ctx, res.Output, res.Content); err != nil {
		return nil, err
	}
	return res, nil
}

// ToDir generates and writes the output into dir.
// This is a terminal operation that writes to disk.
func (g *Generator) ToDir(ctx context.Context, dir string) (*Result, error) {
	return g.To(ctx, sink.NewFilesystemSink(dir))
}

// Package polyenumgen generates tagged-union dispatch code from a polyenum
// input file.
//
// An input file holds one interface and one union. The union is written as
// a struct whose fields are its variants:
//
//	//go:build polyenum
//
//	package cards
//
//	type Move interface {
//		Execute(log *Log)
//	}
//
//	type Moves struct {
//		Attack struct{ CardID uint32 }
//		Defend struct{}
//	}
//
// Generate turns it into a Go file holding the interface, one product type
// per variant, the rebuilt Moves union with a dispatcher for every interface
// method, lift and projection conversions, and a moves(...) builder.
package polyenumgen

import (
	"context"
	"go/token"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/broady/polyenum/polyenumgen/golang"
	"github.com/broady/polyenum/polyenumgen/model"
	"github.com/broady/polyenum/polyenumgen/source"
)

// DefaultSuffix is appended to the input base name to form the output name.
const DefaultSuffix = "_polyenum.go"

// InputSuffix is the conventional suffix of input files.
const InputSuffix = ".polyenum.go"

// Input identifies one input file.
type Input struct {
	// Filename is the path of the input file.
	Filename string

	// Src is the file content. When nil, Filename is read from disk.
	Src []byte
}

// Config holds the settings for one generation. The zero Config is valid.
type Config struct {
	// Suffix names the output file. Default: "_polyenum.go".
	Suffix string

	// Receiver is the dispatcher receiver for methods without a
	// //polyenum:receiver directive. Default: value.
	Receiver model.ReceiverKind

	// Builder overrides the builder helper name. Default: the lower-cased
	// union name.
	Builder string

	// PositionalPrefix names positional fields. Default: "F".
	PositionalPrefix string

	// RuntimeImport is the import path of the runtime support package.
	// Default: "github.com/broady/polyenum".
	RuntimeImport string

	// Header holds extra comment lines written under the generated-code
	// line, such as a license notice.
	Header []string

	// Logger receives debug output for each stage. Default: no-op.
	Logger *zap.Logger
}

// Result is the outcome of one generation.
type Result struct {
	// Input is the input file path.
	Input string
	// Dir is the directory the output belongs in.
	Dir string
	// Output is the output file name, relative to Dir.
	Output string
	// Content is the formatted Go source.
	Content []byte

	Interface string
	Union     string
	Variants  int
	Methods   int
}

// Generate runs the whole pipeline on one input: parse, accept, build,
// validate, emit and assemble. It does not write anything.
func Generate(ctx context.Context, in Input, cfg Config) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("file", in.Filename))

	src := in.Src
	if src == nil {
		var err error
		src, err = os.ReadFile(in.Filename)
		if err != nil {
			return nil, errors.Wrap(err, "read input")
		}
	}

	fset := token.NewFileSet()
	file, err := source.Parse(fset, in.Filename, src)
	if err != nil {
		return nil, err
	}
	decls, err := source.Accept(fset, file, src)
	if err != nil {
		return nil, err
	}
	log.Debug("accepted declarations",
		zap.String("interface", decls.Interface.Spec.Name.Name),
		zap.String("union", decls.Union.Spec.Name.Name))

	iface, union, err := source.Build(decls, source.BuildOptions{
		Receiver:         cfg.Receiver,
		Builder:          cfg.Builder,
		PositionalPrefix: cfg.PositionalPrefix,
		RuntimeImport:    cfg.RuntimeImport,
	})
	if err != nil {
		return nil, err
	}
	if err := model.Validate(iface, union); err != nil {
		return nil, err
	}
	log.Debug("built model",
		zap.String("interface", iface.Name),
		zap.String("union", union.Name),
		zap.Int("variants", len(union.Variants)),
		zap.Int("methods", len(iface.Methods)),
		zap.String("builder", model.NamesFor(union).Builder))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	output := OutputName(in.Filename, cfg.Suffix)
	if output == filepath.Base(in.Filename) {
		return nil, errors.Newf("output %s would overwrite its input", output)
	}
	content, err := golang.Assemble(golang.File{
		Source:    filepath.Base(in.Filename),
		Name:      output,
		Package:   file.Name.Name,
		Header:    cfg.Header,
		Interface: iface,
		Union:     union,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "assemble %s", output)
	}
	log.Debug("assembled output", zap.String("output", output), zap.Int("bytes", len(content)))

	return &Result{
		Input:     in.Filename,
		Dir:       filepath.Dir(in.Filename),
		Output:    output,
		Content:   content,
		Interface: iface.Name,
		Union:     union.Name,
		Variants:  len(union.Variants),
		Methods:   len(iface.Methods),
	}, nil
}

// OutputName returns the output file name for input: its base name without
// ".polyenum.go" (or ".go") followed by suffix.
func OutputName(input, suffix string) string {
	if suffix == "" {
		suffix = DefaultSuffix
	}
	base := filepath.Base(input)
	if trimmed, ok := strings.CutSuffix(base, InputSuffix); ok {
		base = trimmed
	} else {
		base = strings.TrimSuffix(base, ".go")
	}
	return base + suffix
}

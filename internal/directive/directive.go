// Package directive parses polyenum directives from Go comments.
//
// Directives are line comments in the form:
//
//	//polyenum:receiver value|pointer
//	//polyenum:options builder=makeMoves positional=P
//
// The receiver directive sits in the doc comment of an interface method and
// selects the receiver of the generated dispatcher for that method.
//
// The options directive sits in the doc comment of the union and sets the
// union-wide defaults. Arguments are shell-quoted key=value pairs; at most
// one options directive is allowed per union.
package directive

import (
	"fmt"
	"go/ast"
	"go/token"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
	"github.com/kballard/go-shellquote"
)

// Prefix starts every polyenum directive.
const Prefix = "//polyenum:"

// Kind represents the type of directive.
type Kind string

const (
	KindReceiver Kind = "receiver"
	KindOptions  Kind = "options"
)

// Directive represents a parsed polyenum directive.
type Directive struct {
	Kind Kind
	Args []string
	Pos  token.Position
}

// Options are the union-wide settings of an options directive.
type Options struct {
	Builder          string `schema:"builder" validate:"omitempty,goident"`
	Receiver         string `schema:"receiver" validate:"omitempty,oneof=value pointer ptr"`
	PositionalPrefix string `schema:"positional" validate:"omitempty,goident"`
	RuntimeImport    string `schema:"runtime" validate:"omitempty"`
}

var (
	decoder = sync.OnceValue(func() *schema.Decoder {
		d := schema.NewDecoder()
		d.IgnoreUnknownKeys(false)
		return d
	})
	validate = sync.OnceValue(func() *validator.Validate {
		v := validator.New(validator.WithRequiredStructEnabled())
		_ = v.RegisterValidation("goident", func(fl validator.FieldLevel) bool {
			return token.IsIdentifier(fl.Field().String())
		})
		return v
	})
)

// Parse parses a single comment line. It reports false when the line is not
// a polyenum directive at all.
func Parse(text string, pos token.Position) (Directive, bool, error) {
	rest, ok := strings.CutPrefix(text, Prefix)
	if !ok {
		return Directive{}, false, nil
	}

	parts, err := shellquote.Split(rest)
	if err != nil {
		return Directive{}, true, errors.Wrapf(err, "%s: malformed directive %s", pos, text)
	}
	if len(parts) == 0 {
		return Directive{}, true, errors.Newf("%s: empty directive %s", pos, text)
	}

	d := Directive{Kind: Kind(parts[0]), Args: parts[1:], Pos: pos}
	switch d.Kind {
	case KindReceiver:
		if len(d.Args) != 1 {
			return Directive{}, true, errors.Newf("%s: %sreceiver takes exactly one argument, got %d", pos, Prefix, len(d.Args))
		}
	case KindOptions:
	default:
		return Directive{}, true, errors.Newf("%s: unknown directive %s%s", pos, Prefix, parts[0])
	}
	return d, true, nil
}

// Collect parses every polyenum directive in cg, each at the position of its
// own comment line. Other comments are skipped; a nil group yields nothing.
func Collect(fset *token.FileSet, cg *ast.CommentGroup) ([]Directive, error) {
	if cg == nil {
		return nil, nil
	}
	var out []Directive
	for _, c := range cg.List {
		d, ok, err := Parse(c.Text, fset.Position(c.Slash))
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, d)
		}
	}
	return out, nil
}

// Receiver returns the argument of the single receiver directive in ds, or
// "" when there is none.
func Receiver(ds []Directive) (string, error) {
	var found *Directive
	for i := range ds {
		if ds[i].Kind != KindReceiver {
			continue
		}
		if found != nil {
			return "", errors.Newf("%s: multiple %sreceiver directives", ds[i].Pos, Prefix)
		}
		found = &ds[i]
	}
	if found == nil {
		return "", nil
	}
	return found.Args[0], nil
}

// DecodeOptions merges the options directive in ds into an Options value.
// It returns the zero Options when ds has none.
func DecodeOptions(ds []Directive) (Options, error) {
	var found *Directive
	for i := range ds {
		if ds[i].Kind != KindOptions {
			continue
		}
		if found != nil {
			return Options{}, errors.Newf("multiple %soptions directives found:\n  %s\n  %s", Prefix, found.Pos, ds[i].Pos)
		}
		found = &ds[i]
	}
	if found == nil {
		return Options{}, nil
	}

	values := make(map[string][]string, len(found.Args))
	for _, arg := range found.Args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return Options{}, errors.Newf("%s: option %q must be key=value", found.Pos, arg)
		}
		values[key] = append(values[key], value)
	}

	var opts Options
	if err := decoder().Decode(&opts, values); err != nil {
		return Options{}, errors.Wrapf(err, "%s: decode %soptions", found.Pos, Prefix)
	}
	if err := validate().Struct(opts); err != nil {
		return Options{}, errors.Wrapf(err, "%s: invalid %soptions", found.Pos, Prefix)
	}
	return opts, nil
}

// String formats the directive back into comment form.
func (d Directive) String() string {
	if len(d.Args) == 0 {
		return fmt.Sprintf("%s%s", Prefix, d.Kind)
	}
	return fmt.Sprintf("%s%s %s", Prefix, d.Kind, shellquote.Join(d.Args...))
}

// Package diag defines the generator's error taxonomy.
//
// Every failure raised while reading an input file is marked with exactly one
// of the sentinels below, so callers can classify it with errors.Is no matter
// how many times it was wrapped on the way out:
//
//	if errors.Is(err, diag.ErrMalformedInput) {
//	    // wrong number or kind of declarations
//	}
//
// Messages start with the source position of the construct that triggered
// them. Hints, when present, tell the user how to fix the input and can be
// read back with errors.FlattenHints.
package diag

import (
	"go/token"

	"github.com/cockroachdb/errors"
)

var (
	// ErrSyntax marks input that the Go parser rejected.
	ErrSyntax = errors.New("syntax error")

	// ErrMalformedInput marks input that does not hold exactly an interface
	// declaration followed by a union declaration.
	ErrMalformedInput = errors.New("malformed input")

	// ErrUnsupportedShape marks a construct inside the interface or union
	// that the generator cannot represent.
	ErrUnsupportedShape = errors.New("unsupported shape")
)

// Malformed returns an ErrMalformedInput diagnostic at pos.
func Malformed(pos token.Position, format string, args ...any) error {
	return newAt(ErrMalformedInput, pos, format, args...)
}

// Unsupported returns an ErrUnsupportedShape diagnostic at pos.
func Unsupported(pos token.Position, format string, args ...any) error {
	return newAt(ErrUnsupportedShape, pos, format, args...)
}

// Syntax wraps a parser error as an ErrSyntax diagnostic.
func Syntax(err error, filename string) error {
	return errors.Mark(errors.Wrapf(err, "parse %s", filename), ErrSyntax)
}

// Hint attaches a user-facing hint to err. A nil err stays nil.
func Hint(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return errors.WithHintf(err, format, args...)
}

// Kind reports the sentinel err is marked with, or nil when it carries none.
func Kind(err error) error {
	for _, sentinel := range []error{ErrSyntax, ErrMalformedInput, ErrUnsupportedShape} {
		if errors.Is(err, sentinel) {
			return sentinel
		}
	}
	return nil
}

func newAt(kind error, pos token.Position, format string, args ...any) error {
	err := errors.Newf(format, args...)
	if pos.IsValid() {
		err = errors.Wrapf(err, "%s", pos)
	}
	return errors.Mark(err, kind)
}

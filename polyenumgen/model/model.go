// Package model defines the structured form of a polyenum input: one
// interface declaration and one tagged-union declaration.
//
// The source package builds these values from Go syntax; the golang package
// turns them back into Go source. Nothing in here refers to go/ast, so shape
// questions (named, positional or empty fields) are answered once, here, and
// never re-derived by the emitters.
package model

import (
	"go/token"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ReceiverKind selects how a generated dispatcher method receives the union.
type ReceiverKind int

const (
	// ReceiverNone is the zero value. It is never valid on a finished model.
	ReceiverNone ReceiverKind = iota
	// ReceiverValue dispatches on a copy of the union: func (u U) M().
	ReceiverValue
	// ReceiverPointer dispatches on the union in place: func (u *U) M().
	ReceiverPointer
)

// String returns the directive spelling of the receiver kind.
func (k ReceiverKind) String() string {
	switch k {
	case ReceiverValue:
		return "value"
	case ReceiverPointer:
		return "pointer"
	default:
		return "none"
	}
}

// ParseReceiverKind maps a directive or flag value to a ReceiverKind.
// It accepts "value", "pointer" and "ptr"; anything else yields ReceiverNone
// and false.
func ParseReceiverKind(s string) (ReceiverKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "value":
		return ReceiverValue, true
	case "pointer", "ptr":
		return ReceiverPointer, true
	default:
		return ReceiverNone, false
	}
}

// Shape identifies how a variant carries its fields.
type Shape int

const (
	ShapeEmpty      Shape = iota // no fields
	ShapeNamed                   // struct{ A int; B string }
	ShapePositional              // struct{ _ int; _ string } or a bare type
)

// String returns the shape name used in diagnostics.
func (s Shape) String() string {
	switch s {
	case ShapeNamed:
		return "named"
	case ShapePositional:
		return "positional"
	default:
		return "empty"
	}
}

// InterfaceDecl is the interface whose methods every variant implements.
//
// Across the model, Doc holds a declaration's whole comment group line by
// line, verbatim.
type InterfaceDecl struct {
	Name    string
	Doc     []string
	Methods []MethodSig

	// Text is the verbatim source of the declaration, without the leading
	// "type" keyword and without its doc comment.
	Text string

	// Selectors lists the package identifiers referenced by Text.
	Selectors []string

	Pos token.Position
}

// MethodSig is one method of the interface.
type MethodSig struct {
	Name     string
	Receiver ReceiverKind
	Params   []Param
	Results  []Result

	// Doc is carried onto the generated dispatcher, minus polyenum
	// directives.
	Doc []string

	Pos token.Position
}

// HasResults reports whether calls to the method produce a value.
func (m MethodSig) HasResults() bool { return len(m.Results) > 0 }

// Param is a non-receiver method parameter. Type holds the source text of
// the parameter type; for a variadic parameter it excludes the leading "...".
type Param struct {
	Name     string
	Type     string
	Variadic bool
}

// Result is a method result. Name is empty for unnamed results.
type Result struct {
	Name string
	Type string
}

// UnionDecl is the tagged union being rebuilt.
type UnionDecl struct {
	Name string
	Doc  []string

	// Attributes are the directive lines of Doc. Generated product types
	// carry the ones that are not polyenum's own.
	Attributes []Attribute
	Variants   []VariantDecl

	// Imports lists the input file's imports. The assembler keeps the ones
	// the emitted code refers to.
	Imports []Import

	// Options are the union-level settings after all layers were merged.
	Options Options

	Pos token.Position
}

// VariantDecl is one case of the union.
type VariantDecl struct {
	Name string
	Doc  []string

	Shape  Shape
	Fields []Field

	Pos token.Position
}

// Field is one field of a variant, in declaration order.
type Field struct {
	// Name is the Go field name. Positional fields get a synthesized name
	// made of the positional prefix and the field index.
	Name string

	// Type is the verbatim source of the field type.
	Type string

	// Tag is the raw struct tag literal including its quotes, or empty.
	Tag string

	// Doc and Comment hold the field's leading and trailing comment lines,
	// copied through unchanged.
	Doc     []string
	Comment []string

	// TypeSelectors lists package identifiers referenced by Type
	// (the "time" in time.Duration), used to prune unused imports.
	TypeSelectors []string
}

// Import is one import spec of the input file.
type Import struct {
	Name string // explicit name, "." or "_"; empty when unnamed
	Path string
}

// Options are the union-wide generation settings.
type Options struct {
	// Builder names the collection-builder helper. Empty means the
	// lower-cased union name.
	Builder string

	// PositionalPrefix prefixes the index of positional field names.
	PositionalPrefix string

	// RuntimeImport is the import path of the runtime support package
	// referenced by generated panics.
	RuntimeImport string
}

// RuntimeName is the package name generated code uses for the runtime import.
const RuntimeName = "polyenum"

// Names derives every generated identifier for a union.
type Names struct {
	Union     string
	Kind      string // UKind
	Case      string // UCase, the lift contract
	Lift      string // ToU
	Builder   string // u
	Receiver  string // base receiver name
	KindField string
}

// NamesFor returns the identifiers generated for u.
func NamesFor(u *UnionDecl) Names {
	builder := u.Options.Builder
	if builder == "" {
		builder = strings.ToLower(u.Name)
	}
	return Names{
		Union:     u.Name,
		Kind:      u.Name + "Kind",
		Case:      u.Name + "Case",
		Lift:      "To" + UpperFirst(u.Name),
		Builder:   builder,
		Receiver:  strings.ToLower(firstRune(u.Name)),
		KindField: "kind",
	}
}

// KindConst returns the kind constant of variant v.
func (n Names) KindConst(v string) string { return n.Union + UpperFirst(v) }

// CaseField returns the union struct field holding variant v. Names that
// would clash with the kind field or a Go keyword get a Case suffix.
func (n Names) CaseField(v string) string {
	f := LowerFirst(v)
	if f == n.KindField || token.IsKeyword(f) {
		f += "Case"
	}
	return f
}

// Projection returns the panicking projection method for variant v.
func (n Names) Projection(v string) string { return "As" + UpperFirst(v) }

// TryProjection returns the comma-ok projection method for variant v.
func (n Names) TryProjection(v string) string { return "Try" + UpperFirst(v) }

// UpperFirst upper-cases the first rune of s.
func UpperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// LowerFirst lower-cases the first rune of s.
func LowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

func firstRune(s string) string {
	r, _ := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return "u"
	}
	return string(r)
}

// Package source reads a polyenum input file into the declaration model.
//
// Reading happens in three steps that mirror the generator pipeline:
// Parse hands the bytes to go/parser, Accept picks the interface and the
// union out of the parsed file, and Build normalizes both into
// model.InterfaceDecl and model.UnionDecl.
package source

import (
	"go/ast"
	"go/parser"
	"go/token"

	"github.com/broady/polyenum/polyenumgen/diag"
)

// Decls is the accepted pair of declarations together with the file they
// came from.
type Decls struct {
	Fset *token.FileSet
	File *ast.File
	Src  []byte

	Interface TypeDecl
	Union     TypeDecl
}

// TypeDecl is one accepted type declaration.
type TypeDecl struct {
	Spec *ast.TypeSpec
	// Doc is the spec's doc comment, or the enclosing declaration's when the
	// spec is not part of a parenthesized group.
	Doc *ast.CommentGroup
}

// Parse parses src as a Go file, keeping comments.
func Parse(fset *token.FileSet, filename string, src []byte) (*ast.File, error) {
	f, err := parser.ParseFile(fset, filename, src, parser.ParseComments|parser.SkipObjectResolution)
	if err != nil {
		return nil, diag.Syntax(err, filename)
	}
	return f, nil
}

// Accept extracts the interface and union declarations from f.
//
// Imports are skipped. Every other declaration is counted in source order;
// there must be exactly two, the first an interface type and the second a
// struct type describing the union.
func Accept(fset *token.FileSet, f *ast.File, src []byte) (*Decls, error) {
	var specs []TypeDecl
	for _, decl := range f.Decls {
		switch d := decl.(type) {
		case *ast.GenDecl:
			switch d.Tok {
			case token.IMPORT:
				continue
			case token.TYPE:
				for _, s := range d.Specs {
					ts := s.(*ast.TypeSpec)
					doc := ts.Doc
					if doc == nil && !d.Lparen.IsValid() {
						doc = d.Doc
					}
					specs = append(specs, TypeDecl{Spec: ts, Doc: doc})
				}
			default:
				return nil, unexpected(fset, d.Pos(), d.Tok.String())
			}
		case *ast.FuncDecl:
			return nil, unexpected(fset, d.Pos(), "func")
		default:
			return nil, unexpected(fset, decl.Pos(), "unknown")
		}
	}

	filePos := fset.Position(f.Package)
	switch {
	case len(specs) < 2:
		return nil, diag.Hint(diag.Malformed(filePos, "found %d type declarations, need an interface followed by a union", len(specs)),
			"declare the interface first, then a struct whose fields are the union's variants")
	case len(specs) > 2:
		return nil, diag.Malformed(fset.Position(specs[2].Spec.Pos()), "unexpected third type declaration %s; the input holds exactly one interface and one union",
			specs[2].Spec.Name.Name)
	}

	iface, union := specs[0], specs[1]
	for _, td := range specs {
		if td.Spec.Assign.IsValid() {
			return nil, diag.Malformed(fset.Position(td.Spec.Pos()), "%s is a type alias; declare a defined type", td.Spec.Name.Name)
		}
	}
	if _, ok := iface.Spec.Type.(*ast.InterfaceType); !ok {
		return nil, diag.Hint(diag.Malformed(fset.Position(iface.Spec.Pos()), "first declaration %s is not an interface", iface.Spec.Name.Name),
			"the interface must come before the union")
	}
	if _, ok := union.Spec.Type.(*ast.StructType); !ok {
		return nil, diag.Hint(diag.Malformed(fset.Position(union.Spec.Pos()), "second declaration %s is not a struct describing a union", union.Spec.Name.Name),
			"declare the union as a struct with one field per variant")
	}

	return &Decls{
		Fset:      fset,
		File:      f,
		Src:       src,
		Interface: iface,
		Union:     union,
	}, nil
}

func unexpected(fset *token.FileSet, pos token.Pos, what string) error {
	return diag.Hint(diag.Malformed(fset.Position(pos), "unexpected %s declaration", what),
		"the input holds only imports, one interface and one union; move other code to a regular file")
}

// Package gentest provides helpers for asserting on generated Go source.
// Tests parse the output once with Parse and then query declarations by
// name instead of comparing whole files.
package gentest

import (
	"go/ast"
	"go/parser"
	"go/printer"
	"go/token"
	"strconv"
	"strings"
	"testing"
)

// File is a parsed generated file.
type File struct {
	t    testing.TB
	Fset *token.FileSet
	AST  *ast.File
	Src  []byte
}

// Parse parses src, failing the test if it is not valid Go.
func Parse(t testing.TB, src []byte) *File {
	t.Helper()
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "generated.go", src, parser.ParseComments)
	if err != nil {
		t.Fatalf("generated source does not parse: %v\n%s", err, src)
	}
	return &File{t: t, Fset: fset, AST: f, Src: src}
}

// Imports returns the import paths, in file order.
func (f *File) Imports() []string {
	var out []string
	for _, imp := range f.AST.Imports {
		p, _ := strconv.Unquote(imp.Path.Value)
		if imp.Name != nil {
			p = imp.Name.Name + " " + p
		}
		out = append(out, p)
	}
	return out
}

// Order lists the top-level declarations in file order. Types appear as
// "type Name", functions as "func Name", methods as "func (Recv) Name",
// and other declarations by their token.
func (f *File) Order() []string {
	var out []string
	for _, decl := range f.AST.Decls {
		switch d := decl.(type) {
		case *ast.GenDecl:
			switch d.Tok {
			case token.IMPORT:
			case token.TYPE:
				for _, s := range d.Specs {
					out = append(out, "type "+s.(*ast.TypeSpec).Name.Name)
				}
			default:
				out = append(out, d.Tok.String())
			}
		case *ast.FuncDecl:
			out = append(out, funcKey(d))
		}
	}
	return out
}

// Type returns the named type spec, failing the test if it is missing.
func (f *File) Type(name string) *ast.TypeSpec {
	f.t.Helper()
	for _, decl := range f.AST.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.TYPE {
			continue
		}
		for _, s := range gd.Specs {
			if ts := s.(*ast.TypeSpec); ts.Name.Name == name {
				return ts
			}
		}
	}
	f.t.Fatalf("type %s not found in generated source", name)
	return nil
}

// TypeDoc returns the doc comment lines of the named type.
func (f *File) TypeDoc(name string) []string {
	f.t.Helper()
	ts := f.Type(name)
	doc := ts.Doc
	if doc == nil {
		for _, decl := range f.AST.Decls {
			if gd, ok := decl.(*ast.GenDecl); ok && len(gd.Specs) == 1 && gd.Specs[0] == ts {
				doc = gd.Doc
			}
		}
	}
	return commentLines(doc)
}

// Fields returns "name type `tag`" for each field of the named struct type.
func (f *File) Fields(name string) []string {
	f.t.Helper()
	st, ok := f.Type(name).Type.(*ast.StructType)
	if !ok {
		f.t.Fatalf("type %s is not a struct", name)
	}
	var out []string
	for _, field := range st.Fields.List {
		typ := f.Node(field.Type)
		for _, n := range field.Names {
			s := n.Name + " " + typ
			if field.Tag != nil {
				s += " " + field.Tag.Value
			}
			out = append(out, s)
		}
	}
	return out
}

// Func returns a function (recv "") or method by receiver type and name.
// The receiver type is written as in source, for example "*Moves".
func (f *File) Func(recv, name string) *ast.FuncDecl {
	f.t.Helper()
	key := "func " + name
	if recv != "" {
		key = "func (" + recv + ") " + name
	}
	for _, decl := range f.AST.Decls {
		if fd, ok := decl.(*ast.FuncDecl); ok && funcKey(fd) == key {
			return fd
		}
	}
	f.t.Fatalf("%s not found in generated source", key)
	return nil
}

// FuncDoc returns the doc comment lines of a function or method.
func (f *File) FuncDoc(recv, name string) []string {
	f.t.Helper()
	return commentLines(f.Func(recv, name).Doc)
}

// Node prints n as Go source.
func (f *File) Node(n ast.Node) string {
	var sb strings.Builder
	if err := printer.Fprint(&sb, f.Fset, n); err != nil {
		f.t.Fatalf("print node: %v", err)
	}
	return sb.String()
}

func funcKey(fd *ast.FuncDecl) string {
	if fd.Recv == nil || len(fd.Recv.List) == 0 {
		return "func " + fd.Name.Name
	}
	var recv string
	switch t := fd.Recv.List[0].Type.(type) {
	case *ast.StarExpr:
		if id, ok := t.X.(*ast.Ident); ok {
			recv = "*" + id.Name
		}
	case *ast.Ident:
		recv = t.Name
	}
	return "func (" + recv + ") " + fd.Name.Name
}

func commentLines(cg *ast.CommentGroup) []string {
	if cg == nil {
		return nil
	}
	var out []string
	for _, c := range cg.List {
		out = append(out, c.Text)
	}
	return out
}

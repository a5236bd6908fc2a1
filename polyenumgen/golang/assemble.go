package golang

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/tools/imports"

	"github.com/broady/polyenum/polyenumgen/diag"
	"github.com/broady/polyenum/polyenumgen/model"
)

// File describes one generated output file.
type File struct {
	// Source is the input file name as written in the header.
	Source string
	// Name is the output file name, used for formatting diagnostics.
	Name string
	// Package is the package clause of the input.
	Package string
	// Header holds extra comment lines placed under the generated-code line.
	Header []string

	Interface *model.InterfaceDecl
	Union     *model.UnionDecl
}

// FormatError reports generated source that failed to format. Source holds
// the unformatted output so it can be inspected.
type FormatError struct {
	Source []byte
	Err    error
}

func (e *FormatError) Error() string { return "format generated source: " + e.Err.Error() }
func (e *FormatError) Unwrap() error { return e.Err }

// Assemble renders f into a complete, formatted Go file.
func Assemble(f File) ([]byte, error) {
	specs, err := importSpecs(f.Interface, f.Union)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "// Code generated by polyenum from %s. DO NOT EDIT.\n", f.Source)
	for _, line := range f.Header {
		if !strings.HasPrefix(line, "//") {
			line = "// " + line
		}
		buf.WriteString(line)
		buf.WriteString("\n")
	}
	fmt.Fprintf(&buf, "\npackage %s\n\n", f.Package)

	buf.WriteString("import (\n")
	for _, s := range specs {
		buf.WriteString("\t")
		buf.WriteString(s)
		buf.WriteString("\n")
	}
	buf.WriteString(")\n\n")

	NewEmitter(f.Interface, f.Union).Emit(&buf)

	out, err := imports.Process(f.Name, buf.Bytes(), &imports.Options{
		FormatOnly: true,
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
	})
	if err != nil {
		return nil, errors.WithStack(&FormatError{Source: buf.Bytes(), Err: err})
	}
	return out, nil
}

// importSpecs returns the import lines of the output: every input import the
// emitted declarations refer to, dot imports, strconv and the runtime.
func importSpecs(iface *model.InterfaceDecl, union *model.UnionDecl) ([]string, error) {
	used := make(map[string]bool)
	for _, s := range iface.Selectors {
		used[s] = true
	}
	for _, v := range union.Variants {
		for _, f := range v.Fields {
			for _, s := range f.TypeSelectors {
				used[s] = true
			}
		}
	}

	runtimeImport := union.Options.RuntimeImport
	generated := map[string]string{
		"strconv":         "strconv",
		model.RuntimeName: runtimeImport,
	}

	byPath := make(map[string]string)
	for _, imp := range union.Imports {
		name := imp.Name
		switch name {
		case "_":
			continue
		case ".":
			byPath[imp.Path] = "."
			continue
		case "":
			name = assumedPackageName(imp.Path)
		}
		if !used[name] {
			continue
		}
		if path, ok := generated[name]; ok && path != imp.Path {
			return nil, diag.Hint(diag.Unsupported(union.Pos, "import %q is referred to as %s, which generated code uses for %q", imp.Path, name, path),
				"import it under another name")
		}
		if imp.Name != "" {
			byPath[imp.Path] = imp.Name
		} else if _, ok := byPath[imp.Path]; !ok {
			byPath[imp.Path] = ""
		}
	}

	byPath["strconv"] = ""
	if assumedPackageName(runtimeImport) == model.RuntimeName {
		byPath[runtimeImport] = ""
	} else {
		byPath[runtimeImport] = model.RuntimeName
	}

	paths := make([]string, 0, len(byPath))
	for p := range byPath {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	specs := make([]string, 0, len(paths))
	for _, p := range paths {
		spec := strconv.Quote(p)
		if name := byPath[p]; name != "" {
			spec = name + " " + spec
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

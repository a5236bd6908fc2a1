// Package discover finds polyenum input files.
//
// An input file is excluded from normal builds by a //go:build constraint
// that mentions the polyenum tag, so it shows up among a package's ignored
// files. Patterns follow go command semantics, and "*.go" arguments name
// input files directly.
package discover

import (
	"go/build/constraint"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/tools/go/packages"
)

// Tag is the build tag that marks an input file.
const Tag = "polyenum"

// Input is one discovered input file.
type Input struct {
	Path        string // absolute file path
	PackagePath string // import path, "" for an explicit file
}

// Result contains the discovered inputs and the directories they live in.
type Result struct {
	Inputs []Input
	// Dirs holds every package directory scanned, so a watcher can pick
	// up input files created later.
	Dirs []string
}

// Find resolves patterns relative to dir. An empty pattern list means ".".
func Find(patterns []string, dir string) (*Result, error) {
	if len(patterns) == 0 {
		patterns = []string{"."}
	}

	var files, pkgPatterns []string
	for _, p := range patterns {
		if strings.HasSuffix(p, ".go") {
			files = append(files, p)
		} else {
			pkgPatterns = append(pkgPatterns, p)
		}
	}

	res := &Result{}
	seen := make(map[string]bool)
	dirs := make(map[string]bool)
	add := func(in Input) {
		if !seen[in.Path] {
			seen[in.Path] = true
			res.Inputs = append(res.Inputs, in)
		}
	}

	for _, f := range files {
		if !filepath.IsAbs(f) && dir != "" {
			f = filepath.Join(dir, f)
		}
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, errors.Wrapf(err, "resolve %s", f)
		}
		if _, err := os.Stat(abs); err != nil {
			return nil, errors.Wrap(err, "input file")
		}
		add(Input{Path: abs})
		dirs[filepath.Dir(abs)] = true
	}

	if len(pkgPatterns) > 0 {
		cfg := &packages.Config{
			Mode: packages.NeedName | packages.NeedFiles | packages.NeedModule,
			Dir:  dir,
		}
		pkgs, err := packages.Load(cfg, pkgPatterns...)
		if err != nil {
			return nil, errors.Wrap(err, "load packages")
		}
		if len(pkgs) == 0 {
			return nil, errors.Newf("no packages found matching %s", strings.Join(pkgPatterns, " "))
		}

		for _, pkg := range pkgs {
			// A package holding nothing but inputs reports "build
			// constraints exclude all Go files"; its ignored files are
			// still listed.
			if len(pkg.Errors) > 0 && len(pkg.GoFiles) == 0 && len(pkg.IgnoredFiles) == 0 {
				return nil, errors.Newf("package %s: %v", pkg.PkgPath, pkg.Errors[0])
			}
			for _, f := range slices.Concat(pkg.GoFiles, pkg.IgnoredFiles) {
				dirs[filepath.Dir(f)] = true
			}
			for _, f := range pkg.IgnoredFiles {
				ok, err := IsInput(f)
				if err != nil {
					return nil, err
				}
				if ok {
					add(Input{Path: f, PackagePath: pkg.PkgPath})
				}
			}
		}
	}

	slices.SortFunc(res.Inputs, func(a, b Input) int { return strings.Compare(a.Path, b.Path) })
	for d := range dirs {
		res.Dirs = append(res.Dirs, d)
	}
	slices.Sort(res.Dirs)
	return res, nil
}

// IsInput reports whether the file at path carries a //go:build line that
// mentions the polyenum tag.
func IsInput(path string) (bool, error) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, path, nil, parser.PackageClauseOnly|parser.ParseComments)
	if err != nil {
		return false, errors.Wrapf(err, "read header of %s", path)
	}
	for _, g := range f.Comments {
		if g.Pos() > f.Package {
			break
		}
		for _, c := range g.List {
			if !constraint.IsGoBuild(c.Text) {
				continue
			}
			expr, err := constraint.Parse(c.Text)
			if err != nil {
				return false, errors.Wrapf(err, "%s", fset.Position(c.Pos()))
			}
			if mentions(expr, Tag) {
				return true, nil
			}
		}
	}
	return false, nil
}

// mentions reports whether tag appears anywhere in expr, negated or not.
func mentions(expr constraint.Expr, tag string) bool {
	switch e := expr.(type) {
	case *constraint.TagExpr:
		return e.Tag == tag
	case *constraint.NotExpr:
		return mentions(e.X, tag)
	case *constraint.AndExpr:
		return mentions(e.X, tag) || mentions(e.Y, tag)
	case *constraint.OrExpr:
		return mentions(e.X, tag) || mentions(e.Y, tag)
	default:
		return false
	}
}

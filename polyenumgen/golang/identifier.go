package golang

import (
	"path"
	"strconv"
	"strings"
	"unicode"

	"github.com/broady/polyenum/polyenumgen/model"
)

// receiverName returns base, or base followed by the smallest number from 2
// up that no parameter or named result of m uses.
func receiverName(base string, m model.MethodSig) string {
	taken := make(map[string]bool, len(m.Params)+len(m.Results))
	for _, p := range m.Params {
		taken[p.Name] = true
	}
	for _, r := range m.Results {
		if r.Name != "" {
			taken[r.Name] = true
		}
	}
	if !taken[base] {
		return base
	}
	for i := 2; ; i++ {
		name := base + strconv.Itoa(i)
		if !taken[name] {
			return name
		}
	}
}

// assumedPackageName returns the name an unnamed import is referred to by,
// following the goimports convention: the last path element, skipping a
// trailing major-version element, without a "go-" prefix, cut at the first
// character that cannot appear in an identifier.
func assumedPackageName(importPath string) string {
	base := path.Base(importPath)
	if strings.HasPrefix(base, "v") {
		if _, err := strconv.Atoi(base[1:]); err == nil {
			if dir := path.Dir(importPath); dir != "." {
				base = path.Base(dir)
			}
		}
	}
	base = strings.TrimPrefix(base, "go-")
	if i := strings.IndexFunc(base, notIdentifier); i >= 0 {
		base = base[:i]
	}
	return base
}

func notIdentifier(r rune) bool {
	return !(r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r))
}

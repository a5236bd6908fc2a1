package main

import (
	_ "embed"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/broady/polyenum/polyenumgen/source"
)

//go:embed VERSION
var embeddedVersion string

type VersionCmd struct{}

// Run prints the generator version together with the Go toolchain that built
// it and the runtime package generated code imports by default.
func (c *VersionCmd) Run() error {
	info, _ := debug.ReadBuildInfo()
	fmt.Println(versionLine(strings.TrimSpace(embeddedVersion), info))
	return nil
}

func versionLine(base string, info *debug.BuildInfo) string {
	goVersion := "unknown"
	if info != nil {
		goVersion = info.GoVersion
	}
	return fmt.Sprintf("polyenum %s (%s, runtime %s)", version(base, info), goVersion, source.DefaultRuntimeImport)
}

// version prefers the module version stamped by go install. Local builds
// report devel-<VERSION>, plus the short VCS revision and a +dirty marker
// when the checkout had uncommitted changes.
func version(base string, info *debug.BuildInfo) string {
	if info == nil {
		return base
	}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		return v
	}

	var rev string
	var dirty bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if len(s.Value) >= 7 {
				rev = s.Value[:7]
			}
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}

	v := "devel-" + base
	if rev != "" {
		v += "+" + rev
		if dirty {
			v += ".dirty"
		}
	}
	return v
}

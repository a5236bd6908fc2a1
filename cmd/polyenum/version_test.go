package main

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersion(t *testing.T) {
	tests := []struct {
		name string
		info *debug.BuildInfo
		want string
	}{
		{
			name: "no build info",
			want: "0.1.0",
		},
		{
			name: "installed",
			info: &debug.BuildInfo{Main: debug.Module{Version: "v0.1.0"}},
			want: "v0.1.0",
		},
		{
			name: "devel without vcs",
			info: &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}},
			want: "devel-0.1.0",
		},
		{
			name: "devel with revision",
			info: &debug.BuildInfo{Settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "abc1234def"},
				{Key: "vcs.modified", Value: "false"},
			}},
			want: "devel-0.1.0+abc1234",
		},
		{
			name: "dirty checkout",
			info: &debug.BuildInfo{Settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "abc1234def"},
				{Key: "vcs.modified", Value: "true"},
			}},
			want: "devel-0.1.0+abc1234.dirty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, version("0.1.0", tt.info))
		})
	}
}

func TestVersionLine(t *testing.T) {
	info := &debug.BuildInfo{GoVersion: "go1.25.3", Main: debug.Module{Version: "v0.1.0"}}
	assert.Equal(t, "polyenum v0.1.0 (go1.25.3, runtime github.com/broady/polyenum)", versionLine("0.1.0", info))
	assert.Equal(t, "polyenum 0.1.0 (unknown, runtime github.com/broady/polyenum)", versionLine("0.1.0", nil))
}

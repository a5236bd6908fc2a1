package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestConsole(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Out: &buf})
	log.Debug("hidden")
	log.Info("generated", zap.String("file", "moves.polyenum.go"))
	require.NoError(t, log.Sync())

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "INFO\tgenerated")
	assert.Contains(t, out, `"file": "moves.polyenum.go"`)
}

func TestVerbose(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Out: &buf, Verbose: true})
	log.Debug("stage", zap.Int("variants", 3))
	assert.Contains(t, buf.String(), "DEBUG\tstage")
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Out: &buf, JSON: true})
	log.Warn("stale output", zap.String("path", "moves_polyenum.go"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "stale output", entry["msg"])
	assert.Equal(t, "moves_polyenum.go", entry["path"])
}

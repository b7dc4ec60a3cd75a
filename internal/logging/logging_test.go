package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestStdoutLogger_WritesJSONLines(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(&buf, "protocol", LevelDebug)

	l.Info("sent request", Field{Key: "status", Value: 200})

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "info", lines[0]["level"])
	assert.Equal(t, "sent request", lines[0]["msg"])
	assert.Equal(t, "protocol", lines[0]["component"])
	assert.Equal(t, float64(200), lines[0]["fields"].(map[string]any)["status"])
}

func TestStdoutLogger_DropsBelowMinimum(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(&buf, "", LevelWarn)

	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown")
	l.Error("shown", Field{Key: "error", Value: errors.New("boom")})

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "boom", lines[1]["fields"].(map[string]any)["error"])
}

func TestStdoutLogger_WithKeepsFieldsAndComponent(t *testing.T) {
	var buf bytes.Buffer
	root := NewWriterLogger(&buf, "root", LevelDebug)
	child := root.With(Field{Key: "component", Value: "graph"}, Field{Key: "alias", Value: "primary"})

	child.Debug("hello")
	root.Debug("root line")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "graph", lines[0]["component"])
	assert.Equal(t, "primary", lines[0]["fields"].(map[string]any)["alias"])
	assert.Equal(t, "root", lines[1]["component"])
	assert.Nil(t, lines[1]["fields"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel("nonsense"))
}

func TestZapLogger_ForwardsFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewZapFromLogger(zap.New(core)).With(Field{Key: "component", Value: "journal"})

	l.Warn("record failed", Field{Key: "error", Value: errors.New("disk full")}, Field{Key: "url", Value: "/_api/version"})

	entries := logs.FilterMessage("record failed").All()
	require.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "journal", ctx["component"])
	assert.Equal(t, "disk full", ctx["error"])
	assert.Equal(t, "/_api/version", ctx["url"])
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
}

func TestNew_SelectsBackend(t *testing.T) {
	l, err := New(Config{Format: "none"}, "x")
	require.NoError(t, err)
	assert.IsType(t, NopLogger{}, l)

	l, err = New(Config{Format: "json", Level: "debug"}, "x")
	require.NoError(t, err)
	assert.IsType(t, &ZapLogger{}, l)

	l, err = New(DefaultConfig(), "x")
	require.NoError(t, err)
	assert.IsType(t, &StdoutLogger{}, l)

	_, err = New(Config{Format: "xml"}, "x")
	assert.Error(t, err)

	_, err = New(Config{Format: "json", Level: "loud"}, "x")
	assert.Error(t, err)
}

func TestOrNop(t *testing.T) {
	assert.IsType(t, NopLogger{}, OrNop(nil))
	l := NewStdoutLogger("x")
	assert.Same(t, l, OrNop(l))
}

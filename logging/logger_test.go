package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
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

func TestNewFromConfig_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewFromConfig(Config{Service: "knapsack", Module: "test", Level: "info", Writer: &buf})

	l.Info("evolution started", "items", 100)
	l.Debug("hidden")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "evolution started", lines[0]["msg"])
	assert.Equal(t, "knapsack", lines[0]["service"])
	assert.Equal(t, "test", lines[0]["module"])
	assert.EqualValues(t, 100, lines[0]["items"])
	assert.Contains(t, lines[0], "timestamp")
	assert.NotContains(t, lines[0], "time")
}

func TestSetLevel_AppliesToExistingLoggers(t *testing.T) {
	var buf bytes.Buffer
	l := NewFromConfig(Config{Service: "knapsack", Level: "warn", Writer: &buf})
	t.Cleanup(func() { level.Set(slog.LevelInfo) })

	l.Info("dropped")
	SetLevel("debug")
	l.Debug("kept")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "kept", lines[0]["msg"])
	assert.Equal(t, slog.LevelDebug, Level())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}

func TestTraceHandler_InjectsSpanIDs(t *testing.T) {
	var buf bytes.Buffer
	l := NewFromConfig(Config{Service: "knapsack", Level: "info", Writer: &buf})

	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	ctx, span := tp.Tracer("test").Start(context.Background(), "solve")
	l.InfoContext(ctx, "inside span")
	span.End()

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, span.SpanContext().TraceID().String(), lines[0]["trace_id"])
	assert.Equal(t, span.SpanContext().SpanID().String(), lines[0]["span_id"])
}

func TestNewFromConfig_FileOutput(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "knapsack.log")
	l := NewFromConfig(Config{Service: "knapsack", Level: "info", Format: "text", File: path, MaxSize: 1, Writer: &buf})

	l.Info("both outputs", "best_quality", 20)
	require.NoError(t, l.Close())

	assert.Contains(t, buf.String(), "best_quality=20")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var rec map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &rec))
	assert.Equal(t, "both outputs", rec["msg"])
}

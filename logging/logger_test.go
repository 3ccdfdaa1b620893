package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   LogLevelDebug,
		"INFO":    LogLevelInfo,
		"":        LogLevelInfo,
		"warning": LogLevelWarn,
		" error ": LogLevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestNewSlogLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewSlogLogger(LogLevelInfo, "json", &buf)

	l.Debug("hidden")
	l.Info("tool.call.success", "tool", "create_order")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "tool.call.success", entry["msg"])
	assert.Equal(t, "create_order", entry["tool"])
	assert.Equal(t, "INFO", entry["level"])
}

func TestNewSlogLogger_TextAndWith(t *testing.T) {
	var buf bytes.Buffer
	l := With(NewSlogLogger(LogLevelDebug, "text", &buf), "component", "agent")
	l.Warn("agent.step", "n", 2)

	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "component=agent")
	assert.Contains(t, out, "n=2")
}

func TestOrNoOp(t *testing.T) {
	assert.Equal(t, NoOpLogger{}, OrNoOp(nil))
	l := NewSlogLogger(LogLevelError, "json", &bytes.Buffer{})
	assert.Same(t, l, OrNoOp(l))
	assert.Equal(t, NoOpLogger{}, With(NoOpLogger{}, "k", "v"))
}

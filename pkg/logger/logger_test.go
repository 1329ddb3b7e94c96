package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/gamedex/gdb/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.LogConfig{Level: "info", Format: "text"}

	logger := NewWithWriter(cfg, &buf)
	logger.Info("test message", "key", "value")

	output := buf.String()
	assert.Contains(t, output, "test message")
	assert.Contains(t, output, "key=value")
	assert.Contains(t, output, "level=INFO")
}

func TestNewWithWriter_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.LogConfig{Level: "info", Format: "json"}

	logger := NewWithWriter(cfg, &buf)
	logger.Info("test message", "key", "value")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "test message", entry["msg"])
	assert.Equal(t, "value", entry["key"])
	assert.Equal(t, "INFO", entry["level"])
}

func TestNewWithWriter_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.LogConfig{Level: "warn", Format: "text"}

	logger := NewWithWriter(cfg, &buf)
	logger.Info("suppressed")
	logger.Warn("emitted")

	output := buf.String()
	assert.NotContains(t, output, "suppressed")
	assert.Contains(t, output, "emitted")
}

func TestNewWithWriter_InvalidFormatDefaultsToText(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.LogConfig{Level: "info", Format: "xml"}

	logger := NewWithWriter(cfg, &buf)
	logger.Info("hello")

	assert.Contains(t, buf.String(), "msg=hello")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.input), tt.input)
	}
}

package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func prettyLogger(buf *bytes.Buffer, level slog.Level) *Logger {
	return New(Config{Level: level, Format: "pretty", Writer: buf})
}

func TestNew_DefaultWriter(t *testing.T) {
	logger := New(Config{Level: slog.LevelInfo, Format: "json"})
	assert.NotNil(t, logger)
	assert.NotNil(t, logger.Logger)
}

func TestNew_FormatAutoDetection(t *testing.T) {
	tests := []struct {
		environment string
		wantJSON    bool
	}{
		{"production", true},
		{"staging", false},
		{"development", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.environment, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(Config{Environment: tt.environment, Level: slog.LevelInfo, Writer: &buf})
			logger.Info("hello")

			isJSON := strings.HasPrefix(strings.TrimSpace(buf.String()), "{")
			assert.Equal(t, tt.wantJSON, isJSON, buf.String())
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.input))
		})
	}
}

func TestComponent_Pretty(t *testing.T) {
	var buf bytes.Buffer
	logger := prettyLogger(&buf, slog.LevelInfo)

	logger.Component("league").Info("state loaded", slog.Int("players", 4))

	out := buf.String()
	assert.Contains(t, out, "[league]")
	assert.Contains(t, out, "state loaded")
	assert.Contains(t, out, "players=4")
	assert.NotContains(t, out, "component=")
}

func TestComponent_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Format: "json", Writer: &buf})

	logger.Component("broadcast").Info("joined")
	assert.Contains(t, buf.String(), `"component":"broadcast"`)
}

func TestPrettyHandler_Groups(t *testing.T) {
	var buf bytes.Buffer
	logger := prettyLogger(&buf, slog.LevelInfo)

	logger.WithGroup("sync").Info("published",
		slog.String("channel", "DOMINO_PRO_SYNC"),
		slog.Group("stats", slog.Int("delivered", 2), slog.Int("dropped", 1)))

	out := buf.String()
	assert.Contains(t, out, "sync.channel=DOMINO_PRO_SYNC")
	assert.Contains(t, out, "sync.stats.delivered=2")
	assert.Contains(t, out, "sync.stats.dropped=1")
}

func TestPrettyHandler_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := prettyLogger(&buf, slog.LevelWarn)

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "WRN")
	assert.Contains(t, out, "shown")
}

func TestPrettyHandler_NilOptions(t *testing.T) {
	var buf bytes.Buffer
	h := NewPrettyHandler(&buf, nil)

	assert.True(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.False(t, h.Enabled(context.Background(), slog.LevelDebug))
}

func TestPrettyHandler_WithSource(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Format: "pretty", Writer: &buf, AddSource: true})

	logger.Info("with source")
	assert.Contains(t, buf.String(), "logger_test.go:")
}

func TestFormatValue(t *testing.T) {
	ts := time.Date(2026, 10, 13, 14, 0, 0, 0, time.UTC)

	assert.Equal(t, "plain", formatValue(slog.StringValue("plain")))
	assert.Equal(t, `"two words"`, formatValue(slog.StringValue("two words")))
	assert.Equal(t, "2026-10-13T14:00:00Z", formatValue(slog.TimeValue(ts)))
	assert.Equal(t, "5s", formatValue(slog.DurationValue(5*time.Second)))
	assert.Equal(t, "42", formatValue(slog.IntValue(42)))
}

func TestLogger_WithError(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Format: "json", Writer: &buf})

	logger.WithError(errors.New("disk full")).Warn("persist failed")
	assert.Contains(t, buf.String(), `"error":"disk full"`)
}

func TestLogger_WithField(t *testing.T) {
	var buf bytes.Buffer
	logger := prettyLogger(&buf, slog.LevelInfo)

	logger.WithField("session_id", "session-1").Info("score updated")
	assert.Contains(t, buf.String(), "session_id=session-1")
}

func TestDiscard(t *testing.T) {
	require.NotNil(t, Discard().Logger)

	existing := slog.Default()
	assert.Same(t, existing, OrDiscard(existing))
	assert.NotNil(t, OrDiscard(nil))
}

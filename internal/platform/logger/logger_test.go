package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fooddrop/internal/platform/config"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNewFansOutByLevel(t *testing.T) {
	var main, errorsOnly bytes.Buffer
	tee := slog.NewJSONHandler(&errorsOnly, &slog.HandlerOptions{Level: slog.LevelError})
	log := NewWithWriter(&main, config.Log{Level: "info", Format: "json"}, tee).With("component", "test")

	log.Debug("hidden")
	log.Info("profile created", "user_id", "u1")
	log.Error("store down", "error", "timeout")

	lines := bytes.Split(bytes.TrimSpace(main.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	var rec map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &rec))
	assert.Equal(t, "profile created", rec["msg"])
	assert.Equal(t, "test", rec["component"])

	assert.Contains(t, errorsOnly.String(), "store down")
	assert.NotContains(t, errorsOnly.String(), "profile created")
}

func TestTextFormat(t *testing.T) {
	var buf bytes.Buffer
	NewWithWriter(&buf, config.Log{Format: "text"}).Info("hello", "k", "v")
	assert.Contains(t, buf.String(), "msg=hello k=v")
}

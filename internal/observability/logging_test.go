package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func logLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestRunLogger_AddsRunContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewRunLogger(NewJSONHandler(&buf, slog.LevelDebug), "run-123", "monitor")

	logger.Info(context.Background(), "tick", "datasets", 2)

	entry := logLine(t, &buf)
	assert.Equal(t, "run-123", entry["run_id"])
	assert.Equal(t, "monitor", entry["component"])
	assert.Equal(t, "tick", entry["msg"])
	assert.Equal(t, float64(2), entry["datasets"])
}

func TestRunLogger_RedactsCredentials(t *testing.T) {
	var buf bytes.Buffer
	logger := NewRunLogger(NewJSONHandler(&buf, slog.LevelDebug), "run-123", "creds")

	logger.Info(context.Background(), "probing", "api_key", "sk-secret", "endpoint", "http://x")

	entry := logLine(t, &buf)
	assert.Equal(t, "[REDACTED]", entry["api_key"])
	assert.Equal(t, "http://x", entry["endpoint"])
}

func TestRunLogger_DebugSkipsRedaction(t *testing.T) {
	var buf bytes.Buffer
	logger := NewRunLogger(NewJSONHandler(&buf, slog.LevelDebug), "run-123", "creds")

	logger.Debug(context.Background(), "probing", "token", "tok-1")

	entry := logLine(t, &buf)
	assert.Equal(t, "tok-1", entry["token"])
}

func TestRedactSensitiveData_OddArgsUntouched(t *testing.T) {
	args := []any{"api_key"}
	assert.Equal(t, args, redactSensitiveData(args))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

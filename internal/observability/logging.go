// Package observability provides structured logging for the harness:
// slog handlers, trace correlation, and redaction of credential fields.
package observability

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/trace"
)

// RunLogger is a structured logger bound to an evaluation run. It wraps
// slog.Logger, adds run and component context to every entry, correlates
// entries with the active OpenTelemetry span, and redacts credential
// fields at info level and above.
type RunLogger struct {
	logger          *slog.Logger
	runID           string
	component       string
	redactSensitive bool
}

// NewRunLogger creates a logger for one run and component.
//
// Parameters:
//   - handler: The slog.Handler to use for formatting and outputting logs
//   - runID: The identifier of the evaluation run
//   - component: The harness component producing logs (driver, monitor, ...)
//
// Returns:
//   - *RunLogger: A configured logger ready for use
func NewRunLogger(handler slog.Handler, runID, component string) *RunLogger {
	return &RunLogger{
		logger:          slog.New(handler),
		runID:           runID,
		component:       component,
		redactSensitive: true,
	}
}

// Debug logs a debug-level message with trace correlation. Debug logs
// include all fields without redaction.
func (l *RunLogger) Debug(ctx context.Context, msg string, args ...any) {
	l.WithContext(ctx).Debug(msg, args...)
}

// Info logs an info-level message with trace correlation and redaction.
func (l *RunLogger) Info(ctx context.Context, msg string, args ...any) {
	if l.redactSensitive {
		args = redactSensitiveData(args)
	}
	l.WithContext(ctx).Info(msg, args...)
}

// Warn logs a warning-level message with trace correlation and redaction.
func (l *RunLogger) Warn(ctx context.Context, msg string, args ...any) {
	if l.redactSensitive {
		args = redactSensitiveData(args)
	}
	l.WithContext(ctx).Warn(msg, args...)
}

// Error logs an error-level message with trace correlation and redaction.
func (l *RunLogger) Error(ctx context.Context, msg string, args ...any) {
	if l.redactSensitive {
		args = redactSensitiveData(args)
	}
	l.WithContext(ctx).Error(msg, args...)
}

// WithContext returns a slog.Logger carrying the run context plus the
// trace_id/span_id of the active span, when one exists.
func (l *RunLogger) WithContext(ctx context.Context) *slog.Logger {
	logger := l.logger.With(
		slog.String("run_id", l.runID),
		slog.String("component", l.component),
	)

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		spanCtx := span.SpanContext()
		logger = logger.With(
			slog.String("trace_id", spanCtx.TraceID().String()),
			slog.String("span_id", spanCtx.SpanID().String()),
		)
	}

	return logger
}

// NewJSONHandler creates a JSON log handler. JSON format is the default
// for unattended runs where logs are collected.
func NewJSONHandler(w io.Writer, level slog.Level) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})
}

// NewTextHandler creates a human-readable text handler for interactive
// use.
func NewTextHandler(w io.Writer, level slog.Level) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})
}

// ParseLevel maps a config level string to a slog.Level, defaulting to
// info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// redactSensitiveData replaces the values of credential fields with
// "[REDACTED]". Field names are matched case-insensitively with
// underscores stripped.
func redactSensitiveData(args []any) []any {
	if len(args)%2 != 0 {
		return args
	}

	sensitiveFields := map[string]bool{
		"apikey":     true,
		"secret":     true,
		"secretkey":  true,
		"password":   true,
		"token":      true,
		"credential": true,
	}

	redacted := make([]any, len(args))
	copy(redacted, args)

	for i := 0; i < len(args); i += 2 {
		if key, ok := args[i].(string); ok {
			normalizedKey := strings.ToLower(strings.ReplaceAll(key, "_", ""))
			if sensitiveFields[normalizedKey] {
				redacted[i+1] = "[REDACTED]"
			}
		}
	}

	return redacted
}

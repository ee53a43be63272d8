// Package logging provides the structured logger used across go-collide.
// It wraps Go's standard slog package with correlation IDs, error context
// preservation and attribute cleanup for geometry values.
package logging

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strings"
)

// LevelEnv names the environment variable holding the log level.
const LevelEnv = "COLLIDE_LOG_LEVEL"

// Logger wraps slog.Logger with context-aware helpers.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a JSON logger on stdout. The level comes from
// COLLIDE_LOG_LEVEL (DEBUG, INFO, WARN, ERROR) and defaults to INFO.
func NewLogger() *Logger {
	return NewLoggerTo(os.Stdout, getLogLevelFromEnv())
}

// NewLoggerTo creates a JSON logger writing to w at the given level.
func NewLoggerTo(w io.Writer, level slog.Level) *Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: sanitizeAttributes,
	})
	return &Logger{slog.New(handler)}
}

// Nop returns a logger that discards everything. Indexes and detectors use
// it until a real logger is attached.
func Nop() *Logger {
	return &Logger{slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))}
}

// With returns a logger that adds args to every entry.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{l.Logger.With(args...)}
}

// LogWithContext logs a message and adds the context's correlation ID when
// one is present.
func (l *Logger) LogWithContext(ctx context.Context, level slog.Level, msg string, args ...any) {
	if correlationID := GetCorrelationID(ctx); correlationID != "" {
		args = append(args, "correlation_id", correlationID)
	}
	l.Log(ctx, level, msg, args...)
}

// Info logs an informational message with context.
func (l *Logger) Info(ctx context.Context, msg string, args ...any) {
	l.LogWithContext(ctx, slog.LevelInfo, msg, args...)
}

// Warn logs a warning message with context.
func (l *Logger) Warn(ctx context.Context, msg string, args ...any) {
	l.LogWithContext(ctx, slog.LevelWarn, msg, args...)
}

// Error logs an error message with context and proper error formatting.
func (l *Logger) Error(ctx context.Context, msg string, err error, args ...any) {
	if err != nil {
		args = append(args, "error", err.Error())
	}
	l.LogWithContext(ctx, slog.LevelError, msg, args...)
}

// Debug logs a debug message with context.
func (l *Logger) Debug(ctx context.Context, msg string, args ...any) {
	l.LogWithContext(ctx, slog.LevelDebug, msg, args...)
}

// DebugEnabled reports whether debug entries would be written, so callers
// can skip building expensive attributes.
func (l *Logger) DebugEnabled(ctx context.Context) bool {
	return l.Enabled(ctx, slog.LevelDebug)
}

type correlationIDKey struct{}

// WithCorrelationID adds a correlation ID to the context.
// If no correlation ID is provided, a new one will be generated.
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	if correlationID == "" {
		correlationID = GenerateCorrelationID()
	}
	return context.WithValue(ctx, correlationIDKey{}, correlationID)
}

// GetCorrelationID extracts the correlation ID from the context.
// Returns empty string if no correlation ID is present.
func GetCorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(correlationIDKey{}).(string); ok {
		return id
	}
	return ""
}

// GenerateCorrelationID creates a new random correlation ID.
func GenerateCorrelationID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// ParseLevel maps a level name to its slog level. Unknown names map to
// INFO and report false.
func ParseLevel(name string) (slog.Level, bool) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return slog.LevelDebug, true
	case "INFO":
		return slog.LevelInfo, true
	case "WARN", "WARNING":
		return slog.LevelWarn, true
	case "ERROR":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}

func getLogLevelFromEnv() slog.Level {
	level, _ := ParseLevel(os.Getenv(LevelEnv))
	return level
}

// sanitizeAttributes keeps entries encodable: NaN and infinite floats have
// no JSON form and are written as strings, and credentials that reach a
// log line through scene metadata are masked.
func sanitizeAttributes(groups []string, a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindFloat64 {
		if f := a.Value.Float64(); math.IsNaN(f) || math.IsInf(f, 0) {
			return slog.String(a.Key, fmt.Sprint(f))
		}
	}

	key := strings.ToLower(a.Key)
	for _, sensitive := range []string{"password", "token", "secret", "authorization"} {
		if strings.Contains(key, sensitive) {
			return slog.String(a.Key, "[REDACTED]")
		}
	}
	return a
}

// WrapError wraps an error with additional context information.
// This preserves the original error while adding descriptive context.
func WrapError(err error, context string, args ...any) error {
	if err == nil {
		return nil
	}
	if len(args) > 0 {
		context = fmt.Sprintf(context, args...)
	}
	return fmt.Errorf("%s: %w", context, err)
}

// Package logging builds the leveled slog loggers used by the CLI and the
// sweep harness. Operational output goes to stderr so result tables on
// stdout stay machine-readable.
package logging

import (
	"io"
	"log/slog"
	"strings"

	"github.com/san-kum/vsrbench/internal/dynamo"
)

// ParseLevel maps a level name to a slog.Level, case-insensitively.
// Unknown values default to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a leveled text logger writing to w.
func NewLogger(level string, w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)}))
}

// Discard returns l, or a logger that drops everything when l is nil.
func Discard(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.New(slog.DiscardHandler)
}

// FieldArgs flattens fields into alternating key/value args for slog, followed
// by extra.
func FieldArgs(fields []dynamo.Field, extra ...any) []any {
	args := make([]any, 0, 2*len(fields)+len(extra))
	for _, f := range fields {
		args = append(args, f.Name, f.Value)
	}
	return append(args, extra...)
}

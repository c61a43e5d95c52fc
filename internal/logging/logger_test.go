package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/san-kum/vsrbench/internal/dynamo"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  slog.Level
	}{
		{"info", "info", slog.LevelInfo},
		{"debug", "debug", slog.LevelDebug},
		{"warn", "warn", slog.LevelWarn},
		{"warning alias", "warning", slog.LevelWarn},
		{"error", "error", slog.LevelError},
		{"uppercase DEBUG", "DEBUG", slog.LevelDebug},
		{"padded", " error ", slog.LevelError},
		{"unknown defaults to info", "loud", slog.LevelInfo},
		{"empty defaults to info", "", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("warn", &buf)

	logger.Info("hidden")
	logger.Warn("cannot bind sweep value", "key", "builder.mass")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info message written at warn level")
	}
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "key=builder.mass") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestDiscard(t *testing.T) {
	Discard(nil).Error("dropped")

	l := slog.Default()
	if Discard(l) != l {
		t.Error("Discard replaced a non-nil logger")
	}
}

func TestFieldArgs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("info", &buf)

	keys := []dynamo.Field{{Name: "shape", Value: "3x3"}, {Name: "iteration", Value: 2}}
	logger.Error("trial failed", FieldArgs(keys, "error", "diverged")...)

	out := buf.String()
	for _, want := range []string{"shape=3x3", "iteration=2", "error=diverged"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in %q", want, out)
		}
	}
}

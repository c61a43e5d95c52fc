// Package storage writes result tables to CSV (optionally zstd-compressed),
// SQLite or JSON.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Sink receives a table. Write may be called more than once; the header is
// taken from the first call and later calls must carry the same one.
type Sink interface {
	Write(header []string, records [][]any) error
	Close() error
}

// Open picks a sink from the path: "" or "-" is CSV on stdout, .csv.zst is
// compressed CSV, .db/.sqlite/.sqlite3 is a SQLite table named "results" and
// anything else is plain CSV.
func Open(path string) (Sink, error) {
	return OpenTable(path, DefaultTable)
}

// OpenTable is Open with an explicit SQLite table name. Non-SQLite sinks
// ignore table.
func OpenTable(path, table string) (Sink, error) {
	lower := strings.ToLower(path)
	switch {
	case path == "" || path == "-":
		return newCSVSink(nopCloser{os.Stdout}), nil
	case strings.HasSuffix(lower, ".csv.zst"):
		f, err := create(path)
		if err != nil {
			return nil, err
		}
		return newZstdCSVSink(f)
	case strings.HasSuffix(lower, ".db"), strings.HasSuffix(lower, ".sqlite"), strings.HasSuffix(lower, ".sqlite3"):
		return openSQLite(path, table)
	default:
		f, err := create(path)
		if err != nil {
			return nil, err
		}
		return newCSVSink(f), nil
	}
}

func create(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// FormatCell renders one cell for text sinks. Floats use the shortest
// representation that round-trips.
func FormatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

func sameHeader(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

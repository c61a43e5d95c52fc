package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

const DefaultTable = "results"

// sqliteSink stores every column untyped; SQLite keeps the dynamic type of
// each value, so integers stay integers and floats stay floats.
type sqliteSink struct {
	db     *sql.DB
	table  string
	header []string
}

func openSQLite(path, table string) (*sqliteSink, error) {
	if table == "" {
		table = DefaultTable
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage: %w", err)
	}
	return &sqliteSink{db: db, table: table}, nil
}

func (s *sqliteSink) Write(header []string, records [][]any) error {
	if s.header == nil {
		cols := make([]string, len(header))
		for i, h := range header {
			cols[i] = quoteIdent(h)
		}
		ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quoteIdent(s.table), strings.Join(cols, ", "))
		if _, err := s.db.Exec(ddl); err != nil {
			return fmt.Errorf("storage: create table: %w", err)
		}
		s.header = append([]string(nil), header...)
	} else if !sameHeader(s.header, header) {
		return fmt.Errorf("storage: header changed from %v to %v", s.header, header)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	cols := make([]string, len(header))
	marks := make([]string, len(header))
	for i, h := range header {
		cols[i] = quoteIdent(h)
		marks[i] = "?"
	}
	stmt, err := tx.Prepare(fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(s.table), strings.Join(cols, ", "), strings.Join(marks, ", ")))
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	args := make([]any, len(header))
	for _, rec := range records {
		for i := range args {
			args[i] = nil
			if i < len(rec) {
				args[i] = sqlValue(rec[i])
			}
		}
		if _, err := stmt.Exec(args...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("storage: insert: %w", err)
		}
	}
	return tx.Commit()
}

func (s *sqliteSink) Close() error { return s.db.Close() }

func sqlValue(v any) any {
	switch x := v.(type) {
	case nil, string, float64, int64, bool:
		return x
	case int:
		return int64(x)
	case float32:
		return float64(x)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Package store persists a ledger of pipeline stage executions in SQLite.
// The ledger is optional: commands run identically with it disabled, it
// only adds reproducibility bookkeeping for the thesis write-up.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Run is one recorded stage execution.
type Run struct {
	ID       string
	Stage    string
	Input    string
	Output   string
	Rows     int
	Duration time.Duration
	Warning  string
	Started  time.Time
}

// Ledger wraps the SQLite database holding the runs table.
type Ledger struct {
	db   *sql.DB
	path string
}

// Open initializes the ledger database at path, creating the directory
// and schema as needed. Use ":memory:" for an ephemeral ledger.
func Open(path string) (*Ledger, error) {
	if path == "" {
		return nil, fmt.Errorf("ledger path required")
	}

	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy_timeout: %w", err)
	}
	// WAL keeps repeated stage runs from blocking each other on the same
	// ledger file.
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set journal_mode: %w", err)
	}

	l := &Ledger{db: db, path: path}
	if err := l.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return l, nil
}

func (l *Ledger) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id          TEXT PRIMARY KEY,
		stage       TEXT NOT NULL,
		input       TEXT NOT NULL DEFAULT '',
		output      TEXT NOT NULL DEFAULT '',
		row_count   INTEGER NOT NULL DEFAULT 0,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		warning     TEXT NOT NULL DEFAULT '',
		started_at  TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_stage ON runs(stage);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);`

	if _, err := l.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// RecordRun inserts a run row, assigning a fresh id when none is set.
func (l *Ledger) RecordRun(r Run) (string, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Started.IsZero() {
		r.Started = time.Now().UTC()
	}

	_, err := l.db.Exec(`
		INSERT INTO runs (id, stage, input, output, row_count, duration_ms, warning, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Stage, r.Input, r.Output, r.Rows, r.Duration.Milliseconds(), r.Warning,
		r.Started.Format(time.RFC3339Nano))
	if err != nil {
		return "", fmt.Errorf("failed to record run: %w", err)
	}
	return r.ID, nil
}

// ListRuns returns up to limit runs, newest first. A non-positive limit
// returns everything.
func (l *Ledger) ListRuns(limit int) ([]Run, error) {
	query := `
		SELECT id, stage, input, output, row_count, duration_ms, warning, started_at
		FROM runs ORDER BY started_at DESC, id`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := l.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var durationMS int64
		var started string
		if err := rows.Scan(&r.ID, &r.Stage, &r.Input, &r.Output, &r.Rows,
			&durationMS, &r.Warning, &started); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.Duration = time.Duration(durationMS) * time.Millisecond
		if ts, err := time.Parse(time.RFC3339Nano, started); err == nil {
			r.Started = ts
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Close closes the database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

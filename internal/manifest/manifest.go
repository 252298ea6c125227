// Package manifest records per-run render outcomes in SQLite.
//
// One row per discovered entry, keyed by run ID, so operators can query what
// a past run produced and which entries were degraded or skipped without
// grepping logs.
package manifest

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Status classifies an entry's outcome.
type Status string

const (
	// StatusRendered means the readiness predicate passed before capture.
	StatusRendered Status = "rendered"

	// StatusDegraded means the readiness wait timed out and the capture is
	// best-effort (may still contain the loading sentinel).
	StatusDegraded Status = "degraded"

	// StatusFailed means the entry errored and no output was written.
	StatusFailed Status = "failed"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	started_at  INTEGER NOT NULL,
	finished_at INTEGER
);
CREATE TABLE IF NOT EXISTS results (
	run_id      TEXT NOT NULL REFERENCES runs(id),
	entry       TEXT NOT NULL,
	status      TEXT NOT NULL,
	bytes       INTEGER NOT NULL DEFAULT 0,
	duration_ms INTEGER NOT NULL DEFAULT 0,
	error       TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (run_id, entry)
);
`

// Result is one entry's recorded outcome.
type Result struct {
	Entry    string
	Status   Status
	Bytes    int
	Duration time.Duration
	Error    string
}

// Store wraps the manifest database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) a manifest database at path, applying the
// usual single-local-writer pragmas.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("manifest: create %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("manifest: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	return NewStore(db)
}

// NewStore applies pragmas and schema to an already-open database.
func NewStore(db *sql.DB) (*Store, error) {
	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			return nil, fmt.Errorf("manifest: %s: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("manifest: schema: %w", err)
	}
	return &Store{db: db}, nil
}

// BeginRun records a run start.
func (s *Store) BeginRun(ctx context.Context, runID string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO runs (id, started_at) VALUES (?, ?)",
		runID, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("manifest: begin run: %w", err)
	}
	return nil
}

// FinishRun stamps a run's end time.
func (s *Store) FinishRun(ctx context.Context, runID string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE runs SET finished_at = ? WHERE id = ?",
		time.Now().UnixMilli(), runID)
	if err != nil {
		return fmt.Errorf("manifest: finish run: %w", err)
	}
	return nil
}

// Record upserts one entry outcome for a run.
func (s *Store) Record(ctx context.Context, runID string, r Result) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO results (run_id, entry, status, bytes, duration_ms, error)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (run_id, entry) DO UPDATE SET
			status = excluded.status,
			bytes = excluded.bytes,
			duration_ms = excluded.duration_ms,
			error = excluded.error`,
		runID, r.Entry, string(r.Status), r.Bytes, r.Duration.Milliseconds(), r.Error)
	if err != nil {
		return fmt.Errorf("manifest: record %s: %w", r.Entry, err)
	}
	return nil
}

// Results returns a run's outcomes in entry order.
func (s *Store) Results(ctx context.Context, runID string) ([]Result, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT entry, status, bytes, duration_ms, error
		FROM results WHERE run_id = ? ORDER BY entry`, runID)
	if err != nil {
		return nil, fmt.Errorf("manifest: query results: %w", err)
	}
	defer rows.Close()

	var out []Result
	for rows.Next() {
		var r Result
		var status string
		var ms int64
		if err := rows.Scan(&r.Entry, &status, &r.Bytes, &ms, &r.Error); err != nil {
			return nil, fmt.Errorf("manifest: scan result: %w", err)
		}
		r.Status = Status(status)
		r.Duration = time.Duration(ms) * time.Millisecond
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

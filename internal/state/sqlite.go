package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Store is the SQLite-backed run history and fingerprint store.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens or creates the store at path. Use ":memory:" for an in-memory
// database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// Every connection to ":memory:" is its own database.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		revision TEXT NOT NULL,
		status TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		ended_at INTEGER,
		targets INTEGER NOT NULL DEFAULT 0,
		written INTEGER NOT NULL DEFAULT 0,
		unchanged INTEGER NOT NULL DEFAULT 0,
		removed INTEGER NOT NULL DEFAULT 0,
		warnings INTEGER NOT NULL DEFAULT 0,
		error TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
	CREATE TABLE IF NOT EXISTS pages (
		target TEXT PRIMARY KEY,
		fingerprint TEXT NOT NULL,
		run_id TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// BeginRun records the start of a run.
func (s *Store) BeginRun(ctx context.Context, id, revision string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO runs (id, revision, status, started_at) VALUES (?, ?, ?, ?)",
		id, revision, string(RunStatusRunning), time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// FinishRun stores the outcome of a run started with BeginRun.
func (s *Store) FinishRun(ctx context.Context, run RunSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ended := run.EndedAt
	if ended.IsZero() {
		ended = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, ended_at = ?, targets = ?, written = ?, unchanged = ?,
		 removed = ?, warnings = ?, error = ? WHERE id = ?`,
		string(run.Status), ended.UnixMilli(), run.Targets, run.Written, run.Unchanged,
		run.Removed, run.Warnings, nullString(run.Error), run.ID,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish run %s: %w", run.ID, ErrUnknownRun)
	}
	return nil
}

// ErrUnknownRun is returned by FinishRun for an id BeginRun never saw.
var ErrUnknownRun = errors.New("unknown run")

// PageFingerprint returns the last fingerprint written for target.
func (s *Store) PageFingerprint(ctx context.Context, target string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var fp string
	err := s.db.QueryRowContext(ctx, "SELECT fingerprint FROM pages WHERE target = ?", target).Scan(&fp)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query page fingerprint: %w", err)
	}
	return fp, true, nil
}

// PutPageFingerprint records the fingerprint written for target by runID.
func (s *Store) PutPageFingerprint(ctx context.Context, runID, target, fingerprint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO pages (target, fingerprint, run_id, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(target) DO UPDATE SET fingerprint = excluded.fingerprint,
		 run_id = excluded.run_id, updated_at = excluded.updated_at`,
		target, fingerprint, runID, time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("upsert page fingerprint: %w", err)
	}
	return nil
}

// DeletePage forgets the fingerprint of a removed page.
func (s *Store) DeletePage(ctx context.Context, target string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM pages WHERE target = ?", target); err != nil {
		return fmt.Errorf("delete page: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, revision, status, started_at, ended_at, targets, written, unchanged, removed, warnings, error
		 FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var (
			r       RunSummary
			status  string
			started int64
			ended   sql.NullInt64
			errMsg  sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.Revision, &status, &started, &ended,
			&r.Targets, &r.Written, &r.Unchanged, &r.Removed, &r.Warnings, &errMsg); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Status = RunStatus(status)
		r.StartedAt = time.UnixMilli(started)
		if ended.Valid {
			r.EndedAt = time.UnixMilli(ended.Int64)
		}
		r.Error = errMsg.String
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return runs, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

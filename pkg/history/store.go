package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// Run is one recorded export run.
type Run struct {
	// ID is the run's UUID.
	ID string

	// StartedAt and FinishedAt bracket the run.
	StartedAt  time.Time
	FinishedAt time.Time

	// DocumentVersion is the opaque host document version the run saw.
	DocumentVersion string

	// Committed, Failed, and Warnings are the run's summary counts.
	Committed int
	Failed    int
	Warnings  int

	// CommitSHA is the git commit created by --commit, empty otherwise.
	CommitSHA string
}

// FileRecord is one attempted file within a run.
type FileRecord struct {
	// RunID is the owning run.
	RunID string

	// Path is the resolved output path.
	Path string

	// Component is the design component name.
	Component string

	// Result is "committed" or "failed".
	Result string

	// Reason is the planner's reason for the action.
	Reason string

	// Error is the failure message for failed files.
	Error string

	// Duration is the host export call duration.
	Duration time.Duration
}

// Store is a SQLite-backed history store.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (and if necessary creates) the history database at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("history database path cannot be empty")
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL",
		path, int((5 * time.Second).Milliseconds()))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	store := &Store{db: db, path: path}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}
	return store, nil
}

// initSchema creates the database schema if it doesn't exist.
func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at INTEGER NOT NULL,
		finished_at INTEGER NOT NULL,
		document_version TEXT NOT NULL DEFAULT '',
		committed INTEGER NOT NULL,
		failed INTEGER NOT NULL,
		warnings INTEGER NOT NULL,
		commit_sha TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS run_files (
		run_id TEXT NOT NULL REFERENCES runs(id),
		path TEXT NOT NULL,
		component TEXT NOT NULL,
		result TEXT NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		error TEXT NOT NULL DEFAULT '',
		duration_ms INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (run_id, path)
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	CREATE INDEX IF NOT EXISTS idx_run_files_path ON run_files(path);
	`

	_, err := s.db.Exec(schema)
	return err
}

// RecordRun persists a run and its file records in one transaction.
func (s *Store) RecordRun(ctx context.Context, run Run, files []FileRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, finished_at, document_version, committed, failed, warnings, commit_sha)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.UnixMilli(),
		run.FinishedAt.UnixMilli(),
		run.DocumentVersion,
		run.Committed,
		run.Failed,
		run.Warnings,
		run.CommitSHA,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for _, f := range files {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO run_files (run_id, path, component, result, reason, error, duration_ms)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			run.ID, f.Path, f.Component, f.Result, f.Reason, f.Error, f.Duration.Milliseconds(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert file record %q: %w", f.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit history transaction: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, finished_at, document_version, committed, failed, warnings, commit_sha
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started, finished int64
		if err := rows.Scan(&r.ID, &started, &finished, &r.DocumentVersion,
			&r.Committed, &r.Failed, &r.Warnings, &r.CommitSHA); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.StartedAt = time.UnixMilli(started)
		r.FinishedAt = time.UnixMilli(finished)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunFiles returns the file records of a run, sorted by path.
func (s *Store) RunFiles(ctx context.Context, runID string) ([]FileRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, path, component, result, reason, error, duration_ms
		FROM run_files WHERE run_id = ? ORDER BY path`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query run files: %w", err)
	}
	defer rows.Close()

	var files []FileRecord
	for rows.Next() {
		var f FileRecord
		var durationMS int64
		if err := rows.Scan(&f.RunID, &f.Path, &f.Component, &f.Result, &f.Reason, &f.Error, &durationMS); err != nil {
			return nil, fmt.Errorf("failed to scan file record: %w", err)
		}
		f.Duration = time.Duration(durationMS) * time.Millisecond
		files = append(files, f)
	}
	return files, rows.Err()
}

// PathHistory returns the file records for one output path across runs,
// newest run first.
func (s *Store) PathHistory(ctx context.Context, path string, limit int) ([]FileRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT rf.run_id, rf.path, rf.component, rf.result, rf.reason, rf.error, rf.duration_ms
		FROM run_files rf JOIN runs r ON r.id = rf.run_id
		WHERE rf.path = ? ORDER BY r.started_at DESC LIMIT ?`, path, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query path history: %w", err)
	}
	defer rows.Close()

	var files []FileRecord
	for rows.Next() {
		var f FileRecord
		var durationMS int64
		if err := rows.Scan(&f.RunID, &f.Path, &f.Component, &f.Result, &f.Reason, &f.Error, &durationMS); err != nil {
			return nil, fmt.Errorf("failed to scan file record: %w", err)
		}
		f.Duration = time.Duration(durationMS) * time.Millisecond
		files = append(files, f)
	}
	return files, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

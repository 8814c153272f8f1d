package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Compile-time interface check.
var _ RunStore = (*SQLiteRunStore)(nil)

// SQLiteRunStore implements RunStore backed by a SQLite database.
type SQLiteRunStore struct {
	db *sql.DB
}

const runsSchema = `
CREATE TABLE IF NOT EXISTS runs (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at     TEXT    NOT NULL,
	symbols        TEXT    NOT NULL,
	strategy       TEXT    NOT NULL,
	start_date     TEXT    NOT NULL,
	end_date       TEXT    NOT NULL,
	amount         REAL    NOT NULL,
	best_performer TEXT    NOT NULL DEFAULT '',
	result_count   INTEGER NOT NULL,
	error_count    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs (created_at DESC);
`

// NewSQLiteRunStore opens (or creates) a SQLite database at dbPath and
// ensures the runs table exists.
func NewSQLiteRunStore(dbPath string) (*SQLiteRunStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(runsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating runs schema: %w", err)
	}
	return &SQLiteRunStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteRunStore) Close() error {
	return s.db.Close()
}

// RecordRun inserts a run record and fills in its ID and CreatedAt.
func (s *SQLiteRunStore) RecordRun(ctx context.Context, run *RunRecord) error {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (created_at, symbols, strategy, start_date, end_date,
			amount, best_performer, result_count, error_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.CreatedAt.Format(time.RFC3339), run.Symbols, run.Strategy,
		run.StartDate, run.EndDate, run.Amount, run.BestPerformer,
		run.ResultCount, run.ErrorCount,
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	run.ID = id
	return nil
}

// ListRuns returns the most recent runs, newest first, up to limit.
func (s *SQLiteRunStore) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, symbols, strategy, start_date, end_date,
			amount, best_performer, result_count, error_count
		FROM runs
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		var created string
		if err := rows.Scan(&r.ID, &created, &r.Symbols, &r.Strategy,
			&r.StartDate, &r.EndDate, &r.Amount, &r.BestPerformer,
			&r.ResultCount, &r.ErrorCount); err != nil {
			return nil, err
		}
		if ts, perr := time.Parse(time.RFC3339, created); perr == nil {
			r.CreatedAt = ts
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

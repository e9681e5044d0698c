package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"tgcheck/internal/check"
	"tgcheck/internal/database/migrations"
)

// SQLiteHistory stores run reports in SQLite.
type SQLiteHistory struct {
	db   *sql.DB
	path string
}

var _ check.RunHistory = (*SQLiteHistory)(nil)

// NewSQLiteHistory opens the history database at path and migrates it to the
// latest schema. path can be a file path or ":memory:".
func NewSQLiteHistory(path string) (*SQLiteHistory, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	if err := migrations.Up(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating history database: %w", err)
	}

	return &SQLiteHistory{db: db, path: path}, nil
}

// OpenConnection opens a SQLite connection with foreign keys enabled.
// A single connection is kept open so ":memory:" databases survive between
// queries.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// RecordRun stores a finished run and all of its results in one transaction.
func (s *SQLiteHistory) RecordRun(report *check.RunReport) error {
	ctx := context.Background()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, finished_at, success) VALUES (?, ?, ?, ?)`,
		report.ID, report.StartedAt.UTC(), report.FinishedAt.UTC(), report.Success())
	if err != nil {
		return fmt.Errorf("inserting run %s: %w", report.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO run_results
		(run_id, position, phone, proxy, outcome, retry_after_seconds, reason, quarantined)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing result insert: %w", err)
	}
	defer stmt.Close()

	for i, res := range report.Results {
		_, err := stmt.ExecContext(ctx, report.ID, i, res.Phone, res.Proxy,
			res.Outcome.Kind.String(), int64(res.Outcome.RetryAfter/time.Second),
			res.Outcome.Reason, res.Quarantined)
		if err != nil {
			return fmt.Errorf("inserting result for %s: %w", res.Phone, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first, with their results in
// the order they were recorded.
func (s *SQLiteHistory) RecentRuns(limit int) ([]*check.RunReport, error) {
	ctx := context.Background()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}

	var runs []*check.RunReport
	for rows.Next() {
		r := &check.RunReport{}
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.FinishedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	rows.Close()

	// Results are loaded after the runs cursor is closed: the pool holds a
	// single connection.
	for _, r := range runs {
		results, err := s.results(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		r.Results = results
	}
	return runs, nil
}

func (s *SQLiteHistory) results(ctx context.Context, runID string) ([]check.Result, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT phone, proxy, outcome, retry_after_seconds, reason, quarantined
		FROM run_results WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("loading results for run %s: %w", runID, err)
	}
	defer rows.Close()

	var results []check.Result
	for rows.Next() {
		var (
			res     check.Result
			outcome string
			retry   int64
		)
		if err := rows.Scan(&res.Phone, &res.Proxy, &outcome, &retry, &res.Outcome.Reason, &res.Quarantined); err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}
		kind, err := check.ParseOutcomeKind(outcome)
		if err != nil {
			return nil, fmt.Errorf("run %s: %w", runID, err)
		}
		res.Outcome.Kind = kind
		res.Outcome.RetryAfter = time.Duration(retry) * time.Second
		results = append(results, res)
	}
	return results, rows.Err()
}

// Path returns the database file path.
func (s *SQLiteHistory) Path() string {
	return s.path
}

// CheckMigrations verifies the schema is up to date.
func (s *SQLiteHistory) CheckMigrations() error {
	return migrations.Status(s.db)
}

// Close closes the database connection.
func (s *SQLiteHistory) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"docforge/internal/report"
	"docforge/internal/services"
)

// Store persists batch history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

const schemaVersion = 1

const schemaSQL = `
CREATE TABLE schema_version (
    version INTEGER NOT NULL
);

CREATE TABLE batches (
    batch_id        TEXT PRIMARY KEY,
    operation       TEXT NOT NULL,
    started_at      TEXT NOT NULL,
    finished_at     TEXT NOT NULL,
    total           INTEGER NOT NULL,
    succeeded       INTEGER NOT NULL,
    skipped         INTEGER NOT NULL,
    failed          INTEGER NOT NULL,
    last_output_dir TEXT NOT NULL DEFAULT ''
);

CREATE TABLE results (
    batch_id    TEXT NOT NULL REFERENCES batches(batch_id) ON DELETE CASCADE,
    idx         INTEGER NOT NULL,
    input_path  TEXT NOT NULL,
    status      TEXT NOT NULL,
    message     TEXT NOT NULL DEFAULT '',
    output_path TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (batch_id, idx)
);

CREATE INDEX idx_batches_started_at ON batches(started_at);
`

// ErrSchemaMismatch indicates the database was written by an incompatible
// version.
var ErrSchemaMismatch = errors.New("history schema version mismatch")

// Open initializes or connects to the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, services.Wrap(services.ErrIO, "history", "create database directory", filepath.Dir(path), err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, services.Wrap(services.ErrIO, "history", "open database", path, err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, services.Wrap(services.ErrIO, "history", "apply pragma", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database location.
func (s *Store) Path() string { return s.path }

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to reset)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

// RecordBatch persists a finished batch and its per-file results in a single
// transaction.
func (s *Store) RecordBatch(ctx context.Context, rec BatchRecord) error {
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		_, err = tx.ExecContext(ctx,
			`INSERT INTO batches (
                batch_id, operation, started_at, finished_at,
                total, succeeded, skipped, failed, last_output_dir
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.BatchID,
			string(rec.Operation),
			rec.StartedAt.UTC().Format(time.RFC3339Nano),
			rec.FinishedAt.UTC().Format(time.RFC3339Nano),
			rec.Summary.Total,
			rec.Summary.Succeeded,
			rec.Summary.Skipped,
			rec.Summary.Failed,
			rec.Summary.LastOutputDir,
		)
		if err != nil {
			return fmt.Errorf("insert batch: %w", err)
		}

		for _, res := range rec.Results {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO results (batch_id, idx, input_path, status, message, output_path)
                 VALUES (?, ?, ?, ?, ?, ?)`,
				rec.BatchID, res.Index, res.InputPath, string(res.Status), res.Message, res.OutputPath,
			)
			if err != nil {
				return fmt.Errorf("insert result %d: %w", res.Index, err)
			}
		}
		return tx.Commit()
	})
}

// ListRecent returns the most recent batches, newest first, without per-file
// results.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]BatchRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT batch_id, operation, started_at, finished_at,
                total, succeeded, skipped, failed, last_output_dir
         FROM batches ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()

	var records []BatchRecord
	for rows.Next() {
		var (
			rec        BatchRecord
			op         string
			startedAt  string
			finishedAt string
		)
		if err := rows.Scan(&rec.BatchID, &op, &startedAt, &finishedAt,
			&rec.Summary.Total, &rec.Summary.Succeeded, &rec.Summary.Skipped,
			&rec.Summary.Failed, &rec.Summary.LastOutputDir); err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		rec.Operation = report.Operation(op)
		if rec.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, fmt.Errorf("parse started_at: %w", err)
		}
		if rec.FinishedAt, err = time.Parse(time.RFC3339Nano, finishedAt); err != nil {
			return nil, fmt.Errorf("parse finished_at: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// BatchResults loads the per-file results of one batch in submission order.
func (s *Store) BatchResults(ctx context.Context, batchID string) ([]report.JobResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT idx, input_path, status, message, output_path
         FROM results WHERE batch_id = ? ORDER BY idx`, batchID)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	var results []report.JobResult
	for rows.Next() {
		var (
			res    report.JobResult
			status string
		)
		if err := rows.Scan(&res.Index, &res.InputPath, &status, &res.Message, &res.OutputPath); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		res.Status = report.Status(status)
		results = append(results, res)
	}
	return results, rows.Err()
}

// Prune deletes batches older than the cutoff, cascading to their results.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	var deleted int64
	err := retryOnBusy(ctx, func() error {
		res, err := s.db.ExecContext(ctx,
			"DELETE FROM batches WHERE started_at < ?",
			cutoff.UTC().Format(time.RFC3339Nano))
		if err != nil {
			return err
		}
		deleted, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("prune batches: %w", err)
	}
	return deleted, nil
}

// Package state is the local SQLite journal used by planctl.
package state

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/claude/liftsync/internal/models"
)

const defaultLimit = 50

// DB records sync runs and written log cells.
type DB struct {
	db *sql.DB
}

// Open opens (or creates) the journal database at dir/journal.db.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "journal.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}

	for _, stmt := range []string{
		`PRAGMA busy_timeout = 5000`,
		`CREATE TABLE IF NOT EXISTS sync_runs (
			id          TEXT PRIMARY KEY,
			kind        TEXT NOT NULL,
			source      TEXT NOT NULL DEFAULT '',
			title       TEXT NOT NULL DEFAULT '',
			status      TEXT NOT NULL,
			days        INTEGER NOT NULL DEFAULT 0,
			updates     INTEGER NOT NULL DEFAULT 0,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			error       TEXT NOT NULL DEFAULT '',
			created_at  TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS logged_exercises (
			id          TEXT PRIMARY KEY,
			sheet_name  TEXT NOT NULL,
			date_label  TEXT NOT NULL,
			exercise    TEXT NOT NULL,
			log_text    TEXT NOT NULL,
			cell_range  TEXT NOT NULL,
			created_at  TIMESTAMP NOT NULL
		)`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating state tables: %w", err)
		}
	}

	return &DB{db: db}, nil
}

// Close closes the journal database.
func (s *DB) Close() error {
	return s.db.Close()
}

// RecordRun inserts a sync run.
func (s *DB) RecordRun(ctx context.Context, run models.SyncRun) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sync_runs (id, kind, source, title, status, days, updates, duration_ms, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Kind, run.Source, run.Title, run.Status, run.Days, run.Updates,
		run.DurationMs, run.Error, run.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting sync run: %w", err)
	}
	return nil
}

// RecordLogs inserts written log cells in one transaction.
func (s *DB) RecordLogs(ctx context.Context, entries []models.JournalEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, e := range entries {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		if e.CreatedAt.IsZero() {
			e.CreatedAt = time.Now().UTC()
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO logged_exercises (id, sheet_name, date_label, exercise, log_text, cell_range, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			e.ID, e.SheetName, e.DateLabel, e.Exercise, e.LogText, e.CellRange, e.CreatedAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("inserting logged exercise: %w", err)
		}
	}
	return tx.Commit()
}

// ListRuns returns the most recent sync runs, newest first.
func (s *DB) ListRuns(ctx context.Context, limit int) ([]models.SyncRun, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, source, title, status, days, updates, duration_ms, error, created_at
		 FROM sync_runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying sync runs: %w", err)
	}
	defer rows.Close()

	result := []models.SyncRun{}
	for rows.Next() {
		var r models.SyncRun
		if err := rows.Scan(&r.ID, &r.Kind, &r.Source, &r.Title, &r.Status, &r.Days, &r.Updates,
			&r.DurationMs, &r.Error, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning sync run: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// ListLogs returns the most recently written log cells, newest first.
func (s *DB) ListLogs(ctx context.Context, limit int) ([]models.JournalEntry, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, sheet_name, date_label, exercise, log_text, cell_range, created_at
		 FROM logged_exercises ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying logged exercises: %w", err)
	}
	defer rows.Close()

	result := []models.JournalEntry{}
	for rows.Next() {
		var e models.JournalEntry
		if err := rows.Scan(&e.ID, &e.SheetName, &e.DateLabel, &e.Exercise, &e.LogText, &e.CellRange, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning logged exercise: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/claude/liftsync/internal/models"
)

// DefaultLimit caps history queries when no limit is given.
const DefaultLimit = 50

// ClampLimit maps a non-positive limit to DefaultLimit.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return limit
}

// rowID parses an existing ID or mints a new one.
func rowID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.New(), nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("parsing id %q: %w", s, err)
	}
	return id, nil
}

// RecordRun inserts a sync run, assigning an ID and timestamp when missing.
func (db *DB) RecordRun(ctx context.Context, run models.SyncRun) error {
	id, err := rowID(run.ID)
	if err != nil {
		return err
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	_, err = db.pool.Exec(ctx,
		`INSERT INTO sync_runs (id, kind, source, title, status, days, updates, duration_ms, error, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		id, run.Kind, run.Source, run.Title, run.Status, run.Days, run.Updates,
		run.DurationMs, run.Error, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting sync run: %w", err)
	}
	return nil
}

// RecordLogs inserts written log cells in one batch.
func (db *DB) RecordLogs(ctx context.Context, entries []models.JournalEntry) error {
	if len(entries) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, e := range entries {
		id, err := rowID(e.ID)
		if err != nil {
			return err
		}
		if e.CreatedAt.IsZero() {
			e.CreatedAt = time.Now().UTC()
		}
		batch.Queue(
			`INSERT INTO logged_exercises (id, sheet_name, date_label, exercise, log_text, cell_range, created_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			id, e.SheetName, e.DateLabel, e.Exercise, e.LogText, e.CellRange, e.CreatedAt,
		)
	}

	br := db.pool.SendBatch(ctx, batch)
	defer br.Close()
	for range entries {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("inserting logged exercise: %w", err)
		}
	}
	return nil
}

// ListRuns returns the most recent sync runs, newest first.
func (db *DB) ListRuns(ctx context.Context, limit int) ([]models.SyncRun, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id::text, kind, source, title, status, days, updates, duration_ms, error, created_at
		 FROM sync_runs
		 ORDER BY created_at DESC
		 LIMIT $1`,
		ClampLimit(limit))
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
func (db *DB) ListLogs(ctx context.Context, limit int) ([]models.JournalEntry, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id::text, sheet_name, date_label, exercise, log_text, cell_range, created_at
		 FROM logged_exercises
		 ORDER BY created_at DESC
		 LIMIT $1`,
		ClampLimit(limit))
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

package planner

import (
	"context"
	"fmt"

	"github.com/claude/liftsync/internal/ingest/sheet"
	"github.com/claude/liftsync/internal/models"
)

// LogResult describes one write-back.
type LogResult struct {
	Sheet   string              `json:"sheet"`
	Updates []models.CellUpdate `json:"updates"`
}

// SaveLogs writes logged results into column H of the current weekly sheet.
// dateLabel is matched literally against the first column; logs must follow
// the row order under that date. Logs that match nothing are skipped.
func (p *Planner) SaveLogs(ctx context.Context, dateLabel string, logs []models.LogEntry) (LogResult, error) {
	start := p.now()

	title, rows, err := p.currentSheetRows(ctx, start)
	if err != nil {
		p.recordRun(ctx, KindLog, models.SourceRemoteSheet, "", 0, 0, start, err)
		return LogResult{}, err
	}

	result := LogResult{Sheet: title, Updates: sheet.MatchLogs(rows, dateLabel, title, logs)}
	if result.Updates == nil {
		result.Updates = []models.CellUpdate{}
	}

	var entries []models.JournalEntry
	for _, m := range sheet.MatchRows(rows, dateLabel, logs) {
		if m.Entry.Text == "" {
			continue
		}
		entries = append(entries, models.JournalEntry{
			SheetName: title,
			DateLabel: dateLabel,
			Exercise:  m.Entry.Exercise,
			LogText:   m.Entry.Text,
			CellRange: sheet.LogCell(title, m.RowIndex),
			CreatedAt: start.UTC(),
		})
	}

	if len(result.Updates) < len(logs) {
		p.log.Warn("some logs did not match a row", "sheet", title, "date", dateLabel,
			"logs", len(logs), "updates", len(result.Updates))
	}
	if len(result.Updates) == 0 {
		p.recordRun(ctx, KindLog, models.SourceRemoteSheet, title, 0, 0, start, nil)
		return result, nil
	}

	if err := p.remote.BatchUpdateValues(ctx, result.Updates); err != nil {
		err = fmt.Errorf("writing logs to %q: %w", title, err)
		p.recordRun(ctx, KindLog, models.SourceRemoteSheet, title, 0, 0, start, err)
		return LogResult{}, err
	}
	p.log.Info("wrote logs", "sheet", title, "date", dateLabel, "updates", len(result.Updates))

	if p.journal != nil {
		if err := p.journal.RecordLogs(ctx, entries); err != nil {
			p.log.Warn("recording logs", "error", err)
		}
	}
	p.recordRun(ctx, KindLog, models.SourceRemoteSheet, title, 0, len(result.Updates), start, nil)
	return result, nil
}

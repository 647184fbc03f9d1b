package planner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/claude/liftsync/internal/ingest/markdown"
	"github.com/claude/liftsync/internal/ingest/sheet"
	"github.com/claude/liftsync/internal/models"
	"github.com/claude/liftsync/internal/plans"
	"github.com/claude/liftsync/internal/sheets"
)

// Generator produces the finished markdown body of a new plan.
type Generator interface {
	Generate(ctx context.Context, title string) (string, error)
}

// Text is a Generator that returns a fixed body.
type Text string

// Generate returns t.
func (t Text) Generate(context.Context, string) (string, error) { return string(t), nil }

// PublishResult describes a published plan.
type PublishResult struct {
	Title      string `json:"title"`
	Path       string `json:"path"`
	Days       int    `json:"days"`
	Exercises  int    `json:"exercises"`
	Validation string `json:"validation"`
}

// Validate reports how much structure was recovered from a plan.
func Validate(days []models.DayWorkout) string {
	exercises := 0
	for _, d := range days {
		exercises += len(d.Exercises)
	}
	msg := fmt.Sprintf("Parsed %d days with %d exercises.", len(days), exercises)
	if len(days) == 0 {
		msg += " Warning: no day headers were found."
	}
	return msg
}

// Publish generates a plan, saves it to the local cache and pushes its rows
// to the sheet named title, replacing whatever that sheet held.
func (p *Planner) Publish(ctx context.Context, title string, gen Generator) (PublishResult, error) {
	start := p.now()

	body, err := gen.Generate(ctx, title)
	if err != nil {
		err = fmt.Errorf("generating plan: %w", err)
		p.recordRun(ctx, KindPublish, "", title, 0, 0, start, err)
		return PublishResult{}, err
	}

	doc := markdown.Parse([]byte(body))
	days := sheet.ParseDays(doc.Rows)
	result := PublishResult{Title: title, Days: len(days), Validation: Validate(days)}
	for _, d := range days {
		result.Exercises += len(d.Exercises)
	}

	path, err := p.local.Save(title, []byte(body), plans.Summary{
		SheetName:   title,
		Validation:  result.Validation,
		GeneratedAt: start,
	})
	if err != nil {
		p.recordRun(ctx, KindPublish, models.SourceLocalCache, title, len(days), 0, start, err)
		return PublishResult{}, err
	}
	result.Path = path

	rows := sheetRows(doc.Rows)
	if err := p.pushSheet(ctx, title, rows); err != nil {
		err = fmt.Errorf("publishing sheet %q: %w", title, err)
		p.recordRun(ctx, KindPublish, models.SourceRemoteSheet, title, len(days), 0, start, err)
		return result, err
	}
	p.log.Info("published plan", "sheet", title, "days", len(days), "rows", len(rows))

	p.recordRun(ctx, KindPublish, models.SourceRemoteSheet, title, len(days), len(rows), start, nil)
	return result, nil
}

func (p *Planner) pushSheet(ctx context.Context, title string, rows [][]string) error {
	id, err := p.remote.SheetID(ctx, title)
	switch {
	case errors.Is(err, sheets.ErrSheetNotFound):
		if _, err := p.remote.AddSheet(ctx, title); err != nil {
			return err
		}
	case err != nil:
		return err
	case p.opts.ArchiveOnPublish:
		archived := archiveTitle(title, p.now())
		if err := p.remote.RenameSheet(ctx, id, archived); err != nil {
			return err
		}
		p.log.Info("archived sheet", "from", title, "to", archived)
		if _, err := p.remote.AddSheet(ctx, title); err != nil {
			return err
		}
	default:
		if err := p.remote.ClearValues(ctx, sheet.A1(title, planRange)); err != nil {
			return err
		}
	}

	if len(rows) == 0 {
		return nil
	}
	return p.remote.UpdateValues(ctx, sheet.A1(title, "A1"), rows)
}

// archiveTitle renames a replaced sheet so its date no longer parses as a
// weekly plan candidate.
func archiveTitle(title string, now time.Time) string {
	return fmt.Sprintf("%s (archived %s)", strings.ReplaceAll(title, "/", "-"), now.UTC().Format("2006-01-02 150405"))
}

// sheetRows normalizes parsed markdown rows to the 8 plan columns.
func sheetRows(raw [][]string) [][]string {
	out := make([][]string, 0, len(raw))
	for _, r := range raw {
		n := sheet.Normalize(r)
		row := make([]string, len(n))
		for i, c := range n {
			row[i] = strings.TrimSpace(c)
		}
		out = append(out, row)
	}
	return out
}

// Package planner loads the current weekly plan from the shared spreadsheet
// or the local plan cache, writes logged results back, and publishes new plans.
package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/claude/liftsync/internal/ingest/sheet"
	"github.com/claude/liftsync/internal/models"
	"github.com/claude/liftsync/internal/plans"
	"github.com/claude/liftsync/internal/weekly"
)

var (
	// ErrNoPlanData is returned when neither the sheet nor the local cache
	// produced a plan with exercises.
	ErrNoPlanData = errors.New("no plan data")
	// ErrNoWeeklySheet is returned when no sheet title carries a plan date.
	ErrNoWeeklySheet = errors.New("no weekly plan sheet")
)

// planRange is the A1 cell range holding the 8 plan columns.
const planRange = "A:H"

// Sync run kinds and statuses.
const (
	KindLoad         = "load"
	KindSupplemental = "supplemental"
	KindLog          = "log"
	KindPublish      = "publish"

	StatusOK     = "ok"
	StatusFailed = "failed"
)

// RemoteSheets is the subset of the spreadsheet API the planner uses.
type RemoteSheets interface {
	SheetTitles(ctx context.Context) ([]string, error)
	SheetID(ctx context.Context, title string) (int64, error)
	Values(ctx context.Context, a1 string) ([][]string, error)
	UpdateValues(ctx context.Context, a1 string, values [][]string) error
	BatchUpdateValues(ctx context.Context, updates []models.CellUpdate) error
	ClearValues(ctx context.Context, a1 string) error
	AddSheet(ctx context.Context, title string) (int64, error)
	RenameSheet(ctx context.Context, sheetID int64, title string) error
}

// LocalPlans is the local plan cache.
type LocalPlans interface {
	Load(ref time.Time) (models.PlanSnapshot, error)
	LoadSupplemental(ref time.Time) (models.SupplementalBucket, error)
	Save(title string, body []byte, sum plans.Summary) (string, error)
}

// Journal records sync runs and written log cells.
type Journal interface {
	RecordRun(ctx context.Context, run models.SyncRun) error
	RecordLogs(ctx context.Context, entries []models.JournalEntry) error
	ListRuns(ctx context.Context, limit int) ([]models.SyncRun, error)
	ListLogs(ctx context.Context, limit int) ([]models.JournalEntry, error)
}

// Options tune planner behavior.
type Options struct {
	// ArchiveOnPublish renames an existing sheet instead of clearing it when
	// a plan with the same title is published.
	ArchiveOnPublish bool
}

// Planner coordinates the sheet, the local cache and the journal.
type Planner struct {
	remote  RemoteSheets
	local   LocalPlans
	journal Journal
	opts    Options
	log     *slog.Logger
	now     func() time.Time
}

// New creates a Planner. journal may be nil.
func New(remote RemoteSheets, local LocalPlans, journal Journal, opts Options, logger *slog.Logger) *Planner {
	return &Planner{
		remote:  remote,
		local:   local,
		journal: journal,
		opts:    opts,
		log:     logger,
		now:     time.Now,
	}
}

// Load returns the current plan. Without forceRemote a local plan with
// exercises wins; otherwise the newest weekly sheet is fetched and parsed.
// A forced remote load surfaces remote errors as-is, while a normal load
// falls back to the local cache and finally fails with ErrNoPlanData.
func (p *Planner) Load(ctx context.Context, forceRemote bool) (models.PlanSnapshot, error) {
	start := p.now()

	if !forceRemote {
		if snap, ok := p.loadLocal(start); ok {
			p.recordRun(ctx, KindLoad, snap.Source, snap.Title, len(snap.Days), 0, start, nil)
			return snap, nil
		}
	}

	snap, err := p.loadRemote(ctx, forceRemote, start)
	if err == nil {
		p.recordRun(ctx, KindLoad, snap.Source, snap.Title, len(snap.Days), 0, start, nil)
		return snap, nil
	}
	if forceRemote {
		p.recordRun(ctx, KindLoad, models.SourceRemoteSheet, "", 0, 0, start, err)
		return models.PlanSnapshot{}, err
	}
	p.log.Warn("remote plan load failed, using local cache", "error", err)

	if snap, ok := p.loadLocal(start); ok {
		p.recordRun(ctx, KindLoad, snap.Source, snap.Title, len(snap.Days), 0, start, nil)
		return snap, nil
	}

	p.recordRun(ctx, KindLoad, "", "", 0, 0, start, ErrNoPlanData)
	return models.PlanSnapshot{}, ErrNoPlanData
}

func (p *Planner) loadLocal(ref time.Time) (models.PlanSnapshot, bool) {
	snap, err := p.local.Load(ref)
	if err != nil {
		p.log.Warn("local plan unavailable", "error", err)
		return models.PlanSnapshot{}, false
	}
	if !snap.HasExercises() {
		p.log.Warn("local plan has no exercises", "title", snap.Title)
		return models.PlanSnapshot{}, false
	}
	p.log.Info("loaded local plan", "title", snap.Title, "days", len(snap.Days))
	return snap, true
}

func (p *Planner) loadRemote(ctx context.Context, forceRemote bool, ref time.Time) (models.PlanSnapshot, error) {
	title, rows, err := p.currentSheetRows(ctx, ref)
	if err != nil {
		return models.PlanSnapshot{}, err
	}

	days := sheet.ParseDays(rows)
	if len(days) == 0 {
		return models.PlanSnapshot{}, fmt.Errorf("sheet %q: %w", title, ErrNoPlanData)
	}

	verb := "Loaded"
	if forceRemote {
		verb = "Refreshed"
	}
	p.log.Info("loaded remote plan", "sheet", title, "days", len(days))
	return models.PlanSnapshot{
		Title:   title,
		Source:  models.SourceRemoteSheet,
		Days:    days,
		Summary: fmt.Sprintf("%s %d days from sheet %q.", verb, len(days), title),
	}, nil
}

// CurrentSheet returns the title of the weekly sheet closest to ref.
func (p *Planner) CurrentSheet(ctx context.Context, ref time.Time) (string, error) {
	titles, err := p.remote.SheetTitles(ctx)
	if err != nil {
		return "", fmt.Errorf("listing sheets: %w", err)
	}
	c, ok := weekly.PreferredCandidate(weekly.Candidates(titles), ref, weekly.WindowDays, weekly.RemoteFallbackEnabled)
	if !ok {
		return "", ErrNoWeeklySheet
	}
	return c.Title, nil
}

func (p *Planner) currentSheetRows(ctx context.Context, ref time.Time) (string, [][]string, error) {
	title, err := p.CurrentSheet(ctx, ref)
	if err != nil {
		return "", nil, err
	}
	rows, err := p.remote.Values(ctx, sheet.A1(title, planRange))
	if err != nil {
		return "", nil, fmt.Errorf("reading sheet %q: %w", title, err)
	}
	return title, rows, nil
}

// LoadSupplemental returns the Tuesday, Thursday and Saturday supplemental
// work from the current weekly sheet, falling back to the local cache.
func (p *Planner) LoadSupplemental(ctx context.Context) (models.SupplementalBucket, error) {
	start := p.now()

	title, rows, err := p.currentSheetRows(ctx, start)
	if err == nil {
		bucket := sheet.ParseSupplemental(rows)
		p.recordRun(ctx, KindSupplemental, models.SourceRemoteSheet, title, activeDays(bucket), 0, start, nil)
		return bucket, nil
	}
	p.log.Warn("remote supplemental load failed, using local cache", "error", err)

	bucket, lerr := p.local.LoadSupplemental(start)
	if lerr != nil {
		p.log.Warn("local supplemental unavailable", "error", lerr)
		p.recordRun(ctx, KindSupplemental, "", "", 0, 0, start, ErrNoPlanData)
		return nil, ErrNoPlanData
	}
	p.recordRun(ctx, KindSupplemental, models.SourceLocalCache, "", activeDays(bucket), 0, start, nil)
	return bucket, nil
}

// activeDays counts supplemental days that hold at least one exercise.
func activeDays(bucket models.SupplementalBucket) int {
	n := 0
	for _, ex := range bucket {
		if len(ex) > 0 {
			n++
		}
	}
	return n
}

// History returns the most recent sync runs, newest first.
func (p *Planner) History(ctx context.Context, limit int) ([]models.SyncRun, error) {
	if p.journal == nil {
		return []models.SyncRun{}, nil
	}
	return p.journal.ListRuns(ctx, limit)
}

// LoggedExercises returns the most recent journaled write-backs, newest first.
func (p *Planner) LoggedExercises(ctx context.Context, limit int) ([]models.JournalEntry, error) {
	if p.journal == nil {
		return []models.JournalEntry{}, nil
	}
	return p.journal.ListLogs(ctx, limit)
}

func (p *Planner) recordRun(ctx context.Context, kind string, source models.Source, title string, days, updates int, start time.Time, runErr error) {
	if p.journal == nil {
		return
	}
	run := models.SyncRun{
		Kind:       kind,
		Source:     string(source),
		Title:      title,
		Status:     StatusOK,
		Days:       days,
		Updates:    updates,
		DurationMs: p.now().Sub(start).Milliseconds(),
		CreatedAt:  p.now().UTC(),
	}
	if runErr != nil {
		run.Status = StatusFailed
		run.Error = runErr.Error()
	}
	if err := p.journal.RecordRun(ctx, run); err != nil {
		p.log.Warn("recording sync run", "kind", kind, "error", err)
	}
}

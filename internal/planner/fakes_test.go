package planner

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/claude/liftsync/internal/models"
	"github.com/claude/liftsync/internal/plans"
	"github.com/claude/liftsync/internal/sheets"
)

type fakeRemote struct {
	titles    []string
	ids       map[string]int64
	values    map[string][][]string
	titlesErr error
	writeErr  error

	calls   []string
	batches [][]models.CellUpdate
	written map[string][][]string
}

func (f *fakeRemote) SheetTitles(context.Context) ([]string, error) {
	f.calls = append(f.calls, "titles")
	return f.titles, f.titlesErr
}

func (f *fakeRemote) SheetID(_ context.Context, title string) (int64, error) {
	f.calls = append(f.calls, "id "+title)
	id, ok := f.ids[title]
	if !ok {
		return 0, sheets.ErrSheetNotFound
	}
	return id, nil
}

func (f *fakeRemote) Values(_ context.Context, a1 string) ([][]string, error) {
	f.calls = append(f.calls, "values "+a1)
	return f.values[a1], nil
}

func (f *fakeRemote) UpdateValues(_ context.Context, a1 string, values [][]string) error {
	f.calls = append(f.calls, "update "+a1)
	if f.written == nil {
		f.written = map[string][][]string{}
	}
	f.written[a1] = values
	return f.writeErr
}

func (f *fakeRemote) BatchUpdateValues(_ context.Context, updates []models.CellUpdate) error {
	f.calls = append(f.calls, "batch")
	f.batches = append(f.batches, updates)
	return f.writeErr
}

func (f *fakeRemote) ClearValues(_ context.Context, a1 string) error {
	f.calls = append(f.calls, "clear "+a1)
	return nil
}

func (f *fakeRemote) AddSheet(_ context.Context, title string) (int64, error) {
	f.calls = append(f.calls, "add "+title)
	return 99, nil
}

func (f *fakeRemote) RenameSheet(_ context.Context, _ int64, title string) error {
	f.calls = append(f.calls, "rename "+title)
	return nil
}

type fakeLocal struct {
	snap      models.PlanSnapshot
	err       error
	bucket    models.SupplementalBucket
	bucketErr error

	loads int
	saved map[string]string
}

func (f *fakeLocal) Load(time.Time) (models.PlanSnapshot, error) {
	f.loads++
	return f.snap, f.err
}

func (f *fakeLocal) LoadSupplemental(time.Time) (models.SupplementalBucket, error) {
	return f.bucket, f.bucketErr
}

func (f *fakeLocal) Save(title string, body []byte, _ plans.Summary) (string, error) {
	if f.saved == nil {
		f.saved = map[string]string{}
	}
	f.saved[title] = string(body)
	return "/plans/" + plans.FileName(title), nil
}

type fakeJournal struct {
	runs    []models.SyncRun
	entries []models.JournalEntry
}

func (j *fakeJournal) RecordRun(_ context.Context, run models.SyncRun) error {
	j.runs = append(j.runs, run)
	return nil
}

func (j *fakeJournal) RecordLogs(_ context.Context, entries []models.JournalEntry) error {
	j.entries = append(j.entries, entries...)
	return nil
}

func (j *fakeJournal) ListRuns(_ context.Context, limit int) ([]models.SyncRun, error) {
	if limit > len(j.runs) {
		limit = len(j.runs)
	}
	return j.runs[:limit], nil
}

func (j *fakeJournal) ListLogs(_ context.Context, limit int) ([]models.JournalEntry, error) {
	if limit > len(j.entries) {
		limit = len(j.entries)
	}
	return j.entries[:limit], nil
}

func nopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var refDate = time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)

func newTestPlanner(remote *fakeRemote, local *fakeLocal, journal *fakeJournal, opts Options) *Planner {
	var j Journal
	if journal != nil {
		j = journal
	}
	p := New(remote, local, j, opts, nopLogger())
	p.now = func() time.Time { return refDate }
	return p
}

const currentSheet = "Weekly Plan (3/2/2026)"

func sheetFixture() *fakeRemote {
	return &fakeRemote{
		titles: []string{"Library", "Weekly Plan (2/23/2026)", currentSheet},
		ids:    map[string]int64{currentSheet: 7},
		values: map[string][][]string{
			"'" + currentSheet + "'!A:H": {
				{"Weekly Plan"},
				{"Monday 3/2/2026"},
				{"Block", "Exercise", "Sets", "Reps"},
				{"A", "Bench Press", "4", "6"},
				{"A", "Incline DB Press", "3", "8"},
				{},
				{"Tuesday 3/3/2026"},
				{"Block", "Exercise"},
				{"A", "Row", "3", "10"},
			},
		},
	}
}

func localFixture() *fakeLocal {
	return &fakeLocal{
		snap: models.PlanSnapshot{
			Title:  "cached",
			Source: models.SourceLocalCache,
			Days: []models.DayWorkout{
				{DayLabel: "Monday", DayName: "Monday", Exercises: []models.Exercise{{Name: "Squat"}}},
			},
		},
	}
}

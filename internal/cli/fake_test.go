package cli

import (
	"context"

	"github.com/claude/liftsync/internal/models"
	"github.com/claude/liftsync/internal/planner"
)

// fakeService records calls and returns canned results.
type fakeService struct {
	snapshot     models.PlanSnapshot
	supplemental models.SupplementalBucket
	logResult    planner.LogResult
	publish      planner.PublishResult
	runs         []models.SyncRun
	logged       []models.JournalEntry
	err          error

	force     bool
	dateLabel string
	logs      []models.LogEntry
	title     string
	body      string
	limit     int
}

func (f *fakeService) Load(_ context.Context, forceRemote bool) (models.PlanSnapshot, error) {
	f.force = forceRemote
	return f.snapshot, f.err
}

func (f *fakeService) LoadSupplemental(context.Context) (models.SupplementalBucket, error) {
	return f.supplemental, f.err
}

func (f *fakeService) SaveLogs(_ context.Context, dateLabel string, logs []models.LogEntry) (planner.LogResult, error) {
	f.dateLabel = dateLabel
	f.logs = logs
	return f.logResult, f.err
}

func (f *fakeService) Publish(ctx context.Context, title string, gen planner.Generator) (planner.PublishResult, error) {
	f.title = title
	body, err := gen.Generate(ctx, title)
	if err != nil {
		return planner.PublishResult{}, err
	}
	f.body = body
	return f.publish, f.err
}

func (f *fakeService) History(_ context.Context, limit int) ([]models.SyncRun, error) {
	f.limit = limit
	return f.runs, f.err
}

func (f *fakeService) LoggedExercises(_ context.Context, limit int) ([]models.JournalEntry, error) {
	f.limit = limit
	return f.logged, f.err
}

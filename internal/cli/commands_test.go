package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claude/liftsync/internal/models"
	"github.com/claude/liftsync/internal/planner"
	"github.com/claude/liftsync/internal/token"
)

func TestParseLogArgs(t *testing.T) {
	entries, err := parseLogArgs([]string{"Bench=185x5", " Incline Press = 3x8 ", "Row=", "Curl=a=b"})
	require.NoError(t, err)
	assert.Equal(t, []models.LogEntry{
		{Exercise: "Bench", Text: "185x5"},
		{Exercise: "Incline Press", Text: "3x8"},
		{Exercise: "Row", Text: ""},
		{Exercise: "Curl", Text: "a=b"},
	}, entries)
}

func TestParseLogArgsRejectsMalformed(t *testing.T) {
	for _, arg := range []string{"Bench", "=185x5", "  =x"} {
		t.Run(arg, func(t *testing.T) {
			_, err := parseLogArgs([]string{arg})
			require.Error(t, err)
			assert.True(t, errors.Is(err, errBadLogArg))
		})
	}
}

func TestRunLog(t *testing.T) {
	svc := &fakeService{logResult: planner.LogResult{
		Sheet: "Weekly Plan (3/2/2026)",
		Updates: []models.CellUpdate{
			{Range: "'Weekly Plan (3/2/2026)'!H6", Values: [][]string{{"185x5"}}},
		},
	}}
	var out bytes.Buffer

	entries := []models.LogEntry{{Exercise: "Bench", Text: "185x5"}}
	require.NoError(t, runLog(context.Background(), svc, "3/2/2026", entries, &out))

	assert.Equal(t, "3/2/2026", svc.dateLabel)
	assert.Equal(t, entries, svc.logs)
	assert.Contains(t, out.String(), "'Weekly Plan (3/2/2026)'!H6 185x5")
	assert.Contains(t, out.String(), "Updated 1 cells")
}

func TestRunLogNoMatches(t *testing.T) {
	svc := &fakeService{logResult: planner.LogResult{Sheet: "Weekly Plan (3/2/2026)"}}
	var out bytes.Buffer

	require.NoError(t, runLog(context.Background(), svc, "3/9/2026", nil, &out))
	assert.Contains(t, out.String(), "No matching exercises")
}

func TestRunShowRaw(t *testing.T) {
	svc := &fakeService{snapshot: models.PlanSnapshot{
		Title:   "Weekly Plan (3/2/2026)",
		Source:  models.SourceLocalCache,
		Summary: "Loaded 1 days from local plan.",
		Days: []models.DayWorkout{{
			DayLabel:  "Monday 3/2/2026",
			DayName:   "Monday",
			Exercises: []models.Exercise{{Block: "A", Name: "Back Squat", Sets: "5", Reps: "5"}},
		}},
	}}
	var out bytes.Buffer

	require.NoError(t, runShow(context.Background(), svc, &ShowOptions{Force: true, Raw: true}, &out))

	assert.True(t, svc.force)
	got := out.String()
	assert.True(t, strings.HasPrefix(got, "# Weekly Plan (3/2/2026)\n"))
	assert.Contains(t, got, "## Monday 3/2/2026")
	assert.Contains(t, got, "| A | Back Squat | 5 | 5 |")
	assert.NotContains(t, got, "Loaded 1 days")
}

func TestRunShowError(t *testing.T) {
	svc := &fakeService{err: planner.ErrNoPlanData}
	err := runShow(context.Background(), svc, &ShowOptions{}, new(bytes.Buffer))
	assert.ErrorIs(t, err, planner.ErrNoPlanData)
}

func TestSupplementalDaysOrder(t *testing.T) {
	bucket := models.SupplementalBucket{
		"Saturday": {{Name: "Carry"}},
		"Tuesday":  {{Name: "Plank"}},
		"Thursday": nil,
	}

	days := supplementalDays(bucket)
	require.Len(t, days, 3)
	assert.Equal(t, "Tuesday", days[0].DayName)
	assert.Equal(t, "Thursday", days[1].DayName)
	assert.Equal(t, "Saturday", days[2].DayName)
	assert.Equal(t, "Carry", days[2].Exercises[0].Name)
}

func TestRunHistory(t *testing.T) {
	svc := &fakeService{runs: []models.SyncRun{
		{Kind: planner.KindLog, Status: planner.StatusOK, Source: "remote_sheet", Title: "Weekly Plan (3/2/2026)", Updates: 2, CreatedAt: time.Now()},
		{Kind: planner.KindLoad, Status: planner.StatusFailed, Source: "remote_sheet", Error: "no plan data", CreatedAt: time.Now()},
	}}
	var out bytes.Buffer

	require.NoError(t, runHistory(context.Background(), svc, 5, &out))
	assert.Equal(t, 5, svc.limit)
	got := out.String()
	assert.Contains(t, got, "KIND")
	assert.Contains(t, got, "Weekly Plan (3/2/2026)")
	assert.Contains(t, got, "failed")
	assert.Contains(t, got, "no plan data")
}

func TestRunHistoryEmpty(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runHistory(context.Background(), &fakeService{}, 10, &out))
	assert.Contains(t, out.String(), "No sync runs recorded.")
}

func TestRunLoggedHistory(t *testing.T) {
	svc := &fakeService{logged: []models.JournalEntry{{
		DateLabel: "3/2/2026", Exercise: "Bench Press", LogText: "185x5",
		CellRange: "'Weekly Plan (3/2/2026)'!H6", CreatedAt: time.Now(),
	}}}
	var out bytes.Buffer

	require.NoError(t, runLoggedHistory(context.Background(), svc, 3, &out))
	assert.Equal(t, 3, svc.limit)
	assert.Contains(t, out.String(), "Bench Press")
	assert.Contains(t, out.String(), "'Weekly Plan (3/2/2026)'!H6")
}

func TestReadPlanFile(t *testing.T) {
	body, err := readPlanFile("-", strings.NewReader("# Plan\n"))
	require.NoError(t, err)
	assert.Equal(t, "# Plan\n", body)

	path := filepath.Join(t.TempDir(), "plan.md")
	require.NoError(t, os.WriteFile(path, []byte("# From file\n"), 0o644))
	body, err = readPlanFile(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "# From file\n", body)

	_, err = readPlanFile(filepath.Join(t.TempDir(), "missing.md"), nil)
	assert.Error(t, err)
}

func TestRunPublish(t *testing.T) {
	svc := &fakeService{publish: planner.PublishResult{
		Title:      "Weekly Plan (3/9/2026)",
		Path:       "plans/workout_plan_weekly_plan_3_9_2026.md",
		Validation: "Parsed 5 days with 30 exercises.",
	}}
	var out bytes.Buffer

	require.NoError(t, runPublish(context.Background(), svc, "Weekly Plan (3/9/2026)", "# body", &out))
	assert.Equal(t, "Weekly Plan (3/9/2026)", svc.title)
	assert.Equal(t, "# body", svc.body)
	assert.Contains(t, out.String(), "Parsed 5 days with 30 exercises.")
	assert.Contains(t, out.String(), "workout_plan_weekly_plan_3_9_2026.md")
}

func TestRunTokenUsesCachedToken(t *testing.T) {
	now := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)
	path := filepath.Join(t.TempDir(), "token.json")
	data := `{"access_token":"ya29.cached-token","expiry":"2026-03-03T10:00:00Z"}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	m := token.NewManager(nil, newLogger(new(discard), false))
	var out bytes.Buffer
	require.NoError(t, runToken(context.Background(), m, path, time.Minute, now, false, &out))

	got := out.String()
	assert.Contains(t, got, "ya29.c***")
	assert.NotContains(t, got, "cached-token")
	assert.Contains(t, got, "Expires 2026-03-03T10:00:00Z (in 1h0m0s).")
}

func TestRunTokenShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"token":"legacy-token"}`), 0o600))

	m := token.NewManager(nil, newLogger(new(discard), false))
	var out bytes.Buffer
	require.NoError(t, runToken(context.Background(), m, path, time.Minute, time.Now(), true, &out))
	assert.Equal(t, "legacy-token\n", out.String())
}

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "***", maskToken("short"))
	assert.Equal(t, "abcdef***", maskToken("abcdefghij"))
}

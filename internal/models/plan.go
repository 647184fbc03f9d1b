package models

import "time"

// ColumnCount is the fixed width of a weekly plan sheet row.
const ColumnCount = 8

// Column indexes within a Row.
const (
	ColBlock = iota
	ColExercise
	ColSets
	ColReps
	ColLoad
	ColRest
	ColNotes
	ColLog
)

// Row is a normalized sheet row: block, exercise, sets, reps, load, rest, notes, log.
type Row [ColumnCount]string

// Header is the canonical column header row.
var Header = Row{"Block", "Exercise", "Sets", "Reps", "Load", "Rest", "Notes", "Log"}

// Exercise is a single planned exercise. SourceRow is the 1-based sheet row
// and is only set by the main day parser.
type Exercise struct {
	SourceRow int    `json:"source_row,omitempty"`
	Block     string `json:"block"`
	Name      string `json:"name"`
	Sets      string `json:"sets"`
	Reps      string `json:"reps"`
	Load      string `json:"load"`
	Rest      string `json:"rest"`
	Notes     string `json:"notes"`
	Log       string `json:"log"`
}

// ExerciseFromRow maps a normalized row onto an Exercise.
func ExerciseFromRow(r Row, sourceRow int) Exercise {
	return Exercise{
		SourceRow: sourceRow,
		Block:     r[ColBlock],
		Name:      r[ColExercise],
		Sets:      r[ColSets],
		Reps:      r[ColReps],
		Load:      r[ColLoad],
		Rest:      r[ColRest],
		Notes:     r[ColNotes],
		Log:       r[ColLog],
	}
}

// Row returns the exercise in sheet column order.
func (e Exercise) Row() Row {
	return Row{e.Block, e.Name, e.Sets, e.Reps, e.Load, e.Rest, e.Notes, e.Log}
}

// DayWorkout is one day block of the weekly plan.
type DayWorkout struct {
	DayLabel  string     `json:"day_label"`
	DayName   string     `json:"day_name"`
	Exercises []Exercise `json:"exercises"`
}

// SupplementalBucket maps Tuesday, Thursday and Saturday to their
// supplemental exercises. All three keys are always present.
type SupplementalBucket map[string][]Exercise

// Source identifies where a snapshot was loaded from.
type Source string

const (
	SourceRemoteSheet Source = "remote_sheet"
	SourceLocalCache  Source = "local_cache"
)

// PlanSnapshot is the result of one plan load. A new load produces a new snapshot.
type PlanSnapshot struct {
	Title   string       `json:"title"`
	Source  Source       `json:"source"`
	Days    []DayWorkout `json:"days"`
	Summary string       `json:"summary"`
}

// HasExercises reports whether at least one day holds an exercise.
func (p PlanSnapshot) HasExercises() bool {
	for _, d := range p.Days {
		if len(d.Exercises) > 0 {
			return true
		}
	}
	return false
}

// LogEntry is a logged result for one exercise, in the order it should be applied.
type LogEntry struct {
	Exercise string `json:"exercise"`
	Text     string `json:"log"`
}

// CellUpdate is a single range write for the values batch update API.
type CellUpdate struct {
	Range  string     `json:"range"`
	Values [][]string `json:"values"`
}

// JournalEntry records a logged result that was written back to a sheet.
type JournalEntry struct {
	ID        string    `json:"id"`
	SheetName string    `json:"sheet_name"`
	DateLabel string    `json:"date_label"`
	Exercise  string    `json:"exercise"`
	LogText   string    `json:"log_text"`
	CellRange string    `json:"cell_range"`
	CreatedAt time.Time `json:"created_at"`
}

// SyncRun records the outcome of one load, write-back or publish operation.
type SyncRun struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	Source     string    `json:"source"`
	Title      string    `json:"title"`
	Status     string    `json:"status"`
	Days       int       `json:"days"`
	Updates    int       `json:"updates"`
	DurationMs int64     `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

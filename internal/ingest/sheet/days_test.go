package sheet

import (
	"testing"

	"github.com/claude/liftsync/internal/models"
	"github.com/google/go-cmp/cmp"
)

// TestParseDaysSingleExercise covers the basic day header, column header and
// exercise sequence, including the 1-based source row.
func TestParseDaysSingleExercise(t *testing.T) {
	rows := [][]string{
		{"Monday", "", "", "", "", "", "", ""},
		{"Block", "Exercise", "Sets", "Reps", "Load", "Rest", "Notes", "Log"},
		{"A", "Squat", "3", "5", "135", "90s", "", ""},
		{"Tuesday", "", "", "", "", "", "", ""},
	}

	days := ParseDays(rows)
	if len(days) != 2 {
		t.Fatalf("days = %d, want 2", len(days))
	}

	want := models.DayWorkout{
		DayLabel: "Monday",
		DayName:  "Monday",
		Exercises: []models.Exercise{{
			SourceRow: 3, Block: "A", Name: "Squat", Sets: "3", Reps: "5", Load: "135", Rest: "90s",
		}},
	}
	if diff := cmp.Diff(want, days[0]); diff != "" {
		t.Errorf("monday mismatch (-want +got):\n%s", diff)
	}
	if days[1].DayName != "Tuesday" || len(days[1].Exercises) != 0 {
		t.Errorf("tuesday = %+v, want empty day", days[1])
	}
}

// TestParseDaysIgnoresPreamble verifies rows before the first day header are
// discarded and decorated day labels are kept verbatim.
func TestParseDaysIgnoresPreamble(t *testing.T) {
	rows := [][]string{
		{"Weekly Plan (3/2/2026)"},
		{"A", "Not an exercise yet", "3"},
		{},
		{"Day 1 – Monday (Push)"},
		{"A", "Bench Press", "4", "6", "185"},
		{"B", ""},
		{"C", "exercise"},
		{"B", "Dips", "3", "10", "", "", "", "", "extra column"},
		{"Day 3 – Wednesday (Pull)", ""},
		{"A", "Deadlift", "3", "3", "315"},
	}

	days := ParseDays(rows)
	if len(days) != 2 {
		t.Fatalf("days = %d, want 2", len(days))
	}
	if days[0].DayLabel != "Day 1 – Monday (Push)" || days[0].DayName != "Monday" {
		t.Errorf("day[0] label/name = %q/%q", days[0].DayLabel, days[0].DayName)
	}
	if len(days[0].Exercises) != 2 {
		t.Fatalf("monday exercises = %d, want 2", len(days[0].Exercises))
	}
	if days[0].Exercises[1].Name != "Dips" || days[0].Exercises[1].SourceRow != 8 {
		t.Errorf("dips = %+v, want source row 8", days[0].Exercises[1])
	}
	if days[1].DayName != "Wednesday" || days[1].Exercises[0].SourceRow != 10 {
		t.Errorf("wednesday = %+v", days[1])
	}
}

// TestParseDaysDayNameWithExercise verifies a weekday inside the block column
// does not open a new day when the exercise column is filled.
func TestParseDaysDayNameWithExercise(t *testing.T) {
	rows := [][]string{
		{"Friday"},
		{"Sunday prep", "Foam Roll", "1", "5 min"},
	}
	days := ParseDays(rows)
	if len(days) != 1 || len(days[0].Exercises) != 1 {
		t.Fatalf("days = %+v, want one Friday day with one exercise", days)
	}
	if days[0].Exercises[0].Name != "Foam Roll" {
		t.Errorf("exercise = %q, want Foam Roll", days[0].Exercises[0].Name)
	}
}

func TestParseDaysEmpty(t *testing.T) {
	if days := ParseDays(nil); len(days) != 0 {
		t.Errorf("ParseDays(nil) = %d days, want 0", len(days))
	}
	if days := ParseDays([][]string{{"A", "Squat"}}); len(days) != 0 {
		t.Errorf("ParseDays(no header) = %d days, want 0", len(days))
	}
}

// TestParseDaysKeepsHeaderText verifies the day label is the header cell as
// written, surrounding whitespace included.
func TestParseDaysKeepsHeaderText(t *testing.T) {
	rows := [][]string{
		{"  Thursday (Legs) ", ""},
		{"A", "Lunge", "3", "10"},
	}

	days := ParseDays(rows)
	if len(days) != 1 {
		t.Fatalf("days = %d, want 1", len(days))
	}
	if days[0].DayLabel != "  Thursday (Legs) " || days[0].DayName != "Thursday" {
		t.Errorf("day = %q/%q", days[0].DayLabel, days[0].DayName)
	}
}

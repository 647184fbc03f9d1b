package sheet

import (
	"strings"

	"github.com/claude/liftsync/internal/models"
)

type dayState int

const (
	awaitingDay dayState = iota // no day header seen yet
	inDay                       // collecting exercises for the open day
)

// ParseDays segments rows into day blocks. A row opens a day when its first
// column mentions a weekday and its second column is empty. Rows before the
// first day header are ignored, as are column header rows and rows without an
// exercise name. DayLabel keeps the header cell as written. SourceRow is the
// 1-based index into rows.
func ParseDays(rows [][]string) []models.DayWorkout {
	var (
		days    []models.DayWorkout
		current *models.DayWorkout
		state   = awaitingDay
	)

	flush := func() {
		if current != nil {
			days = append(days, *current)
			current = nil
		}
	}

	for i, raw := range rows {
		r := Normalize(raw)
		block := strings.TrimSpace(r[models.ColBlock])
		name := strings.TrimSpace(r[models.ColExercise])

		if day, ok := DayName(block); ok && name == "" {
			flush()
			current = &models.DayWorkout{DayLabel: r[models.ColBlock], DayName: day, Exercises: []models.Exercise{}}
			state = inDay
			continue
		}

		switch state {
		case awaitingDay:
			continue
		case inDay:
			if isColumnHeader(r) || name == "" || strings.EqualFold(name, "exercise") {
				continue
			}
			current.Exercises = append(current.Exercises, models.ExerciseFromRow(r, i+1))
		}
	}
	flush()

	return days
}

func isColumnHeader(r models.Row) bool {
	return strings.EqualFold(strings.TrimSpace(r[models.ColBlock]), "block") &&
		strings.EqualFold(strings.TrimSpace(r[models.ColExercise]), "exercise")
}

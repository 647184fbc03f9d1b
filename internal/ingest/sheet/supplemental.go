package sheet

import (
	"strings"

	"github.com/claude/liftsync/internal/models"
)

// SupplementalDays are the days that carry supplemental training.
var SupplementalDays = []string{"Tuesday", "Thursday", "Saturday"}

type supplementalState int

const (
	outsideDay supplementalState = iota // no supplemental day selected
	dayHeader                           // supplemental day seen, waiting for the Block header
	exerciseSection                     // rows are exercises for the current day
)

// NewSupplementalBucket returns a bucket with every supplemental day present and empty.
func NewSupplementalBucket() models.SupplementalBucket {
	b := make(models.SupplementalBucket, len(SupplementalDays))
	for _, d := range SupplementalDays {
		b[d] = []models.Exercise{}
	}
	return b
}

// ParseSupplemental collects supplemental exercises per day. Any weekday
// header resets the section; only Tuesday, Thursday and Saturday select a day,
// and they are checked before the reset.
// Exercises start after a row whose first column is "Block".
func ParseSupplemental(rows [][]string) models.SupplementalBucket {
	bucket := NewSupplementalBucket()
	state := outsideDay
	currentDay := ""

	for _, raw := range rows {
		first := strings.TrimSpace(cell(raw, 0))

		if day, ok := supplementalDayName(first); ok {
			currentDay = day
			state = dayHeader
			continue
		}
		if _, ok := DayName(first); ok {
			currentDay = ""
			state = outsideDay
			continue
		}

		if state != outsideDay && strings.EqualFold(first, "block") {
			state = exerciseSection
			continue
		}

		if state != exerciseSection || len(raw) < 2 {
			continue
		}
		r := Normalize(raw)
		name := strings.TrimSpace(r[models.ColExercise])
		if name == "" || strings.EqualFold(name, "exercise") {
			continue
		}
		bucket[currentDay] = append(bucket[currentDay], models.ExerciseFromRow(r, 0))
	}

	return bucket
}

// supplementalDayName returns the supplemental day mentioned in s. It wins
// over any other weekday in the same header.
func supplementalDayName(s string) (string, bool) {
	lower := strings.ToLower(s)
	for _, d := range SupplementalDays {
		if strings.Contains(lower, strings.ToLower(d)) {
			return d, true
		}
	}
	return "", false
}

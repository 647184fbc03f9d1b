package sheet

import (
	"strings"

	"github.com/claude/liftsync/internal/models"
)

// weekdays in calendar order. Day detection checks them in this order.
var weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// Normalize forces a raw row into the fixed 8-column shape: extra trailing
// columns are dropped, missing ones are empty.
func Normalize(raw []string) models.Row {
	var r models.Row
	copy(r[:], raw)
	return r
}

// DayName returns the weekday mentioned anywhere in s (case-insensitive).
func DayName(s string) (string, bool) {
	lower := strings.ToLower(s)
	for _, d := range weekdays {
		if strings.Contains(lower, strings.ToLower(d)) {
			return d, true
		}
	}
	return "", false
}

func cell(raw []string, i int) string {
	if i < len(raw) {
		return raw[i]
	}
	return ""
}

func isBlank(raw []string) bool {
	for _, c := range raw {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

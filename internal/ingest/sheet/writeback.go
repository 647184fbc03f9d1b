package sheet

import (
	"strings"

	"github.com/claude/liftsync/internal/models"
)

// LogMatch pairs a log entry with the 0-based index of the row it matched.
type LogMatch struct {
	Entry    models.LogEntry
	RowIndex int
}

// MatchRows aligns logged exercises with the rows under the first row whose
// first column contains dateLabel. The scan stops at the first blank row or
// day header. Logs are consumed in order and never revisited, so they must be
// given in the same order as the rows. A matched entry is consumed even when
// its text is empty.
func MatchRows(rows [][]string, dateLabel string, logs []models.LogEntry) []LogMatch {
	if len(rows) == 0 || len(logs) == 0 || dateLabel == "" {
		return nil
	}

	start := -1
	for i, raw := range rows {
		if strings.Contains(cell(raw, 0), dateLabel) {
			start = i
			break
		}
	}
	if start < 0 {
		return nil
	}

	var matches []LogMatch
	next := 0
	for i := start + 1; i < len(rows) && next < len(logs); i++ {
		raw := rows[i]
		if isBlank(raw) {
			break
		}
		if _, ok := DayName(cell(raw, 0)); ok {
			break
		}
		if len(raw) < 2 {
			continue
		}
		if !NamesMatch(raw[1], logs[next].Exercise) {
			continue
		}
		matches = append(matches, LogMatch{Entry: logs[next], RowIndex: i})
		next++
	}

	return matches
}

// MatchLogs returns one column H update per matched log with non-empty text.
func MatchLogs(rows [][]string, dateLabel, sheetName string, logs []models.LogEntry) []models.CellUpdate {
	var updates []models.CellUpdate
	for _, m := range MatchRows(rows, dateLabel, logs) {
		if m.Entry.Text == "" {
			continue
		}
		updates = append(updates, models.CellUpdate{
			Range:  LogCell(sheetName, m.RowIndex),
			Values: [][]string{{m.Entry.Text}},
		})
	}
	return updates
}

// NamesMatch reports whether two exercise names refer to the same exercise:
// either contains the other (case-insensitive), or every word of one appears
// among the words of the other. Empty names never match.
func NamesMatch(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return true
	}
	wa, wb := strings.Fields(a), strings.Fields(b)
	return containsAll(wa, wb) || containsAll(wb, wa)
}

func containsAll(haystack, needles []string) bool {
	set := make(map[string]bool, len(haystack))
	for _, w := range haystack {
		set[w] = true
	}
	for _, w := range needles {
		if !set[w] {
			return false
		}
	}
	return true
}

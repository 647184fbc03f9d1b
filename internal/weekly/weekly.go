// Package weekly resolves which dated weekly plan is current.
package weekly

import (
	"regexp"
	"sort"
	"strconv"
	"time"
)

// Selection windows. Remote sheets always resolve to something; local files
// outside the window are treated as stale.
const (
	WindowDays            = 35
	RemoteFallbackEnabled = true
	LocalFallbackEnabled  = false
)

// titlePatterns are tried in order; the first match wins.
var titlePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)weekly\s+plan\s*\(\s*(\d{1,2})/(\d{1,2})/(\d{4})\s*\)`),
	regexp.MustCompile(`(?i)\(\s*weekly\s+plan\s*\)\s*(\d{1,2})/(\d{1,2})/(\d{4})`),
}

// Candidate is a dated plan title considered during selection.
type Candidate struct {
	Title string
	Date  time.Time
}

// ParseWeeklyPlanDate extracts the date embedded in a weekly plan title.
func ParseWeeklyPlanDate(title string) (time.Time, bool) {
	for _, re := range titlePatterns {
		if m := re.FindStringSubmatch(title); m != nil {
			return civilDate(m[1], m[2], m[3])
		}
	}
	return time.Time{}, false
}

// Candidates returns the dated titles in input order; undated titles are dropped.
func Candidates(titles []string) []Candidate {
	var out []Candidate
	for _, t := range titles {
		if d, ok := ParseWeeklyPlanDate(t); ok {
			out = append(out, Candidate{Title: t, Date: d})
		}
	}
	return out
}

// civilDate builds a UTC midnight date from month, day and year strings,
// rejecting values time.Date would silently normalize (e.g. 2/30).
func civilDate(month, day, year string) (time.Time, bool) {
	m, err1 := strconv.Atoi(month)
	d, err2 := strconv.Atoi(day)
	y, err3 := strconv.Atoi(year)
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Year() != y || int(t.Month()) != m || t.Day() != d {
		return time.Time{}, false
	}
	return t, true
}

// Day truncates t to its calendar date in UTC.
func Day(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// DayDistance returns the signed number of calendar days from ref to t.
func DayDistance(t, ref time.Time) int {
	return int(Day(t).Sub(Day(ref)).Hours() / 24)
}

// PreferredCandidate picks the candidate closest to ref within windowDays.
// Ties prefer dates on or after ref, then the later date. When nothing is in
// the window and fallbackToMostRecent is set, the latest candidate overall is
// returned.
func PreferredCandidate(candidates []Candidate, ref time.Time, windowDays int, fallbackToMostRecent bool) (Candidate, bool) {
	if len(candidates) == 0 {
		return Candidate{}, false
	}

	type scored struct {
		Candidate
		dist  int
		after bool
	}
	var inWindow []scored
	for _, c := range candidates {
		signed := DayDistance(c.Date, ref)
		dist := abs(signed)
		if dist <= windowDays {
			inWindow = append(inWindow, scored{Candidate: c, dist: dist, after: signed >= 0})
		}
	}

	if len(inWindow) > 0 {
		sort.SliceStable(inWindow, func(i, j int) bool {
			a, b := inWindow[i], inWindow[j]
			if a.dist != b.dist {
				return a.dist < b.dist
			}
			if a.after != b.after {
				return a.after
			}
			return a.Date.After(b.Date)
		})
		return inWindow[0].Candidate, true
	}

	if !fallbackToMostRecent {
		return Candidate{}, false
	}
	latest := candidates[0]
	for _, c := range candidates[1:] {
		if c.Date.After(latest.Date) {
			latest = c
		}
	}
	return latest, true
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

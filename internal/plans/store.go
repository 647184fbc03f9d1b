// Package plans stores generated weekly plans as markdown files and selects
// the current one.
package plans

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/claude/liftsync/internal/ingest/markdown"
	"github.com/claude/liftsync/internal/ingest/sheet"
	"github.com/claude/liftsync/internal/models"
	"github.com/claude/liftsync/internal/weekly"
)

// ErrNoLocalPlan is returned when no plan file is eligible for loading.
var ErrNoLocalPlan = errors.New("no local plan")

const (
	filePrefix    = "workout_plan_"
	summarySuffix = "_summary.md"
	archiveDir    = "archive"

	// maxArchiveStem keeps archive names, with timestamp and counter, under
	// the common 255-byte file name limit.
	maxArchiveStem = 200
)

var (
	nonAlnum   = regexp.MustCompile(`[^a-z0-9]+`)
	fileDateRe = regexp.MustCompile(`^workout_plan_weekly_plan_(\d{1,2})_(\d{1,2})_(\d{4})\.md$`)
)

// Slug lowercases title and collapses every run of non-alphanumeric
// characters to a single underscore.
func Slug(title string) string {
	return strings.Trim(nonAlnum.ReplaceAllString(strings.ToLower(title), "_"), "_")
}

// FileName is the plan file name for a sheet title.
func FileName(title string) string {
	return filePrefix + Slug(title) + ".md"
}

// SummaryFileName is the name of the summary written next to a plan file.
func SummaryFileName(title string) string {
	return filePrefix + Slug(title) + summarySuffix
}

// ParseFileDate extracts the plan date from a file name such as
// workout_plan_weekly_plan_3_2_2026.md.
func ParseFileDate(name string) (time.Time, bool) {
	m := fileDateRe.FindStringSubmatch(name)
	if m == nil {
		return time.Time{}, false
	}
	month, _ := strconv.Atoi(m[1])
	day, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if int(t.Month()) != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

// Summary is the metadata written alongside a saved plan.
type Summary struct {
	SheetName   string
	Validation  string
	GeneratedAt time.Time
}

// Store reads and writes plan files in a single directory.
type Store struct {
	dir string
	log *slog.Logger
	now func() time.Time
}

// NewStore creates a store rooted at dir.
func NewStore(dir string, logger *slog.Logger) *Store {
	return &Store{dir: dir, log: logger, now: time.Now}
}

// Dir returns the store's root directory.
func (s *Store) Dir() string { return s.dir }

// Save writes body as the plan file for title, moving any existing file into
// archive/ first, then writes the summary file. It returns the plan path.
func (s *Store) Save(title string, body []byte, sum Summary) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating plans dir %s: %w", s.dir, err)
	}

	path := filepath.Join(s.dir, FileName(title))
	if _, err := os.Stat(path); err == nil {
		archived, err := s.archive(path)
		if err != nil {
			return "", err
		}
		s.log.Info("archived previous plan", "from", path, "to", archived)
	}

	if err := writeAtomic(path, body); err != nil {
		return "", fmt.Errorf("writing plan %s: %w", path, err)
	}
	sumPath := filepath.Join(s.dir, SummaryFileName(title))
	if err := writeAtomic(sumPath, renderSummary(sum)); err != nil {
		return "", fmt.Errorf("writing summary %s: %w", sumPath, err)
	}
	return path, nil
}

// archive moves path into the archive directory under a timestamped name,
// adding _1, _2, ... if that name is taken.
func (s *Store) archive(path string) (string, error) {
	dir := filepath.Join(s.dir, archiveDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating archive dir: %w", err)
	}

	stem := strings.TrimSuffix(filepath.Base(path), ".md")
	if len(stem) > maxArchiveStem {
		stem = stem[:maxArchiveStem]
	}
	base := stem + "_" + s.now().UTC().Format("20060102_150405")
	dest := filepath.Join(dir, base+".md")
	for n := 1; ; n++ {
		_, err := os.Stat(dest)
		if errors.Is(err, os.ErrNotExist) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("checking archive name %s: %w", dest, err)
		}
		dest = filepath.Join(dir, fmt.Sprintf("%s_%d.md", base, n))
	}

	if err := os.Rename(path, dest); err != nil {
		return "", fmt.Errorf("archiving %s: %w", path, err)
	}
	return dest, nil
}

func renderSummary(sum Summary) []byte {
	var b strings.Builder
	b.WriteString("# Plan Summary\n\n")
	fmt.Fprintf(&b, "- Sheet: %s\n", sum.SheetName)
	fmt.Fprintf(&b, "- Generated: %s\n", sum.GeneratedAt.UTC().Format(time.RFC3339))
	if sum.Validation != "" {
		fmt.Fprintf(&b, "\n## Validation\n\n%s\n", sum.Validation)
	}
	return []byte(b.String())
}

// planFiles lists plan file names (not summaries or directories) in the store.
func (s *Store) planFiles() ([]os.DirEntry, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var out []os.DirEntry
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, ".md") ||
			strings.HasSuffix(name, summarySuffix) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// Select returns the path of the current plan file relative to ref. Dated
// files are chosen with the weekly selection policy and no fallback, so stale
// dated files yield ErrNoLocalPlan. Only when no file carries a date is the
// most recently modified plan file used.
func (s *Store) Select(ref time.Time) (string, error) {
	files, err := s.planFiles()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNoLocalPlan
		}
		return "", fmt.Errorf("listing plans: %w", err)
	}

	var dated []weekly.Candidate
	for _, f := range files {
		if d, ok := ParseFileDate(f.Name()); ok {
			dated = append(dated, weekly.Candidate{Title: f.Name(), Date: d})
		}
	}

	if len(dated) > 0 {
		c, ok := weekly.PreferredCandidate(dated, ref, weekly.WindowDays, weekly.LocalFallbackEnabled)
		if !ok {
			return "", fmt.Errorf("%w: no dated plan within %d days of %s",
				ErrNoLocalPlan, weekly.WindowDays, ref.Format(time.DateOnly))
		}
		return filepath.Join(s.dir, c.Title), nil
	}

	var (
		newest  string
		newestT time.Time
	)
	for _, f := range files {
		info, err := f.Info()
		if err != nil {
			continue
		}
		if newest == "" || info.ModTime().After(newestT) {
			newest, newestT = f.Name(), info.ModTime()
		}
	}
	if newest == "" {
		return "", ErrNoLocalPlan
	}
	return filepath.Join(s.dir, newest), nil
}

// Load selects and parses the current local plan.
func (s *Store) Load(ref time.Time) (models.PlanSnapshot, error) {
	path, err := s.Select(ref)
	if err != nil {
		return models.PlanSnapshot{}, err
	}
	doc, err := s.read(path)
	if err != nil {
		return models.PlanSnapshot{}, err
	}

	days := sheet.ParseDays(doc.Rows)
	title := doc.Title
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), ".md")
	}
	return models.PlanSnapshot{
		Title:   title,
		Source:  models.SourceLocalCache,
		Days:    days,
		Summary: fmt.Sprintf("Loaded %d days from local plan %s.", len(days), filepath.Base(path)),
	}, nil
}

// LoadSupplemental parses supplemental days from the current local plan.
func (s *Store) LoadSupplemental(ref time.Time) (models.SupplementalBucket, error) {
	path, err := s.Select(ref)
	if err != nil {
		return nil, err
	}
	doc, err := s.read(path)
	if err != nil {
		return nil, err
	}
	return sheet.ParseSupplemental(doc.Rows), nil
}

func (s *Store) read(path string) (markdown.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return markdown.Document{}, fmt.Errorf("reading plan %s: %w", path, err)
	}
	return markdown.Parse(data), nil
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".plan-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

package storage

import (
	"errors"
	"io"
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/claude/liftsync"
)

func TestEmbeddedMigrations(t *testing.T) {
	src, err := migrationSource(liftsync.Migrations)
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	first, err := src.First()
	if err != nil || first != 1 {
		t.Fatalf("First() = (%d, %v), want 1", first, err)
	}

	for _, read := range []func(uint) (io.ReadCloser, string, error){src.ReadUp, src.ReadDown} {
		r, _, err := read(first)
		if err != nil {
			t.Fatal(err)
		}
		body, err := io.ReadAll(r)
		r.Close()
		if err != nil {
			t.Fatal(err)
		}
		for _, table := range []string{"sync_runs", "logged_exercises"} {
			if !strings.Contains(string(body), table) {
				t.Errorf("migration %d does not mention %s", first, table)
			}
		}
	}

	if _, err := src.Next(first); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Next(%d) err = %v, want not exist", first, err)
	}
}

func TestMigrationSourceMissingDir(t *testing.T) {
	if _, err := migrationSource(fstest.MapFS{}); err == nil {
		t.Error("expected error for FS without migrations/")
	}
}

package staging

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tbexport/internal/logging"
)

func TestDirNaming(t *testing.T) {
	dir := Dir("/out", "exp_run1", "0123456789abcdef")
	if dir != filepath.Join("/out", ".exp_run1.staging-01234567") {
		t.Fatalf("unexpected staging dir %q", dir)
	}
	if !IsStagingName(filepath.Base(dir)) {
		t.Fatal("expected Dir output to be recognised")
	}
	for _, name := range []string{"exp_run1", ".hidden", "run.staging-x"} {
		if IsStagingName(name) {
			t.Fatalf("%q should not be a staging name", name)
		}
	}
}

func TestCleanStaleInvalidPaths(t *testing.T) {
	for _, dir := range []string{"", "   ", "/nonexistent/path/12345"} {
		result := CleanStale(context.Background(), dir, time.Hour, logging.NewNop())
		if len(result.Removed) != 0 || len(result.Errors) != 0 {
			t.Errorf("expected empty result for path %q", dir)
		}
	}
}

func TestCleanStaleRemovesOnlyOldStagingDirectories(t *testing.T) {
	out := t.TempDir()
	old := Dir(out, "old_run", "aaaaaaaa")
	fresh := Dir(out, "fresh_run", "bbbbbbbb")
	run := filepath.Join(out, "old_run")
	for _, dir := range []string{old, fresh, run} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	past := time.Now().Add(-2 * time.Hour)
	for _, dir := range []string{old, run} {
		if err := os.Chtimes(dir, past, past); err != nil {
			t.Fatal(err)
		}
	}

	result := CleanStale(context.Background(), out, time.Hour, logging.NewNop())
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors %+v", result.Errors)
	}
	if len(result.Removed) != 1 || !strings.HasSuffix(result.Removed[0], filepath.Base(old)) {
		t.Fatalf("unexpected removals %v", result.Removed)
	}
	for _, dir := range []string{fresh, run} {
		if _, err := os.Stat(dir); err != nil {
			t.Fatalf("expected %s to survive: %v", dir, err)
		}
	}
}

func TestCleanStaleIgnoresFiles(t *testing.T) {
	out := t.TempDir()
	path := filepath.Join(out, ".x.staging-file")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CleanStale(context.Background(), out, 0, nil)
	if len(result.Removed) != 0 {
		t.Fatalf("files must not be removed: %v", result.Removed)
	}
}

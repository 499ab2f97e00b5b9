package discovery

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"tbexport/internal/logging"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestDiscoverSortsAndDeduplicates(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "b", "events.out.tfevents.1.host"))
	touch(t, filepath.Join(root, "b", "events.out.tfevents.2.host"))
	touch(t, filepath.Join(root, "a", "nested", "events.out.tfevents.1.host"))
	touch(t, filepath.Join(root, "events.out.tfevents.1.host"))
	touch(t, filepath.Join(root, "c", "README.md"))

	runs, err := Discover(root, logging.NewNop())
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	want := []string{".", "a/nested", "b"}
	if len(runs) != len(want) {
		t.Fatalf("got %d runs, want %d: %+v", len(runs), len(want), runs)
	}
	for i, rel := range want {
		if runs[i].Rel != rel {
			t.Fatalf("run %d: got %q want %q", i, runs[i].Rel, rel)
		}
	}
}

func TestDiscoverOrdersByPathComponents(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "lr0.1", "events.out.tfevents.1.host"))
	touch(t, filepath.Join(root, "lr0.1", "train", "events.out.tfevents.1.host"))
	touch(t, filepath.Join(root, "lr0.1-warm", "train", "events.out.tfevents.1.host"))
	touch(t, filepath.Join(root, "lr0.1 v2", "events.out.tfevents.1.host"))

	runs, err := Discover(root, logging.NewNop())
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	want := []string{"lr0.1", "lr0.1/train", "lr0.1 v2", "lr0.1-warm/train"}
	if len(runs) != len(want) {
		t.Fatalf("got %d runs, want %d: %+v", len(runs), len(want), runs)
	}
	for i, rel := range want {
		if runs[i].Rel != rel {
			t.Fatalf("run %d: got %q want %q", i, runs[i].Rel, rel)
		}
	}
}

func TestDiscoverSkipsUnreadableDirectories(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}
	root := t.TempDir()
	touch(t, filepath.Join(root, "good", "events.out.tfevents.1.host"))
	locked := filepath.Join(root, "locked")
	touch(t, filepath.Join(locked, "events.out.tfevents.1.host"))
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	runs, err := Discover(root, logging.NewNop())
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(runs) != 1 || runs[0].Rel != "good" {
		t.Fatalf("expected only the readable run, got %+v", runs)
	}
}

func TestDiscoverNoRuns(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a", "metrics.csv"))

	_, err := Discover(root, logging.NewNop())
	if !errors.Is(err, ErrNoRuns) {
		t.Fatalf("expected ErrNoRuns, got %v", err)
	}
}

func TestDiscoverMissingRoot(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "missing"), nil)
	if err == nil {
		t.Fatal("expected error for missing root")
	}
	if errors.Is(err, ErrNoRuns) {
		t.Fatalf("missing root should not be reported as ErrNoRuns: %v", err)
	}
}

func TestRunName(t *testing.T) {
	root := filepath.Join("/logs", "mnist")
	cases := []struct {
		rel  string
		want string
	}{
		{rel: "lr_0.1/seed1", want: "lr_0.1_seed1"},
		{rel: "baseline", want: "baseline"},
		{rel: ".", want: "mnist"},
	}
	for _, tc := range cases {
		if got := (Run{Rel: tc.rel}).Name(root); got != tc.want {
			t.Fatalf("Name(%q) = %q, want %q", tc.rel, got, tc.want)
		}
	}
}

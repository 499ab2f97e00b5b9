package overrides

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"tbexport/internal/logging"
)

func TestParseTitles(t *testing.T) {
	titles, err := ParseTitles(`{"run_a": "Baseline", "run_b": "Wide"}`)
	if err != nil {
		t.Fatalf("ParseTitles: %v", err)
	}
	if title, ok := titles.Lookup("run_a"); !ok || title != "Baseline" {
		t.Fatalf("unexpected lookup result %q %v", title, ok)
	}
	if _, ok := titles.Lookup("run_c"); ok {
		t.Fatal("unexpected title for run_c")
	}

	empty, err := ParseTitles("   ")
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty titles, got %v %v", empty, err)
	}
}

func TestParseTitlesMalformed(t *testing.T) {
	for _, raw := range []string{`{"run_a":`, `["a"]`, `{"run_a": 3}`} {
		if _, err := ParseTitles(raw); !errors.Is(err, ErrMalformed) {
			t.Fatalf("ParseTitles(%q): expected ErrMalformed, got %v", raw, err)
		}
	}
}

func TestLoadParams(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "params.json")
	data := []byte("\xEF\xBB\xBF{\"run_a\": {\"lr\": 0.1, \"layers\": [64, 64]}}")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write params: %v", err)
	}

	params, err := LoadParams(path, logging.NewNop())
	if err != nil {
		t.Fatalf("LoadParams: %v", err)
	}
	raw, ok := params.Lookup("run_a")
	if !ok {
		t.Fatal("expected params for run_a")
	}
	if string(raw) != `{"lr": 0.1, "layers": [64, 64]}` {
		t.Fatalf("params not passed through verbatim: %s", raw)
	}
}

func TestLoadParamsMissingFileIsNotAnError(t *testing.T) {
	params, err := LoadParams(filepath.Join(t.TempDir(), "absent.json"), logging.NewNop())
	if err != nil {
		t.Fatalf("LoadParams: %v", err)
	}
	if len(params) != 0 {
		t.Fatalf("expected no params, got %v", params)
	}
}

func TestLoadParamsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.json")
	if err := os.WriteFile(path, []byte(`{"run_a": `), 0o644); err != nil {
		t.Fatalf("write params: %v", err)
	}
	if _, err := LoadParams(path, logging.NewNop()); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

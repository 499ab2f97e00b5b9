package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.json")

	if err := WriteFileAtomic(path, []byte("first"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := WriteFileAtomic(path, []byte("second"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "second" {
		t.Fatalf("content mismatch: got %q", got)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected temp files to be cleaned up, found %d entries", len(entries))
	}
}

func TestWriteFileAtomicMissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "file.json")
	if err := WriteFileAtomic(path, []byte("x"), 0o644); err == nil {
		t.Fatal("expected error when parent directory is missing")
	}
}

func TestReplaceDir(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "staging")
	dst := filepath.Join(dir, "run")

	if err := os.MkdirAll(dst, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dst, "stale.csv"), []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(src, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "meta.json"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := ReplaceDir(src, dst); err != nil {
		t.Fatal(err)
	}
	if Exists(filepath.Join(dst, "stale.csv")) {
		t.Fatal("expected stale file to be removed")
	}
	if !Exists(filepath.Join(dst, "meta.json")) {
		t.Fatal("expected new file in place")
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatalf("expected staging dir to be gone, got %v", err)
	}
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	if Exists(dir) {
		t.Fatal("directories are not files")
	}
	if Exists(filepath.Join(dir, "nope")) {
		t.Fatal("missing file reported as existing")
	}
}

func TestMarshalJSONMatchesDashboardLayout(t *testing.T) {
	type meta struct {
		Title string `json:"title"`
		Type  string `json:"type"`
	}
	got, err := MarshalJSON(meta{Title: "Café <run> 🚀", Type: "function_approx"})
	if err != nil {
		t.Fatal(err)
	}
	want := "{\n  \"title\": \"Caf\\u00e9 <run> \\ud83d\\ude80\",\n  \"type\": \"function_approx\"\n}"
	if string(got) != want {
		t.Fatalf("unexpected encoding:\n%s\nwant:\n%s", got, want)
	}

	empty, err := MarshalJSON(map[string]any{})
	if err != nil {
		t.Fatal(err)
	}
	if string(empty) != "{}" {
		t.Fatalf("expected {}, got %q", empty)
	}
}

func TestIndentJSONPreservesOrder(t *testing.T) {
	got, err := IndentJSON([]byte(`{"z":1,"a":[1.50,"é"]}`))
	if err != nil {
		t.Fatal(err)
	}
	want := "{\n  \"z\": 1,\n  \"a\": [\n    1.50,\n    \"\\u00e9\"\n  ]\n}"
	if string(got) != want {
		t.Fatalf("unexpected indent:\n%s", got)
	}
	if _, err := IndentJSON([]byte(`{"z":`)); err == nil {
		t.Fatal("expected error for truncated JSON")
	}
}

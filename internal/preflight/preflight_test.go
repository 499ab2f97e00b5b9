package preflight

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tbexport/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if !strings.Contains(result.Detail, "does not exist") {
		t.Fatalf("unexpected detail %q", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckReadableDirectory("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestRunAllSkipsUnsetLogDir(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.OutDir = t.TempDir()

	results := RunAll(&cfg)
	if len(results) != 1 || results[0].Name != "Output directory" {
		t.Fatalf("unexpected results %+v", results)
	}
	if err := Err(results); err != nil {
		t.Fatalf("expected pass, got %v", err)
	}
}

func TestErrReportsFailures(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "missing")
	cfg.Paths.OutDir = t.TempDir()

	err := Err(RunAll(&cfg))
	if err == nil || !strings.Contains(err.Error(), "Log directory") {
		t.Fatalf("expected log directory failure, got %v", err)
	}
}

func TestRunAllNilConfig(t *testing.T) {
	if RunAll(nil) != nil {
		t.Fatal("expected nil results for nil config")
	}
}

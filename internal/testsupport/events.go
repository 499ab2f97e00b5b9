package testsupport

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"tbexport/internal/eventlog"
)

// Scalar is one sample written by WriteRun.
type Scalar struct {
	Tag      string
	Step     int64
	Value    float32
	WallTime float64
}

// WriteEventFile creates an event file at path and lets fn append events.
func WriteEventFile(t testing.TB, path string, fn func(w *eventlog.Writer)) {
	t.Helper()

	var buf bytes.Buffer
	w, err := eventlog.NewWriter(&buf, 0)
	if err != nil {
		t.Fatalf("eventlog.NewWriter: %v", err)
	}
	if fn != nil {
		fn(w)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteRun writes scalars as simple values into a single event file inside
// dir and returns the file's path.
func WriteRun(t testing.TB, dir string, scalars ...Scalar) string {
	t.Helper()

	path := filepath.Join(dir, eventlog.FilePrefix+".1700000000.testhost")
	WriteEventFile(t, path, func(w *eventlog.Writer) {
		for _, s := range scalars {
			if err := w.WriteScalar(s.Tag, s.Step, s.Value, s.WallTime); err != nil {
				t.Fatalf("WriteScalar %s: %v", s.Tag, err)
			}
		}
	})
	return path
}

// Series builds scalars for tag at steps 0..n-1 with one-second wall time
// spacing starting at start.
func Series(tag string, start float64, values ...float32) []Scalar {
	out := make([]Scalar, len(values))
	for i, v := range values {
		out[i] = Scalar{Tag: tag, Step: int64(i), Value: v, WallTime: start + float64(i)}
	}
	return out
}

// ReadFile returns the file's contents as a string.
func ReadFile(t testing.TB, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

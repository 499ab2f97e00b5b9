// Package discovery finds run directories beneath a TensorBoard log root.
package discovery

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"tbexport/internal/eventlog"
)

// ErrNoRuns reports a log root without any event files.
var ErrNoRuns = errors.New("no TensorBoard runs found")

// Run is one directory holding event files.
type Run struct {
	// Dir is the run directory as reached from the log root.
	Dir string
	// Rel is Dir relative to the log root, slash separated. The root itself is ".".
	Rel string
}

// Name flattens the relative path into a single identifier segment. The log
// root itself is named after its base directory.
func (r Run) Name(root string) string {
	if r.Rel == "." || r.Rel == "" {
		return filepath.Base(filepath.Clean(root))
	}
	return strings.ReplaceAll(r.Rel, "/", "_")
}

// Discover walks root and returns every directory that directly contains an
// event file, ordered by path components. Subdirectories that cannot be read
// are skipped with a warning.
func Discover(root string, logger *slog.Logger) ([]Run, error) {
	if logger == nil {
		logger = slog.Default()
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("inspect log directory %q: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("log directory %q is not a directory", root)
	}

	seen := make(map[string]struct{})
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path != root && d != nil && d.IsDir() && errors.Is(err, fs.ErrPermission) {
				logger.Warn("skipping unreadable directory",
					slog.String("path", path),
					slog.String("error", err.Error()),
					slog.String("event_type", "discovery_skip"),
				)
				return fs.SkipDir
			}
			return fmt.Errorf("walk %s: %w", path, err)
		}
		if d.IsDir() || !eventlog.IsEventFile(d.Name()) {
			return nil
		}
		seen[filepath.Dir(path)] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(seen) == 0 {
		return nil, fmt.Errorf("%w under %s", ErrNoRuns, root)
	}

	dirs := make([]string, 0, len(seen))
	for dir := range seen {
		dirs = append(dirs, dir)
	}
	slices.SortFunc(dirs, comparePaths)

	runs := make([]Run, 0, len(dirs))
	for _, dir := range dirs {
		rel, err := filepath.Rel(root, dir)
		if err != nil {
			return nil, fmt.Errorf("relative path for %s: %w", dir, err)
		}
		runs = append(runs, Run{Dir: dir, Rel: filepath.ToSlash(rel)})
	}
	return runs, nil
}

// comparePaths orders paths one component at a time, so "a/b" sorts before
// "a-b/c" even though '-' precedes '/' bytewise.
func comparePaths(a, b string) int {
	return slices.Compare(
		strings.Split(filepath.ToSlash(a), "/"),
		strings.Split(filepath.ToSlash(b), "/"),
	)
}

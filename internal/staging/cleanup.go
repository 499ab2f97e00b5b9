// Package staging names the hidden per-run directories an export writes into
// before committing, and removes ones a crashed export left behind.
package staging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tbexport/internal/logging"
)

const marker = ".staging-"

// Dir returns the staging directory for run id inside outDir. Names start
// with a dot so dashboards serving outDir skip them.
func Dir(outDir, id, session string) string {
	if len(session) > 8 {
		session = session[:8]
	}
	return filepath.Join(outDir, fmt.Sprintf(".%s%s%s", id, marker, session))
}

// IsStagingName reports whether name was produced by Dir.
func IsStagingName(name string) bool {
	return strings.HasPrefix(name, ".") && strings.Contains(name, marker)
}

// CleanStaleResult contains the outcome of a stale directory cleanup operation.
type CleanStaleResult struct {
	Removed []string
	Errors  []CleanupError
}

// CleanupError pairs a directory path with its cleanup error.
type CleanupError struct {
	Path  string
	Error error
}

// CleanStale removes staging directories in outDir older than maxAge. The
// caller must hold the output lock so no live export's directories match.
func CleanStale(ctx context.Context, outDir string, maxAge time.Duration, logger *slog.Logger) CleanStaleResult {
	result := CleanStaleResult{}

	outDir = strings.TrimSpace(outDir)
	if outDir == "" {
		return result
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Errors = append(result.Errors, CleanupError{Path: outDir, Error: err})
		}
		return result
	}

	cutoff := time.Now().Add(-maxAge)

	for _, entry := range entries {
		if ctx.Err() != nil {
			return result
		}
		if !entry.IsDir() || !IsStagingName(entry.Name()) {
			continue
		}

		dirPath := filepath.Join(outDir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: dirPath, Error: err})
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		if err := os.RemoveAll(dirPath); err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: dirPath, Error: err})
			if logger != nil {
				logger.Warn("failed to remove stale staging directory",
					logging.String("path", dirPath),
					logging.Error(err),
					logging.String(logging.FieldEventType, "staging_cleanup_failed"),
					logging.String(logging.FieldErrorHint, "check out_dir permissions"),
					logging.String(logging.FieldImpact, "disk space not reclaimed"),
				)
			}
			continue
		}
		result.Removed = append(result.Removed, dirPath)
		if logger != nil {
			logger.Info("removed stale staging directory",
				logging.String("path", dirPath),
				logging.Duration("age", time.Since(info.ModTime())),
				logging.String(logging.FieldEventType, "staging_cleanup"),
			)
		}
	}

	return result
}

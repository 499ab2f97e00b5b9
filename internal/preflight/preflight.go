package preflight

import (
	"errors"
	"fmt"
	"strings"

	"tbexport/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the checks applicable to cfg. The log directory is only
// checked when one is configured.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	if cfg.Paths.LogDir != "" {
		results = append(results, CheckReadableDirectory("Log directory", cfg.Paths.LogDir))
	}
	results = append(results, CheckDirectoryAccess("Output directory", cfg.Paths.OutDir))
	return results
}

// Err joins the details of every failed result, or returns nil.
func Err(results []Result) error {
	var failed []string
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, fmt.Sprintf("%s: %s", r.Name, r.Detail))
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return errors.New("preflight failed: " + strings.Join(failed, "; "))
}

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"tbexport/internal/config"
	"tbexport/internal/discovery"
	"tbexport/internal/eventlog"
	"tbexport/internal/export"
	"tbexport/internal/fileutil"
	"tbexport/internal/logging"
	"tbexport/internal/manifest"
	"tbexport/internal/overrides"
	"tbexport/internal/preflight"
	"tbexport/internal/series"
	"tbexport/internal/staging"
)

// LockPath returns the advisory lock file for outDir. It sits beside the
// output directory so the served tree stays free of it.
func LockPath(outDir string) string {
	return filepath.Clean(outDir) + ".lock"
}

var (
	// ErrLocked reports another export holding the output directory.
	ErrLocked = errors.New("output directory is locked by another export")
	// ErrDuplicateID reports two runs flattening to the same identifier.
	ErrDuplicateID = errors.New("duplicate run identifier")
)

// Runner executes exports for one configuration.
type Runner struct {
	cfg    *config.Config
	logger *slog.Logger
	opener eventlog.Opener
}

// Option customizes a Runner.
type Option func(*Runner)

// WithOpener replaces the event log reader, mainly for tests.
func WithOpener(opener eventlog.Opener) Option {
	return func(r *Runner) {
		r.opener = opener
	}
}

// NewRunner returns a runner for cfg. A nil logger discards output.
func NewRunner(cfg *config.Config, logger *slog.Logger, opts ...Option) *Runner {
	logger = logging.NewComponentLogger(logger, "pipeline")
	r := &Runner{
		cfg:    cfg,
		logger: logger,
		opener: eventlog.DirOpener{Logger: logger},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Result summarizes a completed export.
type Result struct {
	SessionID string
	OutDir    string
	Bundles   []export.Bundle
	Manifest  manifest.Manifest
	Duration  time.Duration
}

// planned is one discovered run with its identifier and staging location.
type planned struct {
	run     discovery.Run
	id      string
	staging string
}

// Run performs a full export. On error nothing under the output directory
// has been replaced.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	cfg := r.cfg
	if cfg == nil {
		return nil, errors.New("pipeline: nil config")
	}
	if err := cfg.ValidateForExport(); err != nil {
		return nil, err
	}

	sessionID := uuid.NewString()
	logger := logging.WithSessionLogger(r.logger, sessionID)

	titles, err := overrides.ParseTitles(cfg.Export.TitleMap)
	if err != nil {
		return nil, err
	}
	params, err := overrides.LoadParams(cfg.Export.ParamsFile, logger)
	if err != nil {
		return nil, err
	}
	runs, err := discovery.Discover(cfg.Paths.LogDir, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("runs discovered",
		logging.String("log_dir", cfg.Paths.LogDir),
		logging.Int("runs", len(runs)),
	)

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}
	if err := preflight.Err(preflight.RunAll(cfg)); err != nil {
		return nil, err
	}

	lock := flock.New(LockPath(cfg.Paths.OutDir))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock output directory: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrLocked, cfg.Paths.OutDir)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("release output lock failed", logging.Error(err))
		}
	}()

	staging.CleanStale(ctx, cfg.Paths.OutDir, 0, logger)

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	exporter := &export.Exporter{
		Type:     cfg.Export.DefaultType,
		Prefix:   cfg.Export.RunPrefix,
		Location: loc,
		Titles:   titles,
		Params:   params,
		Loss:     cfg.LossPreferences(),
		MSE:      cfg.MSEPreferences(),
		Accuracy: cfg.AccuracyPreferences(),
		Logger:   logging.NewComponentLogger(logger, "export"),
	}

	plan, err := r.plan(runs, exporter, sessionID)
	if err != nil {
		return nil, err
	}
	defer cleanupStaging(plan, logger)

	bundles, err := r.exportAll(ctx, plan, exporter, logger)
	if err != nil {
		logging.ErrorWithContext(logger, "export aborted", "export_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "fix or remove the failing run and re-run the export"),
		)
		return nil, err
	}

	for _, p := range plan {
		if err := fileutil.ReplaceDir(p.staging, filepath.Join(cfg.Paths.OutDir, p.id)); err != nil {
			return nil, fmt.Errorf("commit run %s: %w", p.id, err)
		}
	}

	builder := manifest.NewBuilder(len(bundles))
	for _, b := range bundles {
		builder.Add(b.Experiment())
	}
	if err := builder.Write(filepath.Join(cfg.Paths.OutDir, manifest.FileName)); err != nil {
		return nil, err
	}

	result := &Result{
		SessionID: sessionID,
		OutDir:    cfg.Paths.OutDir,
		Bundles:   bundles,
		Manifest:  builder.Manifest(),
		Duration:  time.Since(start),
	}
	logger.Info("export complete",
		logging.Int("runs", builder.Len()),
		logging.String("out_dir", cfg.Paths.OutDir),
		logging.Duration("duration", result.Duration),
	)
	return result, nil
}

// plan assigns identifiers and staging directories, rejecting collisions
// before anything is written.
func (r *Runner) plan(runs []discovery.Run, exporter *export.Exporter, sessionID string) ([]planned, error) {
	seen := make(map[string]string, len(runs))
	plan := make([]planned, 0, len(runs))
	for _, run := range runs {
		_, id := exporter.Identify(run, r.cfg.Paths.LogDir)
		if prev, ok := seen[id]; ok {
			return nil, fmt.Errorf("%w %q: %s and %s", ErrDuplicateID, id, prev, run.Dir)
		}
		seen[id] = run.Dir
		plan = append(plan, planned{
			run:     run,
			id:      id,
			staging: staging.Dir(r.cfg.Paths.OutDir, id, sessionID),
		})
	}
	return plan, nil
}

// exportAll processes every planned run with at most Export.Workers in
// flight. Bundles come back in plan order regardless of completion order.
func (r *Runner) exportAll(ctx context.Context, plan []planned, exporter *export.Exporter, logger *slog.Logger) ([]export.Bundle, error) {
	bundles := make([]export.Bundle, len(plan))
	progress := logging.NewProgressSampler(len(plan), 10)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(r.cfg.Export.Workers, 1))
	for i, p := range plan {
		g.Go(func() error {
			runCtx := logging.WithRunID(gctx, p.id)
			set, err := series.Load(runCtx, r.opener, p.run.Dir)
			if err != nil {
				return fmt.Errorf("run %s: %w", p.id, err)
			}
			if err := os.MkdirAll(p.staging, 0o755); err != nil {
				return fmt.Errorf("run %s: create staging dir: %w", p.id, err)
			}
			bundle, err := exporter.Export(runCtx, p.staging, export.Input{
				Run:    p.run,
				Root:   r.cfg.Paths.LogDir,
				Series: set,
			})
			if err != nil {
				return err
			}
			bundles[i] = bundle

			if done, percent, emit := progress.Advance(); emit {
				logging.WithContext(runCtx, logger).Info("export progress",
					logging.Int("done", done),
					logging.Int("total", len(plan)),
					logging.Float64("percent", percent),
					logging.Int("tags", set.Len()),
				)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return bundles, nil
}

// cleanupStaging removes staging directories left behind by a failed or
// partially committed export.
func cleanupStaging(plan []planned, logger *slog.Logger) {
	for _, p := range plan {
		if err := os.RemoveAll(p.staging); err != nil {
			logging.WarnWithContext(logger, "remove staging directory failed", "staging_cleanup_failed",
				logging.String("path", p.staging),
				logging.Error(err),
				logging.String(logging.FieldImpact, "a hidden staging directory remains in the output directory"),
			)
		}
	}
}

package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"tbexport/internal/discovery"
	"tbexport/internal/export"
	"tbexport/internal/series"
)

// RunSummary describes what an export would produce for one run.
type RunSummary struct {
	ID       string   `json:"id"`
	Dir      string   `json:"dir"`
	Tags     []string `json:"tags"`
	Events   int      `json:"events"`
	Date     string   `json:"date,omitempty"`
	Loss     string   `json:"loss_tag,omitempty"`
	MSE      string   `json:"mse_tag,omitempty"`
	Accuracy string   `json:"accuracy_tag,omitempty"`
}

// Inspect discovers and parses every run and reports the tags the export
// would select, without writing anything.
func (r *Runner) Inspect(ctx context.Context) ([]RunSummary, error) {
	if err := r.cfg.ValidateForExport(); err != nil {
		return nil, err
	}
	runs, err := discovery.Discover(r.cfg.Paths.LogDir, r.logger)
	if err != nil {
		return nil, err
	}
	loc, err := r.cfg.Location()
	if err != nil {
		return nil, err
	}
	exporter := &export.Exporter{
		Prefix:   r.cfg.Export.RunPrefix,
		Location: loc,
		Loss:     r.cfg.LossPreferences(),
		MSE:      r.cfg.MSEPreferences(),
		Accuracy: r.cfg.AccuracyPreferences(),
	}

	summaries := make([]RunSummary, len(runs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(r.cfg.Export.Workers, 1))
	for i, run := range runs {
		g.Go(func() error {
			set, err := series.Load(gctx, r.opener, run.Dir)
			if err != nil {
				return fmt.Errorf("inspect %s: %w", run.Dir, err)
			}
			_, id := exporter.Identify(run, r.cfg.Paths.LogDir)
			res := exporter.Resolve(set)
			summary := RunSummary{
				ID:       id,
				Dir:      run.Dir,
				Tags:     set.Tags(),
				Events:   set.Events(),
				Loss:     res.Loss,
				MSE:      res.MSE,
				Accuracy: res.Accuracy,
			}
			if set.HasWallTime {
				summary.Date = export.FormatDate(set.FirstWallTime, loc)
			}
			summaries[i] = summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	r.logger.Debug("runs inspected", "runs", len(summaries))
	return summaries, nil
}

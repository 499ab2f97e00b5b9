package export

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"tbexport/internal/discovery"
	"tbexport/internal/logging"
	"tbexport/internal/manifest"
	"tbexport/internal/series"
	"tbexport/internal/tags"
	"tbexport/internal/textutil"
)

// Paths lists the artifacts written for a run.
type Paths = manifest.Paths

// TitleLookup supplies display title overrides keyed by un-prefixed run name.
type TitleLookup interface {
	Lookup(name string) (string, bool)
}

// ParamsLookup supplies hyperparameter objects keyed by un-prefixed run name.
type ParamsLookup interface {
	Lookup(name string) (json.RawMessage, bool)
}

// Exporter builds and writes run artifact bundles.
type Exporter struct {
	// Type is written to every meta.json.
	Type string
	// Prefix is prepended to every run name to form its identifier.
	Prefix string
	// Location renders meta.json dates; nil means time.Local.
	Location *time.Location
	Titles   TitleLookup
	Params   ParamsLookup

	Loss     tags.Preferences
	MSE      tags.Preferences
	Accuracy tags.Preferences

	Logger *slog.Logger
}

// Input is one run to export.
type Input struct {
	Run discovery.Run
	// Root is the log directory the run was discovered under.
	Root   string
	Series *series.Set
}

// Resolution records which tag was chosen for each metric role. Empty means
// nothing matched.
type Resolution struct {
	Loss     string
	MSE      string
	Accuracy string
}

// Bundle is one run's exportable content.
type Bundle struct {
	Name  string
	ID    string
	Title string
	Type  string
	// Date is the ISO-8601 rendering of the run's first wall time; empty
	// when the run has none.
	Date   string
	Params json.RawMessage

	Accuracy    []float64
	MaxAccuracy float64
	Loss        []float64
	MSE         []float64

	Tags  Resolution
	Paths Paths
}

// Experiment returns the bundle's manifest entry.
func (b Bundle) Experiment() manifest.Experiment {
	return manifest.Experiment{ID: b.ID, Title: b.Title, Type: b.Type, Paths: b.Paths}
}

// Identify returns the run's name and prefixed identifier.
func (e *Exporter) Identify(run discovery.Run, root string) (name, id string) {
	name = run.Name(root)
	return name, e.Prefix + name
}

// Resolve picks the loss, MSE, and accuracy tags independently from the
// tags present in set.
func (e *Exporter) Resolve(set *series.Set) Resolution {
	present := set.Tags()
	var res Resolution
	res.Loss, _ = tags.Resolve(present, e.Loss)
	res.MSE, _ = tags.Resolve(present, e.MSE)
	res.Accuracy, _ = tags.Resolve(present, e.Accuracy)
	return res
}

// Build assembles the bundle for in without touching the filesystem.
func (e *Exporter) Build(in Input) (Bundle, error) {
	if in.Series == nil {
		return Bundle{}, fmt.Errorf("export %s: no series loaded", in.Run.Dir)
	}
	name, id := e.Identify(in.Run, in.Root)
	b := Bundle{
		Name:  name,
		ID:    id,
		Title: e.title(name, id),
		Type:  e.Type,
		Tags:  e.Resolve(in.Series),
	}
	if in.Series.HasWallTime {
		b.Date = FormatDate(in.Series.FirstWallTime, e.Location)
	}
	if e.Params != nil {
		if raw, ok := e.Params.Lookup(name); ok {
			b.Params = raw
		}
	}

	b.Loss = values(in.Series, b.Tags.Loss)
	b.MSE = values(in.Series, b.Tags.MSE)
	b.Accuracy = values(in.Series, b.Tags.Accuracy)
	if len(b.Accuracy) > 0 {
		b.MaxAccuracy = maxValue(b.Accuracy)
	}
	return b, nil
}

// Export builds the bundle for in and writes it into dir, which must exist.
func (e *Exporter) Export(ctx context.Context, dir string, in Input) (Bundle, error) {
	b, err := e.Build(in)
	if err != nil {
		return Bundle{}, err
	}
	logger := logging.WithContext(logging.WithRunID(ctx, b.ID), e.logger())
	e.logResolution(logger, b.Tags)

	if err := ctx.Err(); err != nil {
		return Bundle{}, err
	}
	paths, err := Write(dir, b)
	if err != nil {
		return Bundle{}, fmt.Errorf("export run %s: %w", b.ID, err)
	}
	b.Paths = paths
	logger.Debug("run artifacts written",
		logging.String("dir", dir),
		logging.Any("artifacts", paths.Kinds()),
	)
	return b, nil
}

func (e *Exporter) title(name, id string) string {
	if e.Titles != nil {
		if title, ok := e.Titles.Lookup(name); ok {
			return title
		}
	}
	return textutil.TitleFromID(id)
}

func (e *Exporter) logger() *slog.Logger {
	if e.Logger == nil {
		return logging.NewNop()
	}
	return e.Logger
}

func (e *Exporter) logResolution(logger *slog.Logger, res Resolution) {
	for _, role := range []struct {
		name, tag string
		prefs     tags.Preferences
	}{
		{"loss", res.Loss, e.Loss},
		{"mse", res.MSE, e.MSE},
		{"accuracy", res.Accuracy, e.Accuracy},
	} {
		result, reason := role.tag, "matched preference"
		if role.tag == "" {
			result, reason = "none", "no tag matched"
		}
		attrs := logging.DecisionAttrs(role.name+"_tag", result, reason)
		attrs = append(attrs, logging.String("preferences", role.prefs.String()))
		logger.Debug("metric tag resolved", logging.Args(attrs...)...)
	}
}

func values(set *series.Set, tag string) []float64 {
	if tag == "" {
		return nil
	}
	s, ok := set.Get(tag)
	if !ok || len(s) == 0 {
		return nil
	}
	return s.Values()
}

// maxValue keeps the first element unless a later one compares greater, so
// a leading NaN wins and later NaNs are skipped.
func maxValue(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

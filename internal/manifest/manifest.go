// Package manifest accumulates per-run summaries into the dashboard's root
// index, manifest.json.
package manifest

import (
	"fmt"
	"path"

	"tbexport/internal/fileutil"
)

// FileName is the manifest's name inside the output directory.
const FileName = "manifest.json"

// Artifact file names inside a run directory.
const (
	MetaFile    = "meta.json"
	ParamsFile  = "params.json"
	ScalarsFile = "scalars.json"
	LossFile    = "loss.csv"
	MSEFile     = "mse.csv"
)

// Paths lists the artifacts that exist for one run, relative to the output
// directory. Optional entries are empty when the file was not written.
type Paths struct {
	Meta    string `json:"meta"`
	Scalars string `json:"scalars"`
	Params  string `json:"params,omitempty"`
	LossTS  string `json:"loss_ts,omitempty"`
	MSETS   string `json:"mse_ts,omitempty"`
}

// Kinds returns the artifact kinds present, in manifest key order.
func (p Paths) Kinds() []string {
	var kinds []string
	for _, entry := range []struct {
		kind, value string
	}{
		{"meta", p.Meta},
		{"scalars", p.Scalars},
		{"params", p.Params},
		{"loss_ts", p.LossTS},
		{"mse_ts", p.MSETS},
	} {
		if entry.value != "" {
			kinds = append(kinds, entry.kind)
		}
	}
	return kinds
}

// RelPath joins a run id and an artifact file name the way manifest entries
// spell them, always with forward slashes.
func RelPath(id, file string) string {
	return path.Join(id, file)
}

// Experiment is one run's manifest entry.
type Experiment struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Type  string `json:"type"`
	Paths Paths  `json:"paths"`
}

// Manifest is the root index.
type Manifest struct {
	Experiments []Experiment `json:"experiments"`
}

// Builder collects experiments in the order they are added. It performs no
// deduplication or sorting and is not safe for concurrent use.
type Builder struct {
	experiments []Experiment
}

// NewBuilder returns a builder sized for n experiments.
func NewBuilder(n int) *Builder {
	return &Builder{experiments: make([]Experiment, 0, n)}
}

// Add appends one experiment.
func (b *Builder) Add(exp Experiment) {
	b.experiments = append(b.experiments, exp)
}

// Len reports how many experiments were added.
func (b *Builder) Len() int {
	return len(b.experiments)
}

// Manifest returns a snapshot of the accumulated index.
func (b *Builder) Manifest() Manifest {
	out := make([]Experiment, len(b.experiments))
	copy(out, b.experiments)
	return Manifest{Experiments: out}
}

// Write stores the manifest at path atomically.
func (b *Builder) Write(path string) error {
	if err := fileutil.WriteJSON(path, b.Manifest()); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

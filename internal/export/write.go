package export

import (
	"bytes"
	"fmt"
	"math"
	"path/filepath"

	"tbexport/internal/fileutil"
	"tbexport/internal/manifest"
	"tbexport/internal/textutil"
)

type metaDoc struct {
	Title string `json:"title"`
	Type  string `json:"type"`
	Date  string `json:"date,omitempty"`
}

type scalarsDoc struct {
	AccuracySeries []jsonFloat `json:"accuracy_series,omitempty"`
	MaxAccuracy    *jsonFloat  `json:"max_accuracy,omitempty"`
}

// jsonFloat encodes like textutil.FormatFloat. JSON has no spelling for NaN
// or infinities, so those become null.
type jsonFloat float64

func (f jsonFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return []byte(textutil.FormatFloat(v)), nil
}

// Write stores b's artifacts in dir and reports the ones present afterwards.
func Write(dir string, b Bundle) (Paths, error) {
	meta := metaDoc{Title: b.Title, Type: b.Type, Date: b.Date}
	if err := fileutil.WriteJSON(filepath.Join(dir, manifest.MetaFile), meta); err != nil {
		return Paths{}, err
	}

	if b.Params != nil {
		data, err := fileutil.IndentJSON(b.Params)
		if err != nil {
			return Paths{}, fmt.Errorf("format params for %s: %w", b.Name, err)
		}
		if err := fileutil.WriteFileAtomic(filepath.Join(dir, manifest.ParamsFile), data, 0o644); err != nil {
			return Paths{}, err
		}
	}

	var scalars scalarsDoc
	if len(b.Accuracy) > 0 {
		scalars.AccuracySeries = make([]jsonFloat, len(b.Accuracy))
		for i, v := range b.Accuracy {
			scalars.AccuracySeries[i] = jsonFloat(v)
		}
		maxAcc := jsonFloat(b.MaxAccuracy)
		scalars.MaxAccuracy = &maxAcc
	}
	if err := fileutil.WriteJSON(filepath.Join(dir, manifest.ScalarsFile), scalars); err != nil {
		return Paths{}, err
	}

	if len(b.Loss) > 0 {
		if err := writeValues(filepath.Join(dir, manifest.LossFile), b.Loss); err != nil {
			return Paths{}, err
		}
	}
	if len(b.MSE) > 0 {
		if err := writeValues(filepath.Join(dir, manifest.MSEFile), b.MSE); err != nil {
			return Paths{}, err
		}
	}
	return Inspect(dir, b.ID), nil
}

// Inspect reports which artifacts exist in dir, spelled relative to the
// output root under id.
func Inspect(dir, id string) Paths {
	present := func(file string) string {
		if fileutil.Exists(filepath.Join(dir, file)) {
			return manifest.RelPath(id, file)
		}
		return ""
	}
	return Paths{
		Meta:    present(manifest.MetaFile),
		Scalars: present(manifest.ScalarsFile),
		Params:  present(manifest.ParamsFile),
		LossTS:  present(manifest.LossFile),
		MSETS:   present(manifest.MSEFile),
	}
}

// writeValues writes one value per line with no header.
func writeValues(path string, vals []float64) error {
	var buf bytes.Buffer
	for _, v := range vals {
		buf.WriteString(textutil.FormatFloat(v))
		buf.WriteByte('\n')
	}
	return fileutil.WriteFileAtomic(path, buf.Bytes(), 0o644)
}

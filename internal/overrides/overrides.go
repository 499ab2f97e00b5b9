// Package overrides loads user-authored per-run display titles and
// hyperparameter objects. Both are keyed by the run's un-prefixed name.
package overrides

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// ErrMalformed reports override input that is not valid JSON of the expected shape.
var ErrMalformed = errors.New("malformed override JSON")

// Titles maps run names to display titles.
type Titles map[string]string

// Lookup returns the override title for name, if any.
func (t Titles) Lookup(name string) (string, bool) {
	title, ok := t[name]
	return title, ok
}

// Params maps run names to arbitrary JSON values written verbatim to params.json.
type Params map[string]json.RawMessage

// Lookup returns the params value for name, if any.
func (p Params) Lookup(name string) (json.RawMessage, bool) {
	raw, ok := p[name]
	return raw, ok
}

// ParseTitles decodes an inline JSON object of run name to title. Blank
// input yields an empty map.
func ParseTitles(raw string) (Titles, error) {
	data := trimJSON([]byte(raw))
	if len(data) == 0 {
		return Titles{}, nil
	}
	var titles Titles
	if err := json.Unmarshal(data, &titles); err != nil {
		return nil, fmt.Errorf("%w: title map: %v", ErrMalformed, err)
	}
	if titles == nil {
		titles = Titles{}
	}
	return titles, nil
}

// LoadParams reads a JSON object of run name to params from path. A blank
// path or a missing file yields an empty map; the latter is logged.
func LoadParams(path string, logger *slog.Logger) (Params, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Params{}, nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn("params file not found; exporting without params",
				slog.String("path", path),
				slog.String("event_type", "params_missing"),
			)
			return Params{}, nil
		}
		return nil, fmt.Errorf("read params file %s: %w", path, err)
	}
	data = trimJSON(data)
	if len(data) == 0 {
		return Params{}, nil
	}
	var params Params
	if err := json.Unmarshal(data, &params); err != nil {
		return nil, fmt.Errorf("%w: params file %s: %v", ErrMalformed, path, err)
	}
	if params == nil {
		params = Params{}
	}
	logger.Info("loaded run params", slog.String("path", path), slog.Int("count", len(params)))
	return params, nil
}

func trimJSON(data []byte) []byte {
	data = bytes.TrimPrefix(data, []byte("\xEF\xBB\xBF"))
	return bytes.TrimSpace(data)
}

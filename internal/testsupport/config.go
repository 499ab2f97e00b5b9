package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"tbexport/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The log directory exists but holds no runs; the output directory does not
// exist yet.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.LogDir = filepath.Join(base, "runs")
	cfgVal.Paths.OutDir = filepath.Join(base, "out")
	cfgVal.Export.Workers = 2
	cfgVal.Export.Timezone = "UTC"
	if err := os.MkdirAll(cfgVal.Paths.LogDir, 0o755); err != nil {
		t.Fatalf("mkdir log dir: %v", err)
	}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithRunPrefix sets the run identifier prefix.
func WithRunPrefix(prefix string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Export.RunPrefix = prefix
	}
}

// WithWorkers sets the export worker count.
func WithWorkers(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Export.Workers = n
	}
}

// WithTitleMap sets the inline title override JSON.
func WithTitleMap(raw string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Export.TitleMap = raw
	}
}

// WithParams writes params as a JSON file next to the log directory and
// points the config at it.
func WithParams(params map[string]any) ConfigOption {
	return func(b *configBuilder) {
		data, err := json.Marshal(params)
		if err != nil {
			b.t.Fatalf("marshal params: %v", err)
		}
		path := filepath.Join(b.baseDir, "params.json")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			b.t.Fatalf("write params: %v", err)
		}
		b.cfg.Export.ParamsFile = path
	}
}

// WithParamsFile writes raw as the params file verbatim.
func WithParamsFile(raw string) ConfigOption {
	return func(b *configBuilder) {
		path := filepath.Join(b.baseDir, "params.json")
		if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
			b.t.Fatalf("write params: %v", err)
		}
		b.cfg.Export.ParamsFile = path
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.LogDir)
}

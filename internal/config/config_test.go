package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"tbexport/internal/config"
	"tbexport/internal/tags"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("TBEXPORT_LOGDIR", "")
	t.Setenv("TBEXPORT_OUTDIR", "")
	t.Setenv("TBEXPORT_RUN_PREFIX", "")
}

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	clearEnv(t)
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != filepath.Join(tempHome, ".config", "tbexport", "config.toml") {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if !filepath.IsAbs(cfg.Paths.OutDir) || !strings.HasSuffix(cfg.Paths.OutDir, filepath.Join("public", "master-data")) {
		t.Fatalf("unexpected out dir: %q", cfg.Paths.OutDir)
	}
	if cfg.Paths.LogDir != "" {
		t.Fatalf("expected empty log dir, got %q", cfg.Paths.LogDir)
	}
	if cfg.Export.DefaultType != "function_approx" {
		t.Fatalf("unexpected default type %q", cfg.Export.DefaultType)
	}
	if cfg.Export.Workers < 1 {
		t.Fatalf("expected positive worker count, got %d", cfg.Export.Workers)
	}
	if cfg.LossPreferences().String() != tags.DefaultLoss.String() {
		t.Fatalf("unexpected loss preferences %v", cfg.LossPreferences())
	}
	if err := cfg.ValidateForExport(); err == nil || !strings.Contains(err.Error(), "--logdir") {
		t.Fatalf("expected missing log dir error, got %v", err)
	}
}

func TestLoadCustomPath(t *testing.T) {
	clearEnv(t)
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	configPath := filepath.Join(t.TempDir(), "tbexport.toml")

	type payload struct {
		Paths struct {
			LogDir string `toml:"log_dir"`
			OutDir string `toml:"out_dir"`
		} `toml:"paths"`
		Export struct {
			RunPrefix string `toml:"run_prefix"`
			Workers   int    `toml:"workers"`
			Timezone  string `toml:"timezone"`
		} `toml:"export"`
		Tags struct {
			Loss []string `toml:"loss"`
		} `toml:"tags"`
		Logging struct {
			Format string `toml:"format"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Paths.LogDir = "~/runs"
	custom.Paths.OutDir = "~/site/data"
	custom.Export.RunPrefix = "exp1_"
	custom.Export.Workers = 3
	custom.Export.Timezone = "UTC"
	custom.Tags.Loss = []string{" Train/Loss ", "", "LOSS"}
	custom.Logging.Format = "JSON"

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected custom config to be used, got %q exists=%v", resolved, exists)
	}
	if cfg.Paths.LogDir != filepath.Join(tempHome, "runs") {
		t.Fatalf("unexpected log dir %q", cfg.Paths.LogDir)
	}
	if cfg.Paths.OutDir != filepath.Join(tempHome, "site", "data") {
		t.Fatalf("unexpected out dir %q", cfg.Paths.OutDir)
	}
	if cfg.Export.RunPrefix != "exp1_" || cfg.Export.Workers != 3 {
		t.Fatalf("unexpected export section %+v", cfg.Export)
	}
	if got := cfg.LossPreferences().String(); got != "train/loss,loss" {
		t.Fatalf("unexpected loss preferences %q", got)
	}
	if cfg.MSEPreferences().String() != tags.DefaultMSE.String() {
		t.Fatalf("expected MSE defaults to survive partial file, got %v", cfg.MSEPreferences())
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected lowercased format, got %q", cfg.Logging.Format)
	}
	loc, err := cfg.Location()
	if err != nil || loc.String() != "UTC" {
		t.Fatalf("unexpected location %v (%v)", loc, err)
	}
	if err := cfg.ValidateForExport(); err != nil {
		t.Fatalf("ValidateForExport: %v", err)
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())
	configPath := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(configPath, []byte("[paths]\nlogdir = \"x\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected unknown field to be rejected")
	}
}

func TestEnvironmentFallbacks(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	logDir := t.TempDir()
	outDir := t.TempDir()
	t.Setenv("TBEXPORT_LOGDIR", logDir)
	t.Setenv("TBEXPORT_OUTDIR", outDir)
	t.Setenv("TBEXPORT_RUN_PREFIX", "nightly_")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.LogDir != logDir {
		t.Fatalf("expected log dir from env, got %q", cfg.Paths.LogDir)
	}
	if cfg.Paths.OutDir != outDir {
		t.Fatalf("expected out dir from env, got %q", cfg.Paths.OutDir)
	}
	if cfg.Export.RunPrefix != "nightly_" {
		t.Fatalf("expected prefix from env, got %q", cfg.Export.RunPrefix)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if cfg.Export.DefaultType != "function_approx" {
		t.Fatalf("unexpected sample default type %q", cfg.Export.DefaultType)
	}
	if strings.Join(cfg.Tags.Accuracy, ",") != tags.DefaultAccuracy.String() {
		t.Fatalf("sample accuracy tags drifted from defaults: %v", cfg.Tags.Accuracy)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cases := map[string]func(*config.Config){
		"workers zero":     func(c *config.Config) { c.Export.Workers = 0 },
		"workers too high": func(c *config.Config) { c.Export.Workers = 1000 },
		"prefix separator": func(c *config.Config) { c.Export.RunPrefix = "a/b" },
		"bad timezone":     func(c *config.Config) { c.Export.Timezone = "Mars/Olympus" },
		"bad format":       func(c *config.Config) { c.Logging.Format = "xml" },
		"bad level":        func(c *config.Config) { c.Logging.Level = "loud" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := config.Default()
			mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

package config

import (
	"fmt"
	"os"
	"strings"
)

// applyEnvironment fills settings the config file left unset from the
// TBEXPORT_* environment variables.
func (c *Config) applyEnvironment() {
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = strings.TrimSpace(os.Getenv(envLogDir))
	}
	if value := strings.TrimSpace(os.Getenv(envOutDir)); value != "" && c.Paths.OutDir == defaultOutDir {
		c.Paths.OutDir = value
	}
	if c.Export.RunPrefix == "" {
		c.Export.RunPrefix = strings.TrimSpace(os.Getenv(envRunPrefix))
	}
}

// Normalize expands paths and canonicalizes tag preferences and logging
// settings. Call it again after overriding fields from flags.
func (c *Config) Normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeExport()
	c.normalizeTags()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if strings.TrimSpace(c.Paths.OutDir) == "" {
		c.Paths.OutDir = defaultOutDir
	}

	var err error
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.OutDir, err = expandPath(strings.TrimSpace(c.Paths.OutDir)); err != nil {
		return fmt.Errorf("paths.out_dir: %w", err)
	}
	if c.Logging.File, err = expandPath(strings.TrimSpace(c.Logging.File)); err != nil {
		return fmt.Errorf("logging.file: %w", err)
	}
	if c.Export.ParamsFile, err = expandPath(strings.TrimSpace(c.Export.ParamsFile)); err != nil {
		return fmt.Errorf("export.params_file: %w", err)
	}
	return nil
}

func (c *Config) normalizeExport() {
	c.Export.DefaultType = strings.TrimSpace(c.Export.DefaultType)
	if c.Export.DefaultType == "" {
		c.Export.DefaultType = defaultExportType
	}
	if c.Export.Workers <= 0 {
		c.Export.Workers = defaultWorkers()
	}
	c.Export.Timezone = strings.TrimSpace(c.Export.Timezone)
	c.Export.TitleMap = strings.TrimSpace(c.Export.TitleMap)
}

func (c *Config) normalizeTags() {
	c.Tags.Loss = normalizePreferences(c.Tags.Loss)
	c.Tags.MSE = normalizePreferences(c.Tags.MSE)
	c.Tags.Accuracy = normalizePreferences(c.Tags.Accuracy)
}

func normalizePreferences(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.ToLower(strings.TrimSpace(value))
		if value != "" {
			out = append(out, value)
		}
	}
	return out
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateExport(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

// ValidateForExport additionally requires the inputs an export run needs.
func (c *Config) ValidateForExport() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = defaultConfigPath
		}
		return fmt.Errorf("paths.log_dir is required. Pass --logdir, set %s, or edit %s (create with 'tbexport config init')", envLogDir, defaultPath)
	}
	if strings.TrimSpace(c.Paths.OutDir) == "" {
		return errors.New("paths.out_dir must be set")
	}
	return nil
}

func (c *Config) validateExport() error {
	if c.Export.Workers < 1 {
		return errors.New("export.workers must be at least 1")
	}
	if c.Export.Workers > maxExportWorkers {
		return fmt.Errorf("export.workers must be at most %d", maxExportWorkers)
	}
	if strings.ContainsAny(c.Export.RunPrefix, `/\`) {
		return errors.New("export.run_prefix must not contain path separators")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}

package config

import (
	"runtime"

	"tbexport/internal/tags"
)

const (
	defaultConfigPath = "~/.config/tbexport/config.toml"
	projectConfigName = "tbexport.toml"
	defaultOutDir     = "public/master-data"
	defaultExportType = "function_approx"
	defaultLogFormat  = "console"
	defaultLogLevel   = "info"
	envLogDir         = "TBEXPORT_LOGDIR"
	envOutDir         = "TBEXPORT_OUTDIR"
	envRunPrefix      = "TBEXPORT_RUN_PREFIX"
	maxExportWorkers  = 64
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutDir: defaultOutDir,
		},
		Export: Export{
			DefaultType: defaultExportType,
			Workers:     defaultWorkers(),
		},
		Tags: Tags{
			Loss:     append([]string(nil), tags.DefaultLoss...),
			MSE:      append([]string(nil), tags.DefaultMSE...),
			Accuracy: append([]string(nil), tags.DefaultAccuracy...),
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

func defaultWorkers() int {
	return min(max(runtime.NumCPU(), 1), maxExportWorkers)
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tbexport/internal/config"
	"tbexport/internal/pipeline"
	"tbexport/internal/tags"
)

// runFlags are the input-selection flags shared by export and runs.
type runFlags struct {
	logDir    string
	runPrefix string
	lossTags  string
	mseTags   string
	accTags   string
	workers   int
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.logDir, "logdir", "", "TensorBoard log directory to scan for runs")
	cmd.Flags().StringVar(&f.runPrefix, "run-prefix", "", "Prefix prepended to every run identifier")
	cmd.Flags().StringVar(&f.lossTags, "loss-tags", tags.DefaultLoss.String(), "Comma list of preferred loss tags")
	cmd.Flags().StringVar(&f.mseTags, "mse-tags", tags.DefaultMSE.String(), "Comma list of preferred MSE tags")
	cmd.Flags().StringVar(&f.accTags, "acc-tags", tags.DefaultAccuracy.String(), "Comma list of preferred accuracy tags")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "Runs processed in parallel (default: CPU count)")
}

// apply copies explicitly set flags over cfg.
func (f *runFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("logdir") {
		cfg.Paths.LogDir = f.logDir
	}
	if flags.Changed("run-prefix") {
		cfg.Export.RunPrefix = f.runPrefix
	}
	if flags.Changed("loss-tags") {
		cfg.Tags.Loss = tags.ParsePreferences(f.lossTags)
	}
	if flags.Changed("mse-tags") {
		cfg.Tags.MSE = tags.ParsePreferences(f.mseTags)
	}
	if flags.Changed("acc-tags") {
		cfg.Tags.Accuracy = tags.ParsePreferences(f.accTags)
	}
	if flags.Changed("workers") {
		cfg.Export.Workers = f.workers
	}
}

func newExportCommand(ctx *commandContext) *cobra.Command {
	var shared runFlags
	var outDir string
	var defaultType string
	var titleMap string
	var paramsFile string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every run under the log directory",
		Long: `Export scans --logdir for run directories, writes meta.json, scalars.json,
and optional params.json, loss.csv, and mse.csv for each run under --outdir,
and indexes them in manifest.json. Nothing is replaced unless every run
exports successfully. Concurrent exports to the same --outdir are
rejected through a lock file named after it with a .lock suffix.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cfg := *base
			shared.apply(cmd, &cfg)
			flags := cmd.Flags()
			if flags.Changed("outdir") {
				cfg.Paths.OutDir = outDir
			}
			if flags.Changed("default-type") {
				cfg.Export.DefaultType = defaultType
			}
			if flags.Changed("title-map") {
				cfg.Export.TitleMap = titleMap
			}
			if flags.Changed("params") {
				cfg.Export.ParamsFile = paramsFile
			}
			if err := cfg.Normalize(); err != nil {
				return err
			}
			if err := cfg.ValidateForExport(); err != nil {
				return err
			}

			logger, err := ctx.logger()
			if err != nil {
				return err
			}
			result, err := pipeline.NewRunner(&cfg, logger).Run(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d runs to %s\n", len(result.Manifest.Experiments), result.OutDir)
			return nil
		},
	}

	shared.register(cmd)
	cmd.Flags().StringVar(&outDir, "outdir", "", "Output directory (default public/master-data)")
	cmd.Flags().StringVar(&defaultType, "default-type", "", "Experiment type written to meta.json (default function_approx)")
	cmd.Flags().StringVar(&titleMap, "title-map", "", "JSON object mapping run names to titles")
	cmd.Flags().StringVar(&paramsFile, "params", "", "JSON file mapping run names to params objects")
	return cmd
}

package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"tbexport/internal/pipeline"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var shared runFlags
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List discovered runs and the tags an export would use",
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cfg := *base
			shared.apply(cmd, &cfg)
			if err := cfg.Normalize(); err != nil {
				return err
			}

			logger, err := ctx.logger()
			if err != nil {
				return err
			}
			summaries, err := pipeline.NewRunner(&cfg, logger).Inspect(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, summaries)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderRuns(summaries, shouldColorize(out)))
			return nil
		},
	}

	shared.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	return cmd
}

func renderRuns(summaries []pipeline.RunSummary, colorize bool) string {
	headers := []string{"ID", "Tags", "Events", "Date", "Loss", "MSE", "Accuracy"}
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{
			s.ID,
			strconv.Itoa(len(s.Tags)),
			strconv.Itoa(s.Events),
			orDash(s.Date),
			orDash(s.Loss),
			orDash(s.MSE),
			orDash(s.Accuracy),
		})
	}
	aligns := []columnAlignment{alignLeft, alignRight, alignRight}
	return renderTable(headers, rows, aligns, colorize)
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}

package cmd

import (
	"fmt"

	"github.com/huangsam/rcqm/internal/contract"
	"github.com/huangsam/rcqm/internal/report"
	"github.com/huangsam/rcqm/schema"
	"github.com/spf13/cobra"
)

// reportCmd reads the cumulative metric reports.
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Inspect the cumulative metric reports",
	Long: `Read the JSON reports written by metric runs.

Each metric keeps one document in <report-dir>/<metric>.json that maps a file
path to every entry ever recorded for it, oldest first.

Subcommands:
  show   - List the files of a report, or the history of one file
  status - Show every report file with its size and entry counts`,
}

// reportShowCmd lists the files of a report or the entries of one file.
var reportShowCmd = &cobra.Command{
	Use:   "show <metric> [path]",
	Short: "List the files of a metric report or the history of one file",
	Long: `Without a path, print one row per file with its number of entries and latest result.
With a path, print every entry recorded for that file.

Examples:
  # Files in the tags report
  rcqm report show tags

  # Documentation history of one file as JSON
  rcqm report show documentation lib/foo.rb --output json`,
	Args:    cobra.RangeArgs(1, 2),
	PreRunE: noTargetsSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		metric, err := schema.ParseMetricName(args[0])
		if err != nil {
			contract.LogFatal("Invalid metric", err)
		}
		store := report.NewStore(cfg.ReportDir)

		if len(args) == 2 {
			entries, err := store.History(metric, args[1])
			if err != nil {
				contract.LogFatal("Failed to read report", err)
			}
			if len(entries) == 0 {
				contract.LogFatal("Failed to read report", fmt.Errorf("no entries for %s in %s", args[1], store.Path(metric)))
			}
			if err := out.WriteReportHistory(metric, args[1], entries, cfg); err != nil {
				contract.LogFatal("Error writing report history", err)
			}
			return
		}

		files, err := store.Summaries(metric)
		if err != nil {
			contract.LogFatal("Failed to read report", err)
		}
		if err := out.WriteReportFiles(metric, files, cfg); err != nil {
			contract.LogFatal("Error writing report files", err)
		}
	},
}

// reportStatusCmd describes every report file.
var reportStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display the report file of every metric",
	Long: `Show where each metric report lives, whether it exists, how many files and
entries it holds, its size and when it was last written.

Examples:
  rcqm report status
  rcqm report status --report-dir build/reports`,
	PreRunE: noTargetsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		statuses, err := report.NewStore(cfg.ReportDir).Status()
		if err != nil {
			contract.LogFatal("Failed to read report status", err)
		}
		if err := out.WriteReportStatus(statuses, cfg); err != nil {
			contract.LogFatal("Error writing report status", err)
		}
	},
}

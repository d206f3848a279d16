package cmd

import (
	"context"
	"os"

	"github.com/huangsam/rcqm/core"
	"github.com/huangsam/rcqm/core/metrics"
	"github.com/huangsam/rcqm/internal/contract"
	"github.com/huangsam/rcqm/internal/outwriter"
	"github.com/huangsam/rcqm/internal/report"
	"github.com/huangsam/rcqm/schema"
	"github.com/spf13/cobra"
)

// progressWriter prints per-file progress on stdout for text output. Machine
// readable output keeps stdout for the summary, so progress moves to stderr.
func progressWriter() *outwriter.RunWriter {
	if cfg.Output == schema.TextOut {
		return outwriter.NewRunWriter(os.Stdout, os.Stderr, cfg.UseColors)
	}
	return outwriter.NewRunWriter(os.Stderr, os.Stderr, false)
}

// executeMetrics runs the named metrics in order and records their aggregate status.
func executeMetrics(ctx context.Context, names []schema.MetricName, printSummary bool) {
	var toolCache contract.CacheStore
	var history contract.HistoryStore
	if cacheManager != nil {
		toolCache = cacheManager.GetToolStore()
		history = cacheManager.GetHistoryStore()
	}

	selected := make([]contract.Metric, 0, len(names))
	for _, name := range names {
		metric, err := metrics.New(name, cfg, nil, toolCache)
		if err != nil {
			contract.LogFatal("Invalid metric", err)
		}
		selected = append(selected, metric)
	}

	deps := core.Deps{
		Reports: report.NewStore(cfg.ReportDir),
		History: history,
		Writer:  progressWriter(),
	}
	summaries, status, err := core.RunMetrics(ctx, cfg, deps, selected...)
	exitStatus |= status
	if err != nil {
		contract.LogFatal("Metric run failed", err)
	}

	if printSummary || cfg.Output != schema.TextOut {
		if err := out.WriteRunSummaries(summaries, cfg); err != nil {
			contract.LogFatal("Error writing run summary", err)
		}
	}
}

// documentationCmd grades the documentation of each file with an external tool.
var documentationCmd = &cobra.Command{
	Use:     "documentation [targets...]",
	Aliases: []string{"doc"},
	Short:   "Grade the documentation of each source file",
	Long: `Run the documentation tool (inch by default) on every eligible file and
bucket its objects into grades A, B, C and U.

A file fails when it has an object in one of the --doc-fail-grades (C and U by default).
Every evaluated file gets a new entry in <report-dir>/documentation.json.

Targets default to lib, bin, app, test, spec and feature when none are given.

Examples:
  # Grade the default targets
  rcqm documentation

  # Grade one directory and fail only on undocumented objects
  rcqm documentation lib --doc-fail-grades U

  # Give the tool at most ten seconds per file
  rcqm documentation --doc-tool-timeout 10s`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		executeMetrics(rootCtx, []schema.MetricName{schema.DocumentationMetric}, false)
	},
}

// tagsCmd lists marker tags such as TODO and FIXME.
var tagsCmd = &cobra.Command{
	Use:   "tags [targets...]",
	Short: "Find marker tags such as TODO and FIXME",
	Long: `Scan every eligible file line by line for the configured tags.

Tags are matched case-insensitively as regular expressions. Each match is printed
as <file>(<line>): <text> and the file's matches are appended to <report-dir>/tags.json.

Tags are informational unless --tags-fail-on-match is set.

Examples:
  # Default tags TODO and FIXME
  rcqm tags

  # Custom tags, failing the run on any match
  rcqm tags app --tags "TODO,HACK,XXX" --tags-fail-on-match

  # Skip generated code
  rcqm tags --exclude lib/generated`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		executeMetrics(rootCtx, []schema.MetricName{schema.TagsMetric}, false)
	},
}

// checkCmd focused on CI/CD policy enforcement.
var checkCmd = &cobra.Command{
	Use:   "check [targets...]",
	Short: "Run every metric and exit non-zero on any failure",
	Long: `Run all metrics over the same targets and print one summary row per metric.

The process exit code is the bitwise OR of every file status:
  0 - all files passed
  1 - a metric policy rejected at least one file
  2 - at least one file could not be evaluated
  3 - both

Examples:
  # Gate a pull request
  rcqm check

  # Machine readable summary, progress on stderr
  rcqm check --output json > rcqm-summary.json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		executeMetrics(rootCtx, schema.AllMetrics, true)
	},
}

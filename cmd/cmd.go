// Package cmd defines the command-line interface for rcqm.
package cmd

import (
	"github.com/huangsam/rcqm/internal/contract"
	"github.com/huangsam/rcqm/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(documentationCmd)
	rootCmd.AddCommand(tagsCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the report subcommands to the parent report command
	reportCmd.AddCommand(reportShowCmd)
	reportCmd.AddCommand(reportStatusCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyMigrateCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("files", "", "Comma-separated files or directories to analyze (default lib,bin,app,test,spec,feature)")
	rootCmd.PersistentFlags().String("exclude", "", "Comma-separated paths to skip (exact match after cleaning)")
	rootCmd.PersistentFlags().String("suffix", "", "Eligible file suffix (default .rb)")
	rootCmd.PersistentFlags().Bool("gitignore", false, "Also skip paths matched by ./.gitignore")
	rootCmd.PersistentFlags().String("report-dir", contract.DefaultReportDir, "Directory of the cumulative JSON reports")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("history-backend", string(schema.NoneBackend), "Run history backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("history-db-connect", "", "Database connection string for run history (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.NoneBackend), "Tool output cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for the tool output cache")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	rootCmd.PersistentFlags().String("tags", "TODO,FIXME", "Comma-separated tags, matched case-insensitively as regular expressions")
	rootCmd.PersistentFlags().Bool("tags-fail-on-match", false, "Fail files that contain a tag")
	rootCmd.PersistentFlags().String("doc-tool", contract.DefaultDocTool, "Documentation tool executable")
	rootCmd.PersistentFlags().String("doc-tool-timeout", "", "Per-file documentation tool timeout (e.g., 30s; empty means none)")
	rootCmd.PersistentFlags().String("doc-fail-grades", "C,U", "Comma-separated documentation grades that fail a file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of historyMigrateCmd to Viper
	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(historyMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history migrate flags", err)
	}
}

package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/rcqm/internal/contract"
	"github.com/huangsam/rcqm/internal/iocache"
	"github.com/huangsam/rcqm/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// historySetup loads minimal configuration needed for history operations.
// This is used by commands that need history access without full shared setup.
func historySetup() error {
	backend, connStr, err := storeSetup("history")
	if err != nil {
		return err
	}

	// Initialize stores with the loaded config (no tool cache for history commands)
	if err := iocache.InitStores(schema.NoneBackend, "", backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize history: %w", err)
	}

	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	return nil
}

// historySetupWrapper wraps historySetup to provide PreRunE for history commands.
func historySetupWrapper(_ *cobra.Command, _ []string) error {
	return historySetup()
}

// historyMigrateSetup loads minimal configuration needed for migrate operations.
// It does NOT initialize stores or create tables, so migrations can run on a fresh database.
func historyMigrateSetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := storeSetup("history")
	if err != nil {
		return err
	}

	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetHistoryDBFilePath()
	}

	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	return nil
}

// historyCmd focused on run history management.
//
// Note: History subcommands use minimal initialization (historySetup) instead of
// the full sharedSetup used by metric commands. Target and tag settings play no role here.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage the run history store and exports",
	Long: `Manage the SQL mirror of metric runs.

When a history backend is configured, every metric run stores:
- Run metadata (metric, start and end time, duration, configuration, exit status)
- One outcome per evaluated file (status, item count, report entry)

The JSON reports stay the durable record; the history store makes runs queryable.

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled, the default)

Subcommands:
  status  - Show history statistics
  export  - Export runs and outcomes to Parquet
  clear   - Remove all history data
  migrate - Run database schema migrations

Examples:
  # Record runs in a local SQLite file
  RCQM_HISTORY_BACKEND=sqlite rcqm check

  # Export for analysis in pandas/DuckDB
  rcqm history export --history-backend sqlite --output-file rcqm-history`,
}

// historyClearCmd clears the history data.
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all run history data",
	Long: `Delete every stored run and file outcome.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the history tables

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  rcqm history export --output-file backup
  rcqm history clear`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		iocache.CloseStores()
		if err := iocache.ClearHistory(cfg.HistoryBackend, sqliteFilePath(cfg.HistoryDBConnect, contract.GetHistoryDBFilePath()), cfg.HistoryDBConnect); err != nil {
			contract.LogFatal("Failed to clear history data", err)
		}
		fmt.Println("History data cleared successfully.")
	},
}

// historyStatusCmd shows history status.
var historyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display history statistics and connection details",
	Long: `Show detailed information about the run history store.

Displays:
- Backend type and connection status
- Total number of runs stored
- Last and oldest run timestamps
- Total files checked across all runs
- Database table sizes

Examples:
  rcqm history status
  rcqm history status --output json`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := iocache.Manager.GetHistoryStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get history status", err)
		}
		if err := out.WriteHistoryStatus(status, cfg); err != nil {
			contract.LogFatal("Error writing history status", err)
		}
	},
}

// historyExportCmd exports history data to Parquet files.
var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export run history to Parquet for BI tools and analytics",
	Long: `Export all stored runs and file outcomes to Parquet.

Writes two files next to the given prefix:
- <output-file>.runs.parquet
- <output-file>.file_outcomes.parquet

Requires: --output-file parameter

Examples:
  rcqm history export --output-file rcqm-history
  duckdb -c "SELECT metric, avg(run_duration_ms) FROM 'rcqm-history.runs.parquet' GROUP BY 1"`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteHistoryExport(iocache.Manager.GetHistoryStore(), cfg.OutputFile, os.Stdout); err != nil {
			contract.LogFatal("Failed to export history data", err)
		}
	},
}

// historyMigrateCmd runs database migrations for the history store.
var historyMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the run history store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  rcqm history migrate --history-backend sqlite

  # Migrate to specific version
  rcqm history migrate --target-version 1

  # Rollback to initial state
  rcqm history migrate --target-version 0`,
	PreRunE: historyMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateHistory(cfg.HistoryBackend, cfg.HistoryDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}

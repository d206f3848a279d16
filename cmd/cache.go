package cmd

import (
	"fmt"

	"github.com/huangsam/rcqm/internal/contract"
	"github.com/huangsam/rcqm/internal/iocache"
	"github.com/huangsam/rcqm/schema"
	"github.com/spf13/cobra"
)

// cacheSetup loads minimal configuration needed for cache operations.
// This is used by commands that need cache access without full shared setup.
func cacheSetup() error {
	backend, connStr, err := storeSetup("cache")
	if err != nil {
		return err
	}

	// Initialize caching with the loaded config (no history tracking for cache commands)
	if err := iocache.InitStores(backend, connStr, schema.NoneBackend, ""); err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}

	cfg.CacheBackend = backend
	cfg.CacheDBConnect = connStr
	return nil
}

// cacheSetupWrapper wraps cacheSetup to provide PreRunE for cache commands.
func cacheSetupWrapper(_ *cobra.Command, _ []string) error {
	return cacheSetup()
}

// cacheCmd focused on cache management.
//
// Note: Cache subcommands use minimal initialization (cacheSetup) instead of
// the full sharedSetup used by metric commands.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the documentation tool output cache",
	Long: `Manage the cache of documentation tool output.

rcqm keys each tool invocation by tool name and file content, so unchanged files
are graded again without running the tool.

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled, the default)

Subcommands:
  status - Show cache statistics and connection info
  clear  - Remove all cached data

Examples:
  # Cache tool output in a local SQLite file
  RCQM_CACHE_BACKEND=sqlite rcqm documentation

  # Check cache status
  rcqm cache status --cache-backend sqlite`,
}

// cacheClearCmd clears the cache.
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached tool output",
	Long: `Delete all cached documentation tool output from the configured backend.

Use this when:
- The documentation tool was upgraded
- Cache may be stale or corrupted

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the cache table

Examples:
  # Clear the SQLite cache
  rcqm cache clear --cache-backend sqlite

  # Clear a MySQL cache (set connection string via env variable)
  RCQM_CACHE_BACKEND=mysql RCQM_CACHE_DB_CONNECT="..." rcqm cache clear`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		iocache.CloseStores()
		if err := iocache.ClearCache(cfg.CacheBackend, sqliteFilePath(cfg.CacheDBConnect, contract.GetCacheDBFilePath()), cfg.CacheDBConnect); err != nil {
			contract.LogFatal("Failed to clear cache", err)
		}
		fmt.Println("Cache cleared successfully.")
	},
}

// cacheStatusCmd shows cache status.
var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display cache statistics and connection details",
	Long: `Show detailed information about the tool output cache.

Displays:
- Backend type and connection status
- Total number of cached entries
- Last and oldest cache entry timestamps
- Cache table size

Examples:
  rcqm cache status`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := iocache.Manager.GetToolStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get cache status", err)
		}
		if err := out.WriteCacheStatus(status, cfg); err != nil {
			contract.LogFatal("Error writing cache status", err)
		}
	},
}

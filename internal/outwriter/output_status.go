package outwriter

import (
	"fmt"
	"io"
	"sort"

	"github.com/huangsam/rcqm/internal/contract"
	"github.com/huangsam/rcqm/schema"
)

// WriteCacheStatus outputs tool output cache status information.
func WriteCacheStatus(status schema.CacheStatus, cfg *contract.Config) error {
	if cfg.Output == schema.JSONOut {
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, status)
		}, "Wrote JSON")
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeCacheStatusText(w, status)
	}, "Wrote status")
}

func writeCacheStatusText(w io.Writer, status schema.CacheStatus) error {
	lines := []string{
		fmt.Sprintf("Cache Backend: %s", status.Backend),
		fmt.Sprintf("Connected: %t", status.Connected),
	}
	if status.Connected {
		lines = append(lines, fmt.Sprintf("Total Entries: %d", status.TotalEntries))
		if status.TotalEntries > 0 {
			lines = append(lines,
				fmt.Sprintf("Last Entry: %s", formatTime(status.LastEntryTime)),
				fmt.Sprintf("Oldest Entry: %s", formatTime(status.OldestEntryTime)),
			)
		}
		lines = append(lines, fmt.Sprintf("Table Size: %d bytes", status.TableSizeBytes))
	}
	return writeLines(w, lines)
}

// WriteHistoryStatus outputs run history store status information.
func WriteHistoryStatus(status schema.HistoryStatus, cfg *contract.Config) error {
	if cfg.Output == schema.JSONOut {
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, status)
		}, "Wrote JSON")
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeHistoryStatusText(w, status)
	}, "Wrote status")
}

func writeHistoryStatusText(w io.Writer, status schema.HistoryStatus) error {
	lines := []string{
		fmt.Sprintf("History Backend: %s", status.Backend),
		fmt.Sprintf("Connected: %t", status.Connected),
	}
	if status.Connected {
		lines = append(lines, fmt.Sprintf("Total Runs: %d", status.TotalRuns))
		if status.TotalRuns > 0 {
			lines = append(lines,
				fmt.Sprintf("Last Run ID: %d", status.LastRunID),
				fmt.Sprintf("Last Run: %s", formatTime(status.LastRunTime)),
				fmt.Sprintf("Oldest Run: %s", formatTime(status.OldestRunTime)),
				fmt.Sprintf("Total Files Checked: %d", status.TotalFilesChecked),
			)
		}
		lines = append(lines, "Table Sizes:")
		tables := make([]string, 0, len(status.TableSizes))
		for table := range status.TableSizes {
			tables = append(tables, table)
		}
		sort.Strings(tables)
		for _, table := range tables {
			lines = append(lines, fmt.Sprintf("  %s: %d rows", table, status.TableSizes[table]))
		}
	}
	return writeLines(w, lines)
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

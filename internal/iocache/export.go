package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/rcqm/internal/contract"
	"github.com/huangsam/rcqm/internal/parquet"
)

// ExportPaths returns the Parquet files written for an export prefix.
func ExportPaths(outputFile string) (runs, outcomes string) {
	return outputFile + ".runs.parquet", outputFile + ".file_outcomes.parquet"
}

// ExecuteHistoryExport writes the run history held by store to Parquet files
// next to outputFile and reports progress on w.
func ExecuteHistoryExport(store contract.HistoryStore, outputFile string, w io.Writer) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("history store is not initialized")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no run history found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total file records: %d\n", status.TableSizes[fileOutcomesTable])

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}
	outcomes, err := store.GetAllFileOutcomes()
	if err != nil {
		return fmt.Errorf("failed to retrieve file outcomes: %w", err)
	}

	runsFile, outcomesFile := ExportPaths(outputFile)

	parquetRuns := parquet.ConvertRunRecords(runs)
	if err := parquet.WriteRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d runs to: %s\n", len(parquetRuns), runsFile)

	parquetOutcomes := parquet.ConvertFileOutcomeRecords(outcomes)
	if err := parquet.WriteFileOutcomesParquet(parquetOutcomes, outcomesFile); err != nil {
		return fmt.Errorf("failed to write file outcomes: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d file outcomes to: %s\n", len(parquetOutcomes), outcomesFile)

	return nil
}

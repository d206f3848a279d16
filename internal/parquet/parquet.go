// Package parquet provides data structures and functions for exporting rcqm
// run history to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/rcqm/schema"
	"github.com/parquet-go/parquet-go"
)

// Run represents a single metric run with metadata.
// This struct maps to the rcqm_runs database table.
type Run struct {
	// RunID is the unique identifier for this run
	RunID int64 `parquet:"run_id,snappy"`

	// Metric names the metric that was run
	Metric string `parquet:"metric,snappy,dict"`

	// StartTime is when the run began
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	// TotalFiles is the number of files evaluated in this run
	TotalFiles int32 `parquet:"total_files,snappy"`

	// ExitStatus is the aggregated exit status (nullable for unfinished runs)
	ExitStatus *int32 `parquet:"exit_status,optional,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// FileOutcome represents the outcome of one file in a run.
// This struct maps to the rcqm_file_outcomes database table.
type FileOutcome struct {
	RunID        int64     `parquet:"run_id,snappy"`
	FilePath     string    `parquet:"file_path,snappy"`
	AnalysisTime time.Time `parquet:"analysis_time,snappy"`
	Metric       string    `parquet:"metric,snappy,dict"`
	Status       int32     `parquet:"status,snappy"`
	ItemCount    int32     `parquet:"item_count,snappy"`

	// Summary is the JSON report entry (nullable for files that could not be evaluated)
	Summary *string `parquet:"summary,optional,snappy"`
}

// WriteRunsParquet writes a slice of Run structs to a Parquet file.
func WriteRunsParquet(data []Run, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteFileOutcomesParquet writes a slice of FileOutcome structs to a Parquet file.
func WriteFileOutcomesParquet(data []FileOutcome, outputPath string) error {
	return writeParquet(data, outputPath)
}

// writeParquet writes rows with a schema inferred from the struct tags of T.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return file.Close()
}

// ConvertRunRecords converts schema.RunRecord to Run for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	result := make([]Run, len(records))
	for i, record := range records {
		result[i] = Run{
			RunID:         record.RunID,
			Metric:        record.Metric,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			TotalFiles:    record.TotalFiles,
			ExitStatus:    record.ExitStatus,
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// ConvertFileOutcomeRecords converts schema.FileOutcomeRecord to FileOutcome for Parquet export.
func ConvertFileOutcomeRecords(records []schema.FileOutcomeRecord) []FileOutcome {
	result := make([]FileOutcome, len(records))
	for i, record := range records {
		result[i] = FileOutcome{
			RunID:        record.RunID,
			FilePath:     record.FilePath,
			AnalysisTime: record.AnalysisTime,
			Metric:       record.Metric,
			Status:       record.Status,
			ItemCount:    record.ItemCount,
			Summary:      record.Summary,
		}
	}
	return result
}

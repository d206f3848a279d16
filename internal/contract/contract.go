// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/rcqm/schema"
)

// Metric evaluates a single file and owns its pass/fail policy.
// Implementations are selected at configuration time.
type Metric interface {
	// Name identifies the metric and names its report file.
	Name() schema.MetricName

	// Title is printed in the run banner and the completion line.
	Title() string

	// DefaultSuffix is the file suffix eligible for analysis.
	DefaultSuffix() string

	// EvaluateFile computes the result for one file along with its status.
	// A non-nil error means the file could not be evaluated at all.
	EvaluateFile(ctx context.Context, path string) (schema.MetricResult, schema.ExitStatus, error)

	// ReportEntry converts a result into the JSON entry appended to the report.
	ReportEntry(result schema.MetricResult, at time.Time) any
}

// ToolRunner runs an external analysis tool against one file.
// This allows metrics to be tested without the tool installed.
type ToolRunner interface {
	// Run executes the tool on file with dir as the working directory and
	// returns its standard output.
	Run(ctx context.Context, dir, file string) ([]byte, error)
}

// ReportStore persists the cumulative per-metric history of results.
type ReportStore interface {
	// Append adds entry to the history of path in the metric's report.
	Append(metric schema.MetricName, path string, entry any) error
}

// CacheManager defines the interface for managing persistence stores.
// This allows the store layer to be mocked for testing.
type CacheManager interface {
	GetToolStore() CacheStore
	GetHistoryStore() HistoryStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// HistoryStore defines the interface for tracking metric runs and per-file outcomes.
type HistoryStore interface {
	// BeginRun creates a new run and returns its unique ID
	BeginRun(metric schema.MetricName, startTime time.Time, configParams map[string]any) (int64, error)

	// RecordFileOutcome stores the outcome of one evaluated file
	RecordFileOutcome(runID int64, filePath string, outcome schema.FileOutcome) error

	// EndRun updates the run with completion data
	EndRun(runID int64, endTime time.Time, totalFiles int, status schema.ExitStatus) error

	// GetStatus returns status information about the history store
	GetStatus() (schema.HistoryStatus, error)

	// GetAllRuns returns every recorded run
	GetAllRuns() ([]schema.RunRecord, error)

	// GetAllFileOutcomes returns every recorded file outcome
	GetAllFileOutcomes() ([]schema.FileOutcomeRecord, error)

	// Close closes the underlying connection
	Close() error
}

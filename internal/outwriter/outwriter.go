// Package outwriter has output and writer logic.
package outwriter

import (
	"encoding/json"

	"github.com/huangsam/rcqm/internal/contract"
	"github.com/huangsam/rcqm/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the command layer.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteRunSummaries prints the outcome of one or more metric runs.
func (ow *OutWriter) WriteRunSummaries(summaries []schema.RunSummary, cfg *contract.Config) error {
	return WriteRunSummaries(summaries, cfg)
}

// WriteReportStatus prints one row per metric report file.
func (ow *OutWriter) WriteReportStatus(statuses []schema.ReportStatus, cfg *contract.Config) error {
	return WriteReportStatus(statuses, cfg)
}

// WriteReportFiles prints the files recorded in a metric report.
func (ow *OutWriter) WriteReportFiles(metric schema.MetricName, files []schema.ReportFileSummary, cfg *contract.Config) error {
	return WriteReportFiles(metric, files, cfg)
}

// WriteReportHistory prints every entry recorded for one file.
func (ow *OutWriter) WriteReportHistory(metric schema.MetricName, path string, entries []json.RawMessage, cfg *contract.Config) error {
	return WriteReportHistory(metric, path, entries, cfg)
}

// WriteCacheStatus prints the tool output cache status.
func (ow *OutWriter) WriteCacheStatus(status schema.CacheStatus, cfg *contract.Config) error {
	return WriteCacheStatus(status, cfg)
}

// WriteHistoryStatus prints the run history store status.
func (ow *OutWriter) WriteHistoryStatus(status schema.HistoryStatus, cfg *contract.Config) error {
	return WriteHistoryStatus(status, cfg)
}

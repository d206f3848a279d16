package schema

import (
	"encoding/json"
	"time"
)

// ReportDocument maps a file path to its ordered history of report entries.
// Entries stay raw so earlier runs are written back exactly as they were read.
type ReportDocument map[string][]json.RawMessage

// DocReportEntry is the documentation metric's report entry.
type DocReportEntry struct {
	Date        time.Time `json:"Date"`
	Good        []string  `json:"Good documentation"`
	CouldImprov []string  `json:"Could be improved documentation"`
	NeedWork    []string  `json:"Need work documentation"`
	Undoc       []string  `json:"Undocumented"`
}

// TagsReportEntry is the tags metric's report entry.
type TagsReportEntry struct {
	Date   time.Time `json:"date"`
	Total  int       `json:"total"`
	Output []string  `json:"output"`
}

// ReportStatus summarizes one metric's report file.
type ReportStatus struct {
	Metric    MetricName `json:"metric"`
	Path      string     `json:"path"`
	Exists    bool       `json:"exists"`
	Files     int        `json:"files"`
	Entries   int        `json:"entries"`
	SizeBytes int64      `json:"size_bytes"`
	Modified  time.Time  `json:"modified"`
}

// ReportFileSummary is one row of a report listing.
type ReportFileSummary struct {
	Path      string          `json:"path"`
	Entries   int             `json:"entries"`
	LastEntry json.RawMessage `json:"last_entry"`
}

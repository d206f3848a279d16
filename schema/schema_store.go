package schema

import "time"

// FileOutcome is what the history store records for one evaluated file.
type FileOutcome struct {
	AnalysisTime time.Time
	Metric       MetricName
	Status       ExitStatus
	ItemCount    int
	Summary      string // JSON-encoded report entry, empty on evaluation errors
}

// RunRecord represents a row from the rcqm_runs table.
type RunRecord struct {
	RunID         int64
	Metric        string
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int32
	TotalFiles    int32
	ExitStatus    *int32
	ConfigParams  *string
}

// FileOutcomeRecord represents a row from the rcqm_file_outcomes table.
type FileOutcomeRecord struct {
	RunID        int64
	FilePath     string
	AnalysisTime time.Time
	Metric       string
	Status       int32
	ItemCount    int32
	Summary      *string
}

// RunSummary is the outcome of one metric run.
type RunSummary struct {
	Metric     MetricName    `json:"metric"`
	Status     ExitStatus    `json:"status"`
	TotalFiles int           `json:"total_files"`
	Failed     []string      `json:"failed"`
	Errored    []string      `json:"errored"`
	Duration   time.Duration `json:"duration"`
}

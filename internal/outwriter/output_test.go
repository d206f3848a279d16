package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/rcqm/internal/contract"
	"github.com/huangsam/rcqm/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSummaries() []schema.RunSummary {
	return []schema.RunSummary{
		{
			Metric:     schema.DocumentationMetric,
			Status:     schema.StatusFail,
			TotalFiles: 3,
			Failed:     []string{"lib/a.rb"},
			Errored:    []string{},
			Duration:   1500 * time.Millisecond,
		},
		{
			Metric:     schema.TagsMetric,
			Status:     schema.StatusPass,
			TotalFiles: 3,
			Failed:     []string{},
			Errored:    []string{},
			Duration:   20 * time.Millisecond,
		},
	}
}

func TestWriteRunSummaryTable(t *testing.T) {
	var buf bytes.Buffer
	cfg := &contract.Config{Width: 120}
	require.NoError(t, writeRunSummaryTable(&buf, sampleSummaries(), cfg))

	out := buf.String()
	assert.Contains(t, out, "documentation")
	assert.Contains(t, out, "Fail documentation: lib/a.rb")
	assert.Contains(t, out, "Overall status: fail (exit code 1)")
}

func TestWriteCSVRunSummaries(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeCSVRunSummaries(&buf, sampleSummaries()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"metric", "status", "exit_code", "total_files", "failed", "errored", "duration_ms"}, records[0])
	assert.Equal(t, []string{"documentation", "fail", "1", "3", "lib/a.rb", "", "1500"}, records[1])
}

func TestWriteJSONRunSummaries(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSONRunSummaries(&buf, sampleSummaries()))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "Fail", decoded[0]["label"])
	assert.Equal(t, "tags", decoded[1]["metric"])
}

func TestWriteRunSummariesToFile(t *testing.T) {
	outFile := filepath.Join(t.TempDir(), "summary.json")
	cfg := &contract.Config{Output: schema.JSONOut, OutputFile: outFile}
	require.NoError(t, WriteRunSummaries(sampleSummaries(), cfg))

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"total_files": 3`)
}

func TestDescribeEntry(t *testing.T) {
	date := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	docEntry, err := json.Marshal(schema.DocReportEntry{
		Date:        date,
		Good:        []string{"Foo"},
		CouldImprov: []string{},
		NeedWork:    []string{"Foo#a", "Foo#b"},
		Undoc:       []string{},
	})
	require.NoError(t, err)
	tagsEntry, err := json.Marshal(schema.TagsReportEntry{Date: date, Total: 4, Output: []string{}})
	require.NoError(t, err)

	tests := []struct {
		name       string
		metric     schema.MetricName
		raw        json.RawMessage
		wantDate   string
		wantDigest string
	}{
		{"documentation", schema.DocumentationMetric, docEntry, "2024-05-01 10:00:00", "A:1 B:0 C:2 U:0"},
		{"tags", schema.TagsMetric, tagsEntry, "2024-05-01 10:00:00", "4 tags"},
		{"empty", schema.TagsMetric, nil, "-", "-"},
		{"unreadable", schema.TagsMetric, json.RawMessage(`[1]`), "-", "unreadable entry"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			date, digest := describeEntry(tt.metric, tt.raw)
			assert.Equal(t, tt.wantDate, date)
			assert.Equal(t, tt.wantDigest, digest)
		})
	}
}

func TestWriteReportStatusTable(t *testing.T) {
	var buf bytes.Buffer
	statuses := []schema.ReportStatus{
		{Metric: schema.DocumentationMetric, Path: "reports/documentation.json", Exists: true, Files: 2, Entries: 5, SizeBytes: 2048},
		{Metric: schema.TagsMetric, Path: "reports/tags.json"},
	}
	require.NoError(t, writeReportStatusTable(&buf, statuses, &contract.Config{Width: 160}))

	out := buf.String()
	assert.Contains(t, out, "2.0 KiB")
	assert.Contains(t, out, "reports/tags.json")
}

func TestWriteCSVReportFiles(t *testing.T) {
	var buf bytes.Buffer
	files := []schema.ReportFileSummary{
		{Path: "lib/a.rb", Entries: 2, LastEntry: json.RawMessage(`{"date":"2024-05-01T10:00:00Z","total":1,"output":["x"]}`)},
	}
	require.NoError(t, writeCSVReportFiles(&buf, schema.TagsMetric, files))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"lib/a.rb", "2", "2024-05-01 10:00:00", "1 tags"}, records[1])
}

func TestWriteReportHistory(t *testing.T) {
	entries := []json.RawMessage{
		json.RawMessage(`{"date":"2024-05-01T10:00:00Z","total":2,"output":["a","b"]}`),
		json.RawMessage(`{"date":"2024-05-02T10:00:00Z","total":0,"output":[]}`),
	}

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeReportHistoryTable(&buf, schema.TagsMetric, "lib/a.rb", entries))
		out := buf.String()
		assert.Contains(t, out, "2024-05-02 10:00:00")
		assert.Contains(t, out, "2 tags")
		assert.Contains(t, out, "Showing 2 tags entries for lib/a.rb")
	})

	t.Run("csv", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeCSVReportHistory(&buf, schema.TagsMetric, entries))
		records, err := csv.NewReader(&buf).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, []string{"2", "2024-05-02 10:00:00", "0 tags"}, records[2])
	})
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.5 KiB", formatBytes(1536))
	assert.Equal(t, "3.0 MiB", formatBytes(3*1024*1024))
}

func TestWriteCacheStatusText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeCacheStatusText(&buf, schema.CacheStatus{Backend: "none"}))
	assert.Equal(t, "Cache Backend: none\nConnected: false\n", buf.String())

	buf.Reset()
	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, writeCacheStatusText(&buf, schema.CacheStatus{
		Backend:         "sqlite",
		Connected:       true,
		TotalEntries:    2,
		LastEntryTime:   ts,
		OldestEntryTime: ts,
		TableSizeBytes:  100,
	}))
	assert.Contains(t, buf.String(), "Total Entries: 2")
	assert.Contains(t, buf.String(), "Last Entry: 2024-05-01 10:00:00")
}

func TestWriteHistoryStatusText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeHistoryStatusText(&buf, schema.HistoryStatus{
		Backend:    "sqlite",
		Connected:  true,
		TableSizes: map[string]int64{"rcqm_runs": 1, "rcqm_file_outcomes": 4},
	}))

	out := buf.String()
	assert.Contains(t, out, "Total Runs: 0")
	assert.NotContains(t, out, "Last Run ID")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("rcqm_file_outcomes")), bytes.Index(buf.Bytes(), []byte("rcqm_runs")))
}

func TestGetMaxTablePathWidth(t *testing.T) {
	assert.Equal(t, 15, getMaxTablePathWidth(&contract.Config{Width: 40}, 10))
	assert.Equal(t, 70, getMaxTablePathWidth(&contract.Config{Width: 500}, 10))
	assert.Equal(t, 50, getMaxTablePathWidth(&contract.Config{Width: 100}, 30))
}

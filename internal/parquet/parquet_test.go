package parquet

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/rcqm/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll[T any](t *testing.T, path string) []T {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[T](file)
	defer func() { _ = reader.Close() }()

	rows := make([]T, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && !errors.Is(err, io.EOF) {
		require.NoError(t, err)
	}
	return rows[:n]
}

func TestStructTags(t *testing.T) {
	tests := []struct {
		name    string
		schema  *parquet.Schema
		columns []string
	}{
		{
			name:    "runs",
			schema:  parquet.SchemaOf(new(Run)),
			columns: []string{"run_id", "metric", "start_time", "end_time", "run_duration_ms", "total_files", "exit_status", "config_params"},
		},
		{
			name:    "file outcomes",
			schema:  parquet.SchemaOf(new(FileOutcome)),
			columns: []string{"run_id", "file_path", "analysis_time", "metric", "status", "item_count", "summary"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, col := range tt.columns {
				_, ok := tt.schema.Lookup(col)
				assert.True(t, ok, "column %s should exist", col)
			}
		})
	}
}

func TestWriteRunsParquet(t *testing.T) {
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(1500 * time.Millisecond)
	duration := int32(1500)
	exit := int32(schema.StatusFail)
	params := `{"tags":["TODO","FIXME"]}`

	records := []schema.RunRecord{
		{RunID: 1, Metric: "tags", StartTime: start, EndTime: &end, RunDurationMs: &duration, TotalFiles: 12, ExitStatus: &exit, ConfigParams: &params},
		{RunID: 2, Metric: "documentation", StartTime: start.Add(time.Hour)},
	}
	path := filepath.Join(t.TempDir(), "out.runs.parquet")
	require.NoError(t, WriteRunsParquet(ConvertRunRecords(records), path))

	rows := readAll[Run](t, path)
	require.Len(t, rows, 2)

	assert.Equal(t, int64(1), rows[0].RunID)
	assert.Equal(t, "tags", rows[0].Metric)
	assert.True(t, start.Equal(rows[0].StartTime))
	require.NotNil(t, rows[0].EndTime)
	assert.True(t, end.Equal(*rows[0].EndTime))
	require.NotNil(t, rows[0].ExitStatus)
	assert.Equal(t, exit, *rows[0].ExitStatus)
	require.NotNil(t, rows[0].ConfigParams)
	assert.Equal(t, params, *rows[0].ConfigParams)

	assert.Equal(t, "documentation", rows[1].Metric)
	assert.Nil(t, rows[1].EndTime)
	assert.Nil(t, rows[1].RunDurationMs)
	assert.Nil(t, rows[1].ExitStatus)
	assert.Nil(t, rows[1].ConfigParams)
}

func TestWriteFileOutcomesParquet(t *testing.T) {
	at := time.Date(2024, 5, 1, 10, 0, 1, 0, time.UTC)
	summary := `{"date":"2024-05-01T10:00:01Z","total":2,"output":[]}`

	records := []schema.FileOutcomeRecord{
		{RunID: 1, FilePath: "lib/a.rb", AnalysisTime: at, Metric: "tags", Status: 1, ItemCount: 2, Summary: &summary},
		{RunID: 1, FilePath: "lib/b.rb", AnalysisTime: at, Metric: "tags", Status: 2},
	}
	path := filepath.Join(t.TempDir(), "out.file_outcomes.parquet")
	require.NoError(t, WriteFileOutcomesParquet(ConvertFileOutcomeRecords(records), path))

	rows := readAll[FileOutcome](t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, "lib/a.rb", rows[0].FilePath)
	assert.Equal(t, int32(2), rows[0].ItemCount)
	require.NotNil(t, rows[0].Summary)
	assert.Equal(t, summary, *rows[0].Summary)
	assert.Equal(t, int32(2), rows[1].Status)
	assert.Nil(t, rows[1].Summary)
}

func TestWriteParquetEmptyData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.parquet")
	require.NoError(t, WriteRunsParquet([]Run{}, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
	assert.Empty(t, readAll[Run](t, path))
}

func TestWriteParquetInvalidPath(t *testing.T) {
	err := WriteFileOutcomesParquet(nil, filepath.Join(t.TempDir(), "missing", "out.parquet"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create output file")
}

func TestConvertEmpty(t *testing.T) {
	assert.Empty(t, ConvertRunRecords(nil))
	assert.Empty(t, ConvertFileOutcomeRecords(nil))
}

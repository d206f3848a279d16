package iocache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/rcqm/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteHistory(t *testing.T) *HistoryStoreImpl {
	t.Helper()
	store, err := NewHistoryStore(schema.SQLiteBackend, filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestHistoryStoreNoneBackend(t *testing.T) {
	store, err := NewHistoryStore(schema.NoneBackend, "")
	require.NoError(t, err)

	runID, err := store.BeginRun(schema.TagsMetric, time.Now(), map[string]any{"tags": []string{"TODO"}})
	assert.NoError(t, err)
	assert.Equal(t, int64(0), runID)
	assert.NoError(t, store.RecordFileOutcome(runID, "lib/a.rb", schema.FileOutcome{}))
	assert.NoError(t, store.EndRun(runID, time.Now(), 1, schema.StatusPass))

	runs, err := store.GetAllRuns()
	assert.NoError(t, err)
	assert.Empty(t, runs)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.False(t, status.Connected)
	assert.NoError(t, store.Close())
}

func TestHistoryStoreSQLiteLifecycle(t *testing.T) {
	store := newSQLiteHistory(t)
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	runID, err := store.BeginRun(schema.DocumentationMetric, start, map[string]any{"doc-tool": "inch"})
	require.NoError(t, err)
	assert.Greater(t, runID, int64(0))

	require.NoError(t, store.RecordFileOutcome(runID, "lib/b.rb", schema.FileOutcome{
		AnalysisTime: start.Add(time.Second),
		Metric:       schema.DocumentationMetric,
		Status:       schema.StatusError,
	}))
	require.NoError(t, store.RecordFileOutcome(runID, "lib/a.rb", schema.FileOutcome{
		AnalysisTime: start.Add(time.Second),
		Metric:       schema.DocumentationMetric,
		Status:       schema.StatusFail,
		ItemCount:    3,
		Summary:      `{"Undocumented":["Foo"]}`,
	}))
	require.NoError(t, store.EndRun(runID, start.Add(2500*time.Millisecond), 2, schema.StatusFail|schema.StatusError))

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	run := runs[0]
	assert.Equal(t, runID, run.RunID)
	assert.Equal(t, "documentation", run.Metric)
	assert.True(t, start.Equal(run.StartTime))
	require.NotNil(t, run.EndTime)
	require.NotNil(t, run.RunDurationMs)
	assert.Equal(t, int32(2500), *run.RunDurationMs)
	assert.Equal(t, int32(2), run.TotalFiles)
	require.NotNil(t, run.ExitStatus)
	assert.Equal(t, int32(3), *run.ExitStatus)
	require.NotNil(t, run.ConfigParams)
	assert.JSONEq(t, `{"doc-tool":"inch"}`, *run.ConfigParams)

	outcomes, err := store.GetAllFileOutcomes()
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	assert.Equal(t, "lib/a.rb", outcomes[0].FilePath)
	assert.Equal(t, int32(1), outcomes[0].Status)
	assert.Equal(t, int32(3), outcomes[0].ItemCount)
	require.NotNil(t, outcomes[0].Summary)
	assert.Equal(t, "lib/b.rb", outcomes[1].FilePath)
	assert.Nil(t, outcomes[1].Summary)
}

func TestHistoryStoreUnfinishedRun(t *testing.T) {
	store := newSQLiteHistory(t)
	_, err := store.BeginRun(schema.TagsMetric, time.Now(), nil)
	require.NoError(t, err)

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Nil(t, runs[0].EndTime)
	assert.Nil(t, runs[0].RunDurationMs)
	assert.Nil(t, runs[0].ExitStatus)
}

func TestHistoryStoreDuplicateOutcome(t *testing.T) {
	store := newSQLiteHistory(t)
	runID, err := store.BeginRun(schema.TagsMetric, time.Now(), nil)
	require.NoError(t, err)

	outcome := schema.FileOutcome{AnalysisTime: time.Now(), Metric: schema.TagsMetric}
	require.NoError(t, store.RecordFileOutcome(runID, "lib/a.rb", outcome))
	assert.Error(t, store.RecordFileOutcome(runID, "lib/a.rb", outcome))
}

func TestHistoryStoreEndUnknownRun(t *testing.T) {
	store := newSQLiteHistory(t)
	err := store.EndRun(42, time.Now(), 0, schema.StatusPass)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get start_time for run 42")
}

func TestHistoryStoreStatus(t *testing.T) {
	store := newSQLiteHistory(t)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.True(t, status.Connected)
	assert.Equal(t, 0, status.TotalRuns)
	assert.Equal(t, map[string]int64{runsTable: 0, fileOutcomesTable: 0}, status.TableSizes)

	first := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	for i, metric := range []schema.MetricName{schema.TagsMetric, schema.DocumentationMetric} {
		start := first.Add(time.Duration(i) * time.Hour)
		runID, err := store.BeginRun(metric, start, nil)
		require.NoError(t, err)
		require.NoError(t, store.RecordFileOutcome(runID, "lib/a.rb", schema.FileOutcome{AnalysisTime: start, Metric: metric}))
		require.NoError(t, store.EndRun(runID, start.Add(time.Second), 3, schema.StatusPass))
	}

	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 2, status.TotalRuns)
	assert.Equal(t, int64(2), status.LastRunID)
	assert.True(t, first.Add(time.Hour).Equal(status.LastRunTime))
	assert.True(t, first.Equal(status.OldestRunTime))
	assert.Equal(t, 6, status.TotalFilesChecked)
	assert.Equal(t, int64(2), status.TableSizes[fileOutcomesTable])
}

func TestClearHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := NewHistoryStore(schema.SQLiteBackend, path)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	require.NoError(t, ClearHistory(schema.SQLiteBackend, path, ""))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, ClearHistory(schema.NoneBackend, "", ""))
	assert.Error(t, ClearHistory(schema.DatabaseBackend("oracle"), "", ""))
}

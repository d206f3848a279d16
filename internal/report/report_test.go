package report

import (
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

func TestStore_AppendCreatesDirAndFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	store := NewStore(dir)

	entry := schema.TagsReportEntry{
		Date:   time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Total:  1,
		Output: []string{"lib/a.rb(3): # TODO fix"},
	}
	require.NoError(t, store.Append(schema.TagsMetric, "lib/a.rb", entry))

	data, err := os.ReadFile(filepath.Join(dir, "tags.json"))
	require.NoError(t, err)

	var doc map[string][]map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Len(t, doc["lib/a.rb"], 1)
	assert.Equal(t, "2024-01-02T03:04:05Z", doc["lib/a.rb"][0]["date"])
	assert.Equal(t, float64(1), doc["lib/a.rb"][0]["total"])
	assert.Equal(t, []any{"lib/a.rb(3): # TODO fix"}, doc["lib/a.rb"][0]["output"])
}

func TestStore_AppendIsMonotonic(t *testing.T) {
	store := NewStore(t.TempDir())
	const runs = 5

	var snapshots [][]json.RawMessage
	for i := range runs {
		entry := schema.TagsReportEntry{
			Date:   time.Date(2024, 1, 1, 0, 0, i, 0, time.UTC),
			Total:  i,
			Output: []string{},
		}
		require.NoError(t, store.Append(schema.TagsMetric, "lib/a.rb", entry))
		require.NoError(t, store.Append(schema.TagsMetric, "lib/b.rb", entry))

		history, err := store.History(schema.TagsMetric, "lib/a.rb")
		require.NoError(t, err)
		snapshots = append(snapshots, history)
	}

	final, err := store.History(schema.TagsMetric, "lib/a.rb")
	require.NoError(t, err)
	require.Len(t, final, runs)
	for i := range runs {
		// Entry i is unchanged since the run that wrote it
		assert.JSONEq(t, string(snapshots[i][i]), string(final[i]))

		var entry schema.TagsReportEntry
		require.NoError(t, json.Unmarshal(final[i], &entry))
		assert.Equal(t, i, entry.Total)
	}
}

func TestStore_MalformedReportIsNotReplaced(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"broken json", "{not json"},
		{"null document", "null\n"},
		{"array document", "[]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			store := NewStore(dir)
			path := filepath.Join(dir, "documentation.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			var err error
			assert.NotPanics(t, func() {
				err = store.Append(schema.DocumentationMetric, "lib/a.rb", schema.DocReportEntry{})
			})
			assert.ErrorIs(t, err, contract.ErrPersistence)

			_, err = store.Paths(schema.DocumentationMetric)
			assert.ErrorIs(t, err, contract.ErrPersistence)

			data, readErr := os.ReadFile(path)
			require.NoError(t, readErr)
			assert.Equal(t, tt.content, string(data))
		})
	}
}

func TestStore_UnwritableDir(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "reports")
	require.NoError(t, os.WriteFile(blocker, []byte("file, not dir"), 0o644))

	err := NewStore(blocker).Append(schema.TagsMetric, "lib/a.rb", schema.TagsReportEntry{})
	assert.ErrorIs(t, err, contract.ErrPersistence)
}

func TestStore_ReadOperations(t *testing.T) {
	store := NewStore(t.TempDir())

	paths, err := store.Paths(schema.TagsMetric)
	require.NoError(t, err)
	assert.Empty(t, paths)

	require.NoError(t, store.Append(schema.TagsMetric, "lib/b.rb", schema.TagsReportEntry{Total: 1, Output: []string{}}))
	require.NoError(t, store.Append(schema.TagsMetric, "lib/a.rb", schema.TagsReportEntry{Total: 2, Output: []string{}}))
	require.NoError(t, store.Append(schema.TagsMetric, "lib/a.rb", schema.TagsReportEntry{Total: 3, Output: []string{}}))

	paths, err = store.Paths(schema.TagsMetric)
	require.NoError(t, err)
	assert.Equal(t, []string{"lib/a.rb", "lib/b.rb"}, paths)

	summaries, err := store.Summaries(schema.TagsMetric)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "lib/a.rb", summaries[0].Path)
	assert.Equal(t, 2, summaries[0].Entries)
	var last schema.TagsReportEntry
	require.NoError(t, json.Unmarshal(summaries[0].LastEntry, &last))
	assert.Equal(t, 3, last.Total)

	history, err := store.History(schema.TagsMetric, "lib/missing.rb")
	require.NoError(t, err)
	assert.Empty(t, history)

	statuses, err := store.Status()
	require.NoError(t, err)
	require.Len(t, statuses, len(schema.AllMetrics))
	for _, status := range statuses {
		switch status.Metric {
		case schema.TagsMetric:
			assert.True(t, status.Exists)
			assert.Equal(t, 2, status.Files)
			assert.Equal(t, 3, status.Entries)
			assert.Positive(t, status.SizeBytes)
		case schema.DocumentationMetric:
			assert.False(t, status.Exists)
		}
	}
}

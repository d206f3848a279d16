package metrics

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/rcqm/internal/contract"
	"github.com/huangsam/rcqm/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDefaultTags(t *testing.T) *Tags {
	t.Helper()
	m, err := NewTags(&contract.Config{})
	require.NoError(t, err)
	return m
}

func TestTags_EvaluateFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	t.Run("keeps matching lines with their numbers", func(t *testing.T) {
		path := writeRubyFile(t, dir, "a.rb", "class A\n\n// TODO fix\n\nno marker\n")
		result, status, err := newDefaultTags(t).EvaluateFile(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, schema.StatusPass, status)
		assert.Equal(t, []schema.TagMatch{{Line: 3, Text: "// TODO fix"}}, result.(*schema.TagResult).Matches)
	})

	t.Run("case insensitive", func(t *testing.T) {
		path := writeRubyFile(t, dir, "b.rb", "# todo lower\r\n# Fixme mixed\n# nothing\n  # FIXME last")
		result, _, err := newDefaultTags(t).EvaluateFile(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, []schema.TagMatch{
			{Line: 1, Text: "# todo lower"},
			{Line: 2, Text: "# Fixme mixed"},
			{Line: 4, Text: "  # FIXME last"},
		}, result.(*schema.TagResult).Matches)
	})

	t.Run("custom tags", func(t *testing.T) {
		path := writeRubyFile(t, dir, "c.rb", "# HACK here\n# TODO not this\n")
		m, err := NewTags(&contract.Config{Tags: []string{"hack"}})
		require.NoError(t, err)
		result, _, err := m.EvaluateFile(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, 1, result.ItemCount())
	})

	t.Run("fail on match", func(t *testing.T) {
		path := writeRubyFile(t, dir, "d.rb", "# TODO\n")
		m, err := NewTags(&contract.Config{TagsFailOnMatch: true})
		require.NoError(t, err)
		_, status, err := m.EvaluateFile(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, schema.StatusFail, status)

		clean := writeRubyFile(t, dir, "e.rb", "class E; end\n")
		_, status, err = m.EvaluateFile(ctx, clean)
		require.NoError(t, err)
		assert.Equal(t, schema.StatusPass, status)
	})

	t.Run("missing file", func(t *testing.T) {
		_, status, err := newDefaultTags(t).EvaluateFile(ctx, filepath.Join(dir, "missing.rb"))
		assert.Error(t, err)
		assert.Equal(t, schema.StatusError, status)
	})
}

func TestNewTags_InvalidPattern(t *testing.T) {
	_, err := NewTags(&contract.Config{Tags: []string{"[unclosed"}})
	assert.Error(t, err)
}

func TestTags_ReportEntry(t *testing.T) {
	m := newDefaultTags(t)
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	result := &schema.TagResult{Path: "lib/a.rb", Matches: []schema.TagMatch{{Line: 3, Text: "  # TODO fix  "}}}
	entry := m.ReportEntry(result, at).(schema.TagsReportEntry)
	assert.Equal(t, at, entry.Date)
	assert.Equal(t, 1, entry.Total)
	assert.Equal(t, []string{"lib/a.rb(3): # TODO fix"}, entry.Output)

	empty := m.ReportEntry(&schema.TagResult{Path: "lib/b.rb"}, at).(schema.TagsReportEntry)
	assert.Equal(t, 0, empty.Total)
	assert.Equal(t, []string{}, empty.Output)
}

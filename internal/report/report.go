// Package report persists the cumulative per-metric history of results as JSON.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/renameio"
	"github.com/huangsam/rcqm/internal/contract"
	"github.com/huangsam/rcqm/schema"
)

// Store keeps one JSON document per metric at <Dir>/<metric>.json. Each
// document maps a file path to the ordered list of entries appended for it.
//
// Every Append reads, updates and rewrites the whole document, and the write
// goes through a temporary file and a rename. Store assumes a single writer
// per report file: two processes appending to the same metric at once may
// lose one another's entries, so callers must serialize runs.
type Store struct {
	Dir string
}

var _ contract.ReportStore = &Store{} // Compile-time check

// NewStore creates a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

// Path returns the report file of a metric.
func (s *Store) Path(metric schema.MetricName) string {
	return filepath.Join(s.Dir, string(metric)+".json")
}

// Load reads the document of a metric. A missing file yields an empty document.
// A malformed file is an error and is never silently replaced.
func (s *Store) Load(metric schema.MetricName) (schema.ReportDocument, error) {
	path := s.Path(metric)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return schema.ReportDocument{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %w", contract.ErrPersistence, path, err)
	}
	var doc schema.ReportDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: malformed report %s: %w", contract.ErrPersistence, path, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: malformed report %s: not an object", contract.ErrPersistence, path)
	}
	return doc, nil
}

// Append adds entry to the end of the history of path.
func (s *Store) Append(metric schema.MetricName, path string, entry any) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("%w: failed to create %s: %w", contract.ErrPersistence, s.Dir, err)
	}
	doc, err := s.Load(metric)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("%w: failed to encode entry for %s: %w", contract.ErrPersistence, path, err)
	}
	doc[path] = append(doc[path], raw)
	return s.write(metric, doc)
}

func (s *Store) write(metric schema.MetricName, doc schema.ReportDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: failed to encode report: %w", contract.ErrPersistence, err)
	}
	data = append(data, '\n')
	path := s.Path(metric)
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: failed to write %s: %w", contract.ErrPersistence, path, err)
	}
	return nil
}

// History returns the entries recorded for one file, oldest first.
func (s *Store) History(metric schema.MetricName, path string) ([]json.RawMessage, error) {
	doc, err := s.Load(metric)
	if err != nil {
		return nil, err
	}
	return doc[path], nil
}

// Paths returns every file with at least one entry, sorted.
func (s *Store) Paths(metric schema.MetricName) ([]string, error) {
	doc, err := s.Load(metric)
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(doc))
	for p := range doc {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths, nil
}

// Summaries returns one row per file with its entry count and latest entry.
func (s *Store) Summaries(metric schema.MetricName) ([]schema.ReportFileSummary, error) {
	doc, err := s.Load(metric)
	if err != nil {
		return nil, err
	}
	summaries := make([]schema.ReportFileSummary, 0, len(doc))
	for p, entries := range doc {
		summary := schema.ReportFileSummary{Path: p, Entries: len(entries)}
		if len(entries) > 0 {
			summary.LastEntry = entries[len(entries)-1]
		}
		summaries = append(summaries, summary)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Path < summaries[j].Path
	})
	return summaries, nil
}

// Status describes the report file of every known metric.
func (s *Store) Status() ([]schema.ReportStatus, error) {
	statuses := make([]schema.ReportStatus, 0, len(schema.AllMetrics))
	for _, metric := range schema.AllMetrics {
		status := schema.ReportStatus{Metric: metric, Path: s.Path(metric)}
		info, err := os.Stat(status.Path)
		if errors.Is(err, os.ErrNotExist) {
			statuses = append(statuses, status)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: failed to stat %s: %w", contract.ErrPersistence, status.Path, err)
		}
		status.Exists = true
		status.SizeBytes = info.Size()
		status.Modified = info.ModTime()

		doc, err := s.Load(metric)
		if err != nil {
			return nil, err
		}
		status.Files = len(doc)
		for _, entries := range doc {
			status.Entries += len(entries)
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

package core

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/huangsam/rcqm/schema"
)

// VisitFunc evaluates one eligible regular file.
// A returned error is fatal and aborts the walk.
type VisitFunc func(ctx context.Context, path string) (schema.ExitStatus, error)

// Walker recursively enumerates a directory tree and routes eligible files to a VisitFunc.
type Walker struct {
	Filter *Filter
	Stderr io.Writer
}

// NewWalker creates a walker that warns on stderr.
func NewWalker(filter *Filter) *Walker {
	return &Walker{Filter: filter, Stderr: os.Stderr}
}

// Walk is a convenience wrapper around Walker.Walk.
func Walk(ctx context.Context, root string, filter *Filter, visit VisitFunc) (schema.ExitStatus, error) {
	return NewWalker(filter).Walk(ctx, root, visit)
}

// Walk visits every eligible file below root in name order and ORs their statuses.
// Entries that are neither regular files nor directories are reported and skipped.
// A root that cannot be listed is an error. An unreadable subdirectory is reported
// and counts as a StatusError.
func (w *Walker) Walk(ctx context.Context, root string, visit VisitFunc) (schema.ExitStatus, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return schema.StatusPass, fmt.Errorf("failed to read directory %s: %w", root, err)
	}
	return w.walkEntries(ctx, root, entries, visit)
}

func (w *Walker) walkEntries(ctx context.Context, dir string, entries []os.DirEntry, visit VisitFunc) (schema.ExitStatus, error) {
	status := schema.StatusPass
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return status, err
		}
		path := filepath.Join(dir, entry.Name())
		if w.Filter.rejectEntry(path) {
			continue
		}

		switch {
		case entry.IsDir():
			if !w.Filter.ShouldAnalyze(path, schema.DirectoryTarget) {
				continue
			}
			children, err := os.ReadDir(path)
			if err != nil {
				_, _ = fmt.Fprintf(w.Stderr, "%s: %v\n", path, err)
				status |= schema.StatusError
				continue
			}
			sub, err := w.walkEntries(ctx, path, children, visit)
			status |= sub
			if err != nil {
				return status, err
			}
		case entry.Type().IsRegular():
			if !w.Filter.ShouldAnalyze(path, schema.FileTarget) {
				continue
			}
			fileStatus, err := visit(ctx, path)
			status |= fileStatus
			if err != nil {
				return status, err
			}
		default:
			_, _ = fmt.Fprintf(w.Stderr, "%s: Unknown type of file. Ignore it!\n", path)
		}
	}
	return status, nil
}

package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/huangsam/rcqm/schema"
	ignore "github.com/sabhiram/go-gitignore"
)

// vcsMarkers are matched anywhere in any path segment, so ".github" and ".gitignore" are skipped too.
var vcsMarkers = []string{".git", ".hg", ".svn"}

// Filter decides which paths take part in a run. Its predicates do no I/O.
type Filter struct {
	Excludes schema.ExclusionSet
	Suffix   string
	Ignore   *ignore.GitIgnore // optional
}

// NewFilter creates a filter for the given exclusions and eligible suffix.
func NewFilter(excludes schema.ExclusionSet, suffix string) *Filter {
	if excludes == nil {
		excludes = schema.ExclusionSet{}
	}
	return &Filter{Excludes: excludes, Suffix: suffix}
}

// LoadGitignore compiles <root>/.gitignore into the filter. A missing file is not an error.
func (f *Filter) LoadGitignore(root string) error {
	path := filepath.Join(root, ".gitignore")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	gi, err := ignore.CompileIgnoreFile(path)
	if err != nil {
		return fmt.Errorf("failed to compile %s: %w", path, err)
	}
	f.Ignore = gi
	return nil
}

// ShouldAnalyze reports whether path of the given kind takes part in the run.
// Rules apply in order and the first match rejects:
// dot entries, version-control metadata, exact exclusions,
// then for files only editor backups and the suffix check, and finally .gitignore.
func (f *Filter) ShouldAnalyze(path string, kind schema.TargetKind) bool {
	if f.rejectEntry(path) {
		return false
	}
	if kind == schema.FileTarget && !f.IsEligibleFile(path) {
		return false
	}
	return !f.ignored(path)
}

// IsEligibleFile checks the file-only rules: no "#" prefix, no "~" suffix, matching suffix.
func (f *Filter) IsEligibleFile(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, "#") || strings.HasSuffix(base, "~") {
		return false
	}
	return strings.HasSuffix(base, f.Suffix)
}

// rejectEntry applies the rules shared by every kind of entry.
func (f *Filter) rejectEntry(path string) bool {
	base := filepath.Base(path)
	if base == "." || base == ".." {
		return true
	}
	clean := filepath.Clean(path)
	if hasVCSSegment(clean) {
		return true
	}
	return f.Excludes.Contains(clean)
}

func hasVCSSegment(path string) bool {
	for _, segment := range strings.Split(path, string(filepath.Separator)) {
		for _, marker := range vcsMarkers {
			if strings.Contains(segment, marker) {
				return true
			}
		}
	}
	return false
}

func (f *Filter) ignored(path string) bool {
	if f.Ignore == nil {
		return false
	}
	return f.Ignore.MatchesPath(filepath.ToSlash(filepath.Clean(path)))
}

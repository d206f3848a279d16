// Package metrics has the concrete metric evaluators.
package metrics

import (
	"bufio"
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/huangsam/rcqm/internal/contract"
	"github.com/huangsam/rcqm/schema"
)

// toolCacheVersion is bumped when cached tool output must no longer be trusted.
const toolCacheVersion = 1

// ansiColor matches SGR color sequences like ESC[1;32m.
var ansiColor = regexp.MustCompile(`\x1b\[(\d+)(;(\d+))*m`)

// Output lines that end the graded section of the tool report.
var stopPrefixes = []string{"Nothing to suggest", "You might want to look at these files"}

// Documentation grades documentation coverage by running an external tool
// and parsing its A/B/C/U grade lines.
type Documentation struct {
	Runner     contract.ToolRunner
	Tool       string
	Cache      contract.CacheStore // optional
	FailGrades []schema.Grade
	Stderr     io.Writer
}

var _ contract.Metric = &Documentation{} // Compile-time check

// NewDocumentation creates the documentation metric from the configuration.
func NewDocumentation(cfg *contract.Config, runner contract.ToolRunner, cache contract.CacheStore) *Documentation {
	return &Documentation{
		Runner:     runner,
		Tool:       cfg.DocTool,
		Cache:      cache,
		FailGrades: slices.Clone(cfg.DocFailGrades),
		Stderr:     os.Stderr,
	}
}

// Name implements the Metric interface.
func (d *Documentation) Name() schema.MetricName { return schema.DocumentationMetric }

// Title implements the Metric interface.
func (d *Documentation) Title() string { return "Documentation rates" }

// DefaultSuffix implements the Metric interface.
func (d *Documentation) DefaultSuffix() string { return contract.DefaultSuffix }

// EvaluateFile runs the tool on path, parses its output and applies the fail grades.
func (d *Documentation) EvaluateFile(ctx context.Context, path string) (schema.MetricResult, schema.ExitStatus, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, schema.StatusError, fmt.Errorf("failed to read %s: %w", path, err)
	}

	key := ToolCacheKey(d.Tool, content)
	output, ok := d.cachedOutput(key)
	if !ok {
		output, err = d.Runner.Run(ctx, filepath.Dir(path), path)
		if err != nil {
			return nil, schema.StatusError, err
		}
		d.storeOutput(key, output)
	}

	result, err := ParseToolOutput(path, string(output))
	if err != nil {
		return nil, schema.StatusError, err
	}
	if result.HasAny(d.FailGrades) {
		return result, schema.StatusFail, nil
	}
	return result, schema.StatusPass, nil
}

// ReportEntry implements the Metric interface.
func (d *Documentation) ReportEntry(result schema.MetricResult, at time.Time) any {
	doc, ok := result.(*schema.DocResult)
	if !ok {
		doc = schema.NewDocResult(result.FilePath())
	}
	bucket := func(g schema.Grade) []string {
		if items := doc.Grades[g]; items != nil {
			return items
		}
		return []string{}
	}
	return schema.DocReportEntry{
		Date:        at,
		Good:        bucket(schema.GradeA),
		CouldImprov: bucket(schema.GradeB),
		NeedWork:    bucket(schema.GradeC),
		Undoc:       bucket(schema.GradeU),
	}
}

func (d *Documentation) cachedOutput(key string) ([]byte, bool) {
	if d.Cache == nil {
		return nil, false
	}
	value, version, _, err := d.Cache.Get(key)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			d.warn("tool cache read", err)
		}
		return nil, false
	}
	if version != toolCacheVersion || value == nil {
		return nil, false
	}
	return value, true
}

func (d *Documentation) storeOutput(key string, output []byte) {
	if d.Cache == nil {
		return
	}
	if err := d.Cache.Set(key, output, toolCacheVersion, time.Now().Unix()); err != nil {
		d.warn("tool cache write", err)
	}
}

func (d *Documentation) warn(msg string, err error) {
	if d.Stderr == nil {
		return
	}
	_, _ = fmt.Fprintf(d.Stderr, "Warn %s: %v\n", msg, err)
}

// ToolCacheKey identifies tool output for one file content.
func ToolCacheKey(tool string, content []byte) string {
	h := sha256.New()
	h.Write([]byte(tool))
	h.Write([]byte{0})
	h.Write(content)
	return "doc:" + hex.EncodeToString(h.Sum(nil))
}

// Uncolorize strips ANSI color sequences.
func Uncolorize(s string) string {
	return ansiColor.ReplaceAllString(s, "")
}

// ParseToolOutput turns documentation tool output into graded items for path.
// Blank lines are skipped and parsing stops at the first summary line.
// Field 1 of a line is its grade and field 3 the identifier; lines with
// any other field 1 are ignored. A grade without identifier is a ParseError.
func ParseToolOutput(path, output string) (*schema.DocResult, error) {
	result := schema.NewDocResult(path)
	scanner := bufio.NewScanner(strings.NewReader(Uncolorize(output)))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if hasStopPrefix(line) {
			break
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		grade := schema.Grade(fields[1])
		if _, ok := schema.ValidGrades[grade]; !ok {
			continue
		}
		if len(fields) < 4 {
			return nil, &contract.ParseError{Line: lineNum, Text: line, Reason: "grade without identifier"}
		}
		result.Grades[grade] = append(result.Grades[grade], fields[3])
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tool output: %w", err)
	}
	return result, nil
}

func hasStopPrefix(line string) bool {
	for _, prefix := range stopPrefixes {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

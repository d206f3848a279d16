package metrics

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/huangsam/rcqm/internal/contract"
	"github.com/huangsam/rcqm/schema"
)

// Tags finds marker tokens such as TODO and FIXME, line by line.
type Tags struct {
	Pattern     *regexp.Regexp
	FailOnMatch bool
}

var _ contract.Metric = &Tags{} // Compile-time check

// NewTags creates the tags metric from the configuration.
func NewTags(cfg *contract.Config) (*Tags, error) {
	pattern := cfg.TagPattern
	if pattern == nil {
		tags := cfg.Tags
		if len(tags) == 0 {
			tags = schema.DefaultTags
		}
		var err error
		if pattern, err = regexp.Compile(contract.TagPatternFor(tags)); err != nil {
			return nil, fmt.Errorf("invalid tags pattern: %w", err)
		}
	}
	return &Tags{Pattern: pattern, FailOnMatch: cfg.TagsFailOnMatch}, nil
}

// Name implements the Metric interface.
func (t *Tags) Name() schema.MetricName { return schema.TagsMetric }

// Title implements the Metric interface.
func (t *Tags) Title() string { return "Tags matching" }

// DefaultSuffix implements the Metric interface.
func (t *Tags) DefaultSuffix() string { return contract.DefaultSuffix }

// EvaluateFile keeps every matching line with its 1-based number.
func (t *Tags) EvaluateFile(_ context.Context, path string) (schema.MetricResult, schema.ExitStatus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, schema.StatusError, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	result, err := t.scan(path, f)
	if err != nil {
		return nil, schema.StatusError, err
	}
	if t.FailOnMatch && len(result.Matches) > 0 {
		return result, schema.StatusFail, nil
	}
	return result, schema.StatusPass, nil
}

func (t *Tags) scan(path string, f io.Reader) (*schema.TagResult, error) {
	result := &schema.TagResult{Path: path, Matches: []schema.TagMatch{}}
	reader := bufio.NewReader(f)
	lineNum := 0
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			lineNum++
			text := strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
			if t.Pattern.MatchString(text) {
				result.Matches = append(result.Matches, schema.TagMatch{Line: lineNum, Text: text})
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return result, nil
			}
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	}
}

// ReportEntry implements the Metric interface.
func (t *Tags) ReportEntry(result schema.MetricResult, at time.Time) any {
	output := []string{}
	if tags, ok := result.(*schema.TagResult); ok {
		for _, m := range tags.Matches {
			output = append(output, schema.FormatTagLine(tags.Path, m))
		}
	}
	return schema.TagsReportEntry{Date: at, Total: len(output), Output: output}
}

// Package core resolves analysis targets, walks them and runs metrics over every eligible file.
package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/huangsam/rcqm/internal/contract"
	"github.com/huangsam/rcqm/internal/outwriter"
	"github.com/huangsam/rcqm/schema"
)

// Deps holds the collaborators of a Runner. Only Reports is required.
type Deps struct {
	Reports contract.ReportStore
	History contract.HistoryStore             // optional
	Writer  *outwriter.RunWriter              // defaults to stdout/stderr
	Now     func() time.Time                  // defaults to time.Now
	Stat    func(string) (os.FileInfo, error) // defaults to os.Stat
}

// Runner drives one metric over the configured targets and aggregates the
// per-file exit statuses with bitwise OR.
type Runner struct {
	cfg     *contract.Config
	metric  contract.Metric
	reports contract.ReportStore
	history contract.HistoryStore
	writer  *outwriter.RunWriter
	now     func() time.Time
	filter  *Filter
	walker  *Walker
	targets []schema.AnalysisTarget

	files   int
	failed  []string
	errored []string
	runID   int64
	visited map[string]struct{}
}

// NewRunner resolves targets and exclusions and prepares a run. Missing
// configured paths are reported and dropped. When no target is left it
// returns contract.ErrNoTargets and nothing has been traversed or written.
func NewRunner(cfg *contract.Config, metric contract.Metric, deps Deps) (*Runner, error) {
	if deps.Reports == nil {
		return nil, errors.New("runner requires a report store")
	}
	if deps.Writer == nil {
		deps.Writer = outwriter.NewRunWriter(os.Stdout, os.Stderr, cfg.UseColors)
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Stat == nil {
		deps.Stat = os.Stat
	}

	targets, err := ResolveTargets(cfg.Files, deps.Stat, deps.Writer.Err)
	if err != nil {
		return nil, err
	}
	excludes := ResolveExclusions(cfg.Excludes, deps.Stat, deps.Writer.Err)

	filter := NewFilter(excludes, cfg.SuffixFor(metric))
	if cfg.UseGitignore {
		if err := filter.LoadGitignore("."); err != nil {
			return nil, err
		}
	}

	return &Runner{
		cfg:     cfg,
		metric:  metric,
		reports: deps.Reports,
		history: deps.History,
		writer:  deps.Writer,
		now:     deps.Now,
		filter:  filter,
		walker:  &Walker{Filter: filter, Stderr: deps.Writer.Err},
		targets: targets,
	}, nil
}

// ResolveTargets checks the configured targets against the file system.
// With no configured files the default targets are used and the ones that do
// not exist are skipped silently. Configured files that do not exist are
// reported on warn. Anything that is neither a regular file nor a directory
// is an ErrUnknownTargetType.
func ResolveTargets(files []string, stat func(string) (os.FileInfo, error), warn io.Writer) ([]schema.AnalysisTarget, error) {
	useDefaults := len(files) == 0
	if useDefaults {
		files = schema.DefaultTargets
	}

	var targets []schema.AnalysisTarget
	for _, path := range files {
		info, err := stat(path)
		if err != nil {
			if !useDefaults {
				_, _ = fmt.Fprintf(warn, "%s does not exist. Ignore it.\n", path)
			}
			continue
		}
		switch {
		case info.IsDir():
			targets = append(targets, schema.AnalysisTarget{Path: path, Kind: schema.DirectoryTarget})
		case info.Mode().IsRegular():
			targets = append(targets, schema.AnalysisTarget{Path: path, Kind: schema.FileTarget})
		default:
			return nil, fmt.Errorf("%s: %w %s. Aborted!", path, contract.ErrUnknownTargetType, info.Mode().Type())
		}
	}
	if len(targets) == 0 {
		return nil, contract.ErrNoTargets
	}
	return targets, nil
}

// ResolveExclusions keeps the exclusions that exist, cleaned for exact matching.
// Missing paths are reported on warn and contribute nothing.
func ResolveExclusions(excludes []string, stat func(string) (os.FileInfo, error), warn io.Writer) schema.ExclusionSet {
	set := schema.ExclusionSet{}
	for _, path := range excludes {
		if _, err := stat(path); err != nil {
			_, _ = fmt.Fprintf(warn, "%s does not exist. Ignore it.\n", path)
			continue
		}
		set[filepath.Clean(path)] = struct{}{}
	}
	return set
}

// Targets returns the resolved targets.
func (r *Runner) Targets() []schema.AnalysisTarget {
	return r.targets
}

// Run evaluates every eligible file under the targets. The returned status is
// the OR of all per-file statuses. An error is fatal: the run stopped early.
func (r *Runner) Run(ctx context.Context) (schema.ExitStatus, error) {
	start := r.now()
	r.files, r.failed, r.errored = 0, nil, nil
	r.visited = map[string]struct{}{}
	r.beginHistory(start)
	r.writer.Banner(r.metric.Title())

	status, err := r.runTargets(ctx)
	r.endHistory(status)
	if err != nil {
		return status, err
	}

	r.writer.Done(r.metric.Title())
	return status, nil
}

// Summary describes the outcome of the last Run.
func (r *Runner) Summary(status schema.ExitStatus, duration time.Duration) schema.RunSummary {
	return schema.RunSummary{
		Metric:     r.metric.Name(),
		Status:     status,
		TotalFiles: r.files,
		Failed:     append([]string{}, r.failed...),
		Errored:    append([]string{}, r.errored...),
		Duration:   duration,
	}
}

func (r *Runner) runTargets(ctx context.Context) (schema.ExitStatus, error) {
	status := schema.StatusPass
	for _, target := range r.targets {
		if err := ctx.Err(); err != nil {
			return status, err
		}
		if r.filter.rejectEntry(target.Path) {
			continue
		}
		switch target.Kind {
		case schema.FileTarget:
			if !r.filter.IsEligibleFile(target.Path) {
				r.writer.Warn("%s: not a %s file. Ignore it.", target.Path, r.filter.Suffix)
				continue
			}
			fileStatus, err := r.visit(ctx, target.Path)
			status |= fileStatus
			if err != nil {
				return status, err
			}
		case schema.DirectoryTarget:
			dirStatus, err := r.walker.Walk(ctx, target.Path, r.visit)
			status |= dirStatus
			if err != nil {
				return status, err
			}
		default:
			return status, fmt.Errorf("%s: %w", target.Path, contract.ErrUnknownTargetType)
		}
	}
	return status, nil
}

// visit evaluates, prints and records one file. A file reached through
// overlapping targets is evaluated once per run. Only persistence failures
// and cancellation are returned as errors.
func (r *Runner) visit(ctx context.Context, path string) (schema.ExitStatus, error) {
	key := filepath.Clean(path)
	if _, ok := r.visited[key]; ok {
		return schema.StatusPass, nil
	}
	r.visited[key] = struct{}{}

	r.writer.FileHeader(path)
	r.files++

	result, status, err := r.metric.EvaluateFile(ctx, path)
	at := r.now()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return status, ctxErr
		}
		status |= schema.StatusError
		r.writer.FileError(path, err)
		r.errored = append(r.errored, path)
		r.recordOutcome(path, schema.FileOutcome{AnalysisTime: at, Metric: r.metric.Name(), Status: status})
		return status, nil
	}

	r.writer.Result(result)
	entry := r.metric.ReportEntry(result, at)
	if err := r.reports.Append(r.metric.Name(), path, entry); err != nil {
		return status, err
	}
	if status != schema.StatusPass {
		r.failed = append(r.failed, path)
	}

	outcome := schema.FileOutcome{
		AnalysisTime: at,
		Metric:       r.metric.Name(),
		Status:       status,
		ItemCount:    result.ItemCount(),
	}
	if summary, err := json.Marshal(entry); err == nil {
		outcome.Summary = string(summary)
	}
	r.recordOutcome(path, outcome)
	return status, nil
}

func (r *Runner) beginHistory(start time.Time) {
	if r.history == nil {
		return
	}
	runID, err := r.history.BeginRun(r.metric.Name(), start, r.cfg.Params())
	if err != nil {
		r.writer.Warn("Warn history begin: %v", err)
		r.history = nil
		return
	}
	r.runID = runID
}

func (r *Runner) recordOutcome(path string, outcome schema.FileOutcome) {
	if r.history == nil {
		return
	}
	if err := r.history.RecordFileOutcome(r.runID, path, outcome); err != nil {
		r.writer.Warn("Warn history record %s: %v", path, err)
	}
}

func (r *Runner) endHistory(status schema.ExitStatus) {
	if r.history == nil {
		return
	}
	if err := r.history.EndRun(r.runID, r.now(), r.files, status); err != nil {
		r.writer.Warn("Warn history end: %v", err)
	}
}

// RunMetrics runs each metric in turn with the same configuration and
// returns one summary per completed run with the OR of their statuses.
func RunMetrics(ctx context.Context, cfg *contract.Config, deps Deps, metrics ...contract.Metric) ([]schema.RunSummary, schema.ExitStatus, error) {
	var summaries []schema.RunSummary
	aggregate := schema.StatusPass
	for _, metric := range metrics {
		runner, err := NewRunner(cfg, metric, deps)
		if err != nil {
			return summaries, aggregate, err
		}
		start := time.Now()
		status, err := runner.Run(ctx)
		aggregate |= status
		summaries = append(summaries, runner.Summary(status, time.Since(start)))
		if err != nil {
			return summaries, aggregate, fmt.Errorf("%s metric: %w", metric.Name(), err)
		}
	}
	return summaries, aggregate, nil
}

// Package schema has models and constants shared by all parts of rcqm.
package schema

import "strconv"

// ExitStatus is a per-file or aggregate outcome. Values are combined with
// bitwise OR so that any failing file taints the aggregate.
type ExitStatus int

// Exit status bits.
const (
	StatusPass  ExitStatus = 0
	StatusFail  ExitStatus = 1 << 0 // metric policy rejected the file
	StatusError ExitStatus = 1 << 1 // the file could not be evaluated
)

// Passed reports whether no failure bit is set.
func (s ExitStatus) Passed() bool {
	return s == StatusPass
}

// String returns a short label for the status.
func (s ExitStatus) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusFail:
		return "fail"
	case StatusError:
		return "error"
	case StatusFail | StatusError:
		return "fail+error"
	default:
		return "status(" + strconv.Itoa(int(s)) + ")"
	}
}

// AnalysisTarget is a configured root path with its resolved kind.
type AnalysisTarget struct {
	Path string
	Kind TargetKind
}

// ExclusionSet holds cleaned paths removed from analysis.
// Membership is exact string equality, never prefix or glob.
type ExclusionSet map[string]struct{}

// Contains reports whether path is excluded.
func (e ExclusionSet) Contains(path string) bool {
	_, ok := e[path]
	return ok
}

// MetricResult is the structured output of one metric for one file.
type MetricResult interface {
	FilePath() string
	ItemCount() int
}

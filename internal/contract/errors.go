package contract

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across packages.
var (
	// ErrNoTargets means target resolution left nothing to analyze.
	ErrNoTargets = errors.New("No file to analyze. Aborted!")

	// ErrUnknownTargetType means a configured target is neither a regular file nor a directory.
	ErrUnknownTargetType = errors.New("unknown type of target")

	// ErrPersistence wraps every report store failure. It is fatal to a run.
	ErrPersistence = errors.New("report persistence failed")
)

// ToolInvocationError reports that an external tool exited nonzero or could not start.
type ToolInvocationError struct {
	Tool   string
	File   string
	Stderr string
	Err    error
}

func (e *ToolInvocationError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s failed on %s: %s", e.Tool, e.File, e.Stderr)
	}
	return fmt.Sprintf("%s failed on %s: %v", e.Tool, e.File, e.Err)
}

func (e *ToolInvocationError) Unwrap() error { return e.Err }

// ParseError reports tool output that could not be understood.
type ParseError struct {
	Line   int
	Text   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unparseable tool output at line %d (%s): %q", e.Line, e.Reason, e.Text)
}

package contract

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// LocalToolRunner implements the ToolRunner interface by executing a
// binary installed on the machine.
type LocalToolRunner struct {
	Tool    string
	Timeout time.Duration // 0 = wait for the tool to exit
}

var _ ToolRunner = &LocalToolRunner{} // Compile-time check

// NewLocalToolRunner creates a runner for the named tool.
func NewLocalToolRunner(tool string, timeout time.Duration) *LocalToolRunner {
	return &LocalToolRunner{Tool: tool, Timeout: timeout}
}

// Run executes `<tool> <base name of file>` inside dir and returns stdout.
// A nonzero exit, a missing binary or a timeout yields a *ToolInvocationError.
func (r *LocalToolRunner) Run(ctx context.Context, dir, file string) ([]byte, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	base := filepath.Base(file)
	cmd := exec.CommandContext(ctx, r.Tool, base)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err == nil {
		return out, nil
	}
	invocationErr := &ToolInvocationError{Tool: r.Tool, File: filepath.Join(dir, base), Err: err}
	var exitErr *exec.ExitError
	switch {
	case ctx.Err() != nil:
		invocationErr.Err = ctx.Err()
	case errors.As(err, &exitErr):
		invocationErr.Stderr = strings.TrimSpace(stderr.String())
	}
	return nil, invocationErr
}

//go:build basic || database

package integration

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	// sharedRcqmPath holds the path to a shared rcqm binary built once for all tests.
	sharedRcqmPath string

	// buildOnce ensures we only build the binary once.
	buildOnce sync.Once

	// buildMutex protects the shared binary path.
	buildMutex sync.Mutex

	// tempDir holds the temp directory for cleanup.
	tempDir string
)

// TestMain handles setup and cleanup for all integration tests.
func TestMain(m *testing.M) {
	code := m.Run()

	// Cleanup the shared binary after all tests
	if tempDir != "" {
		_ = os.RemoveAll(tempDir)
	}

	os.Exit(code)
}

// getRcqmBinary returns the path to the rcqm binary, building it once if needed.
func getRcqmBinary() string {
	buildMutex.Lock()
	defer buildMutex.Unlock()

	buildOnce.Do(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "rcqm-integration-*")
		if err != nil {
			panic(fmt.Sprintf("failed to create temp dir: %v", err))
		}

		rcqmPath := filepath.Join(tempDir, "rcqm")
		buildCmd := exec.Command("go", "build", "-o", rcqmPath, "./cmd/rcqm")
		buildCmd.Dir = ".." // Build from project root
		if out, err := buildCmd.CombinedOutput(); err != nil {
			panic(fmt.Sprintf("failed to build rcqm: %v\n%s", err, out))
		}

		sharedRcqmPath = rcqmPath
	})

	return sharedRcqmPath
}

// writeProject creates a small Ruby tree and returns its root.
func writeProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"lib/app.rb":          "# TODO: extract\nclass App\nend\n",
		"lib/util/strings.rb": "module Strings\n  # FIXME handle nil\nend\n",
		"lib/clean.rb":        "puts 'ok'\n",
		"lib/notes.txt":       "TODO not ruby\n",
		"spec/app_spec.rb":    "describe App do\nend\n",
	}
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

// runRcqm runs the binary in dir with extra environment and returns stdout and the exit code.
func runRcqm(t *testing.T, dir string, env []string, args ...string) (string, int) {
	t.Helper()
	cmd := exec.Command(getRcqmBinary(), args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), env...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err != nil {
		exitErr, ok := err.(*exec.ExitError)
		require.True(t, ok, "command %s failed to start: %v", cmd.String(), err)
		t.Logf("Command exited with %d: %s\nStderr: %s", exitErr.ExitCode(), cmd.String(), stderr.String())
		return stdout.String(), exitErr.ExitCode()
	}
	return stdout.String(), 0
}

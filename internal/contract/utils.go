package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/rcqm/schema"
)

// Status label constants.
const (
	PassValue  = "Pass"  // Pass value
	FailValue  = "Fail"  // Fail value
	ErrorValue = "Error" // Error value
)

// Color variables for console output.
var (
	ErrorColor  = color.New(color.FgRed, color.Bold) // ErrorColor marks files that could not be evaluated.
	FailColor   = color.New(color.FgYellow)          // FailColor marks files rejected by a metric policy.
	PassColor   = color.New(color.FgGreen)           // PassColor marks files that passed.
	HeaderColor = color.New(color.FgCyan, color.Bold)
)

// GetPlainLabel returns a plain text label for an exit status.
// This is the core logic used for CSV, JSON, and table printing.
func GetPlainLabel(status schema.ExitStatus) string {
	switch {
	case status&schema.StatusError != 0:
		return ErrorValue
	case status&schema.StatusFail != 0:
		return FailValue
	default:
		return PassValue
	}
}

// GetColorLabel returns a colored text label for console output (table).
func GetColorLabel(status schema.ExitStatus) string {
	text := GetPlainLabel(status)

	switch text {
	case ErrorValue:
		return ErrorColor.Sprint(text)
	case FailValue:
		return FailColor.Sprint(text)
	default:
		return PassColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It returns os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for tool output caching.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".rcqm_cache.db"
	}
	return filepath.Join(homeDir, ".rcqm_cache.db")
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for run history.
func GetHistoryDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".rcqm_history.db"
	}
	return filepath.Join(homeDir, ".rcqm_history.db")
}

// TruncatePath truncates a file path to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 to leave room for the "..." prefix and at least one character.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}

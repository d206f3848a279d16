package contract

import (
	"fmt"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/huangsam/rcqm/schema"
)

// Default values for configuration.
const (
	DefaultReportDir = "reports"
	DefaultDocTool   = "inch"
	DefaultSuffix    = ".rb"
)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for a metric run.
// It is built once by ProcessAndValidate and passed explicitly to every component.
type Config struct {
	Files        []string // Configured targets, empty means the default targets
	Excludes     []string // Paths removed from analysis by exact match
	Suffix       string   // Eligible file suffix override, empty means the metric default
	UseGitignore bool     // Also skip paths matched by the root .gitignore

	ReportDir string

	Tags            []string
	TagPattern      *regexp.Regexp
	TagsFailOnMatch bool

	DocTool        string
	DocToolTimeout time.Duration // 0 = no timeout
	DocFailGrades  []schema.Grade

	Output     schema.OutputMode
	OutputFile string
	Width      int  // Terminal width override (0 = auto-detect)
	UseColors  bool // Enable colored output

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	Args []string

	// --- Fields from rootCmd.PersistentFlags() ---
	Files            string `mapstructure:"files"`
	Exclude          string `mapstructure:"exclude"`
	Suffix           string `mapstructure:"suffix"`
	Gitignore        bool   `mapstructure:"gitignore"`
	ReportDir        string `mapstructure:"report-dir"`
	Output           string `mapstructure:"output"`
	OutputFile       string `mapstructure:"output-file"`
	Width            int    `mapstructure:"width"`
	Color            string `mapstructure:"color"`
	HistoryBackend   string `mapstructure:"history-backend"`
	HistoryDBConnect string `mapstructure:"history-db-connect"`
	CacheBackend     string `mapstructure:"cache-backend"`
	CacheDBConnect   string `mapstructure:"cache-db-connect"`

	// --- Tags metric ---
	Tags            string `mapstructure:"tags"`
	TagsFailOnMatch bool   `mapstructure:"tags-fail-on-match"`

	// --- Documentation metric ---
	DocTool        string `mapstructure:"doc-tool"`
	DocToolTimeout string `mapstructure:"doc-tool-timeout"`
	DocFailGrades  string `mapstructure:"doc-fail-grades"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Files = slices.Clone(c.Files)
	clone.Excludes = slices.Clone(c.Excludes)
	clone.Tags = slices.Clone(c.Tags)
	clone.DocFailGrades = slices.Clone(c.DocFailGrades)
	return &clone
}

// CloneWithTargets creates a copy of the Config with new targets and exclusions.
// Nil slices keep the current values.
func (c *Config) CloneWithTargets(files, excludes []string) *Config {
	clone := c.Clone()
	if files != nil {
		clone.Files = slices.Clone(files)
	}
	if excludes != nil {
		clone.Excludes = slices.Clone(excludes)
	}
	return clone
}

// SuffixFor returns the configured suffix or the metric's default one.
func (c *Config) SuffixFor(m Metric) string {
	if c.Suffix != "" {
		return c.Suffix
	}
	return m.DefaultSuffix()
}

// Params returns a flat map of the settings recorded with each history run.
func (c *Config) Params() map[string]any {
	grades := make([]string, 0, len(c.DocFailGrades))
	for _, g := range c.DocFailGrades {
		grades = append(grades, string(g))
	}
	return map[string]any{
		"files":              c.Files,
		"exclude":            c.Excludes,
		"suffix":             c.Suffix,
		"gitignore":          c.UseGitignore,
		"report-dir":         c.ReportDir,
		"tags":               c.Tags,
		"tags-fail-on-match": c.TagsFailOnMatch,
		"doc-tool":           c.DocTool,
		"doc-tool-timeout":   c.DocToolTimeout.String(),
		"doc-fail-grades":    grades,
	}
}

// TagPatternFor builds the case-insensitive alternation used by the tags metric.
// Tokens are used as regular expressions, not quoted.
func TagPatternFor(tags []string) string {
	return "(?i)(" + strings.Join(tags, "|") + ")"
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processTargets(cfg, input); err != nil {
		return err
	}
	if err := processTags(cfg, input); err != nil {
		return err
	}
	if err := processDocumentation(cfg, input); err != nil {
		return err
	}
	return validateBackendConfigs(cfg, input)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends. The key names the option in error messages.
func ValidateDatabaseConnectionString(key string, backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("%s is required when using %s backend", key, backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("%s is required when using %s backend", key, backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// parseBackend lowercases and validates a backend name. Empty means none.
func parseBackend(kind, raw string) (schema.DatabaseBackend, error) {
	if raw == "" {
		return schema.NoneBackend, nil
	}
	backend := schema.DatabaseBackend(strings.ToLower(raw))
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", fmt.Errorf("invalid %s backend '%s'. must be sqlite, mysql, postgresql, none", kind, raw)
	}
	return backend, nil
}

// validateBackendConfigs validates history and cache backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	var err error

	// --- History Backend Validation ---
	if cfg.HistoryBackend, err = parseBackend("history", input.HistoryBackend); err != nil {
		return err
	}
	cfg.HistoryDBConnect = input.HistoryDBConnect
	if err := ValidateDatabaseConnectionString("history-db-connect", cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return err
	}

	// --- Cache Backend Validation ---
	if cfg.CacheBackend, err = parseBackend("cache", input.CacheBackend); err != nil {
		return err
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString("cache-db-connect", cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	// Both SQLite stores may not share one file
	if cfg.HistoryBackend == schema.SQLiteBackend && cfg.CacheBackend == schema.SQLiteBackend {
		historyPath := cfg.HistoryDBConnect
		if historyPath == "" {
			historyPath = GetHistoryDBFilePath()
		}
		cachePath := cfg.CacheDBConnect
		if cachePath == "" {
			cachePath = GetCacheDBFilePath()
		}
		if filepath.Clean(historyPath) == filepath.Clean(cachePath) {
			return fmt.Errorf("history and cache storage must use different SQLite database files. Both resolve to %q", historyPath)
		}
	}
	return nil
}

// validateSimpleInputs processes and validates output related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.UseGitignore = input.Gitignore

	colorFlag := input.Color
	if colorFlag == "" {
		colorFlag = "yes"
	}
	colors, err := ParseBoolString(colorFlag)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Width < 0 {
		return fmt.Errorf("width must not be negative (received %d)", input.Width)
	}

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if cfg.Output == "" {
		cfg.Output = schema.TextOut
	}
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json", input.Output)
	}

	cfg.ReportDir = strings.TrimSpace(input.ReportDir)
	if cfg.ReportDir == "" {
		cfg.ReportDir = DefaultReportDir
	}
	return nil
}

// processTargets collects targets from positional args and the files option.
// Existence is checked later, when targets are resolved.
func processTargets(cfg *Config, input *ConfigRawInput) error {
	cfg.Files = nil
	for _, arg := range input.Args {
		if arg = strings.TrimSpace(arg); arg != "" {
			cfg.Files = append(cfg.Files, arg)
		}
	}
	cfg.Files = append(cfg.Files, schema.SplitList(input.Files)...)
	cfg.Excludes = schema.SplitList(input.Exclude)

	cfg.Suffix = strings.TrimSpace(input.Suffix)
	if cfg.Suffix != "" && !strings.HasPrefix(cfg.Suffix, ".") {
		return fmt.Errorf("suffix must start with '.' (received %q)", cfg.Suffix)
	}
	return nil
}

// processTags builds and compiles the tag pattern.
func processTags(cfg *Config, input *ConfigRawInput) error {
	cfg.TagsFailOnMatch = input.TagsFailOnMatch
	cfg.Tags = schema.SplitList(input.Tags)
	if len(cfg.Tags) == 0 {
		cfg.Tags = slices.Clone(schema.DefaultTags)
	}
	pattern, err := regexp.Compile(TagPatternFor(cfg.Tags))
	if err != nil {
		return fmt.Errorf("invalid tags pattern %q: %w", strings.Join(cfg.Tags, ","), err)
	}
	cfg.TagPattern = pattern
	return nil
}

// processDocumentation handles the documentation tool settings.
func processDocumentation(cfg *Config, input *ConfigRawInput) error {
	cfg.DocTool = strings.TrimSpace(input.DocTool)
	if cfg.DocTool == "" {
		cfg.DocTool = DefaultDocTool
	}

	cfg.DocToolTimeout = 0
	if s := strings.TrimSpace(input.DocToolTimeout); s != "" && s != "0" {
		timeout, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid doc-tool-timeout '%s': %w", s, err)
		}
		if timeout < 0 {
			return fmt.Errorf("doc-tool-timeout must not be negative (received %s)", s)
		}
		cfg.DocToolTimeout = timeout
	}

	if strings.TrimSpace(input.DocFailGrades) == "" {
		cfg.DocFailGrades = slices.Clone(schema.DefaultDocFailGrades)
		return nil
	}
	grades, err := schema.ParseGrades(input.DocFailGrades)
	if err != nil {
		return fmt.Errorf("invalid doc-fail-grades: %w", err)
	}
	cfg.DocFailGrades = grades
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

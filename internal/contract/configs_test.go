package contract

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/rcqm/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		input       *ConfigRawInput
		expectError bool
		check       func(t *testing.T, cfg *Config)
	}{
		{
			name:  "empty input gets defaults",
			input: &ConfigRawInput{},
			check: func(t *testing.T, cfg *Config) {
				assert.Empty(t, cfg.Files)
				assert.Empty(t, cfg.Excludes)
				assert.Equal(t, DefaultReportDir, cfg.ReportDir)
				assert.Equal(t, DefaultDocTool, cfg.DocTool)
				assert.Equal(t, time.Duration(0), cfg.DocToolTimeout)
				assert.Equal(t, []schema.Grade{schema.GradeC, schema.GradeU}, cfg.DocFailGrades)
				assert.Equal(t, []string{"TODO", "FIXME"}, cfg.Tags)
				assert.Equal(t, schema.TextOut, cfg.Output)
				assert.Equal(t, schema.NoneBackend, cfg.HistoryBackend)
				assert.Equal(t, schema.NoneBackend, cfg.CacheBackend)
				assert.True(t, cfg.UseColors)
			},
		},
		{
			name: "args come before files option",
			input: &ConfigRawInput{
				Args:    []string{"lib", " "},
				Files:   "app, bin ,,",
				Exclude: "lib/vendor,lib/legacy.rb",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []string{"lib", "app", "bin"}, cfg.Files)
				assert.Equal(t, []string{"lib/vendor", "lib/legacy.rb"}, cfg.Excludes)
			},
		},
		{
			name:  "tag pattern is case insensitive",
			input: &ConfigRawInput{Tags: "HACK, XXX"},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []string{"HACK", "XXX"}, cfg.Tags)
				assert.True(t, cfg.TagPattern.MatchString("# hack around"))
				assert.False(t, cfg.TagPattern.MatchString("# todo later"))
			},
		},
		{
			name:        "invalid tag pattern",
			input:       &ConfigRawInput{Tags: "TODO,(unclosed"},
			expectError: true,
		},
		{
			name:  "doc settings",
			input: &ConfigRawInput{DocTool: "yard-coverage", DocToolTimeout: "30s", DocFailGrades: "u,b,U"},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "yard-coverage", cfg.DocTool)
				assert.Equal(t, 30*time.Second, cfg.DocToolTimeout)
				assert.Equal(t, []schema.Grade{schema.GradeU, schema.GradeB}, cfg.DocFailGrades)
			},
		},
		{
			name:        "invalid doc grade",
			input:       &ConfigRawInput{DocFailGrades: "C,Z"},
			expectError: true,
		},
		{
			name:        "invalid doc timeout",
			input:       &ConfigRawInput{DocToolTimeout: "soon"},
			expectError: true,
		},
		{
			name:        "negative doc timeout",
			input:       &ConfigRawInput{DocToolTimeout: "-1s"},
			expectError: true,
		},
		{
			name:        "invalid output",
			input:       &ConfigRawInput{Output: "xml"},
			expectError: true,
		},
		{
			name:        "invalid color",
			input:       &ConfigRawInput{Color: "sometimes"},
			expectError: true,
		},
		{
			name:        "suffix without dot",
			input:       &ConfigRawInput{Suffix: "rb"},
			expectError: true,
		},
		{
			name:  "suffix override",
			input: &ConfigRawInput{Suffix: ".rake"},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, ".rake", cfg.Suffix)
			},
		},
		{
			name:        "invalid history backend",
			input:       &ConfigRawInput{HistoryBackend: "redis"},
			expectError: true,
		},
		{
			name:        "mysql history without connect string",
			input:       &ConfigRawInput{HistoryBackend: "mysql"},
			expectError: true,
		},
		{
			name: "postgres cache with connect string",
			input: &ConfigRawInput{
				CacheBackend:   "PostgreSQL",
				CacheDBConnect: "host=localhost port=5432 user=rcqm password=secret dbname=rcqm sslmode=disable",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, schema.PostgreSQLBackend, cfg.CacheBackend)
			},
		},
		{
			name: "sqlite stores sharing one file",
			input: &ConfigRawInput{
				HistoryBackend:   "sqlite",
				HistoryDBConnect: filepath.Join("tmp", "rcqm.db"),
				CacheBackend:     "sqlite",
				CacheDBConnect:   filepath.Join("tmp", ".", "rcqm.db"),
			},
			expectError: true,
		},
		{
			name:  "sqlite stores on default files",
			input: &ConfigRawInput{HistoryBackend: "sqlite", CacheBackend: "sqlite"},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, schema.SQLiteBackend, cfg.HistoryBackend)
				assert.Equal(t, schema.SQLiteBackend, cfg.CacheBackend)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			err := ProcessAndValidate(cfg, tt.input)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		name    string
		backend schema.DatabaseBackend
		conn    string
		wantErr bool
	}{
		{"sqlite needs nothing", schema.SQLiteBackend, "", false},
		{"none needs nothing", schema.NoneBackend, "", false},
		{"mysql valid", schema.MySQLBackend, "user:pass@tcp(localhost:3306)/rcqm", false},
		{"mysql missing tcp", schema.MySQLBackend, "user:pass@localhost/rcqm", true},
		{"mysql missing db", schema.MySQLBackend, "user:pass@tcp(localhost:3306)", true},
		{"postgres valid", schema.PostgreSQLBackend, "host=localhost dbname=rcqm", false},
		{"postgres missing host", schema.PostgreSQLBackend, "dbname=rcqm", true},
		{"postgres missing dbname", schema.PostgreSQLBackend, "host=localhost", true},
		{"postgres empty", schema.PostgreSQLBackend, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatabaseConnectionString("history-db-connect", tt.backend, tt.conn)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigClone(t *testing.T) {
	original := &Config{
		Files:         []string{"lib"},
		Excludes:      []string{"lib/vendor"},
		Tags:          []string{"TODO"},
		DocFailGrades: []schema.Grade{schema.GradeU},
	}
	clone := original.Clone()
	clone.Files[0] = "app"
	clone.Excludes[0] = "app/vendor"
	clone.Tags[0] = "FIXME"
	clone.DocFailGrades[0] = schema.GradeA

	assert.Equal(t, "lib", original.Files[0])
	assert.Equal(t, "lib/vendor", original.Excludes[0])
	assert.Equal(t, "TODO", original.Tags[0])
	assert.Equal(t, schema.GradeU, original.DocFailGrades[0])

	withTargets := original.CloneWithTargets([]string{"spec"}, nil)
	assert.Equal(t, []string{"spec"}, withTargets.Files)
	assert.Equal(t, []string{"lib/vendor"}, withTargets.Excludes)
}

func TestTagPatternFor(t *testing.T) {
	assert.Equal(t, "(?i)(TODO|FIXME)", TagPatternFor([]string{"TODO", "FIXME"}))
}

func TestProcessProfilingConfig(t *testing.T) {
	profile := &ProfileConfig{}
	require.NoError(t, ProcessProfilingConfig(profile, ""))
	assert.False(t, profile.Enabled)

	require.NoError(t, ProcessProfilingConfig(profile, "rcqm"))
	assert.True(t, profile.Enabled)
	assert.Equal(t, "rcqm", profile.Prefix)
}

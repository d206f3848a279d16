package schema

// Custom string types for type safety.
type (
	// MetricName identifies a metric evaluator and names its report file.
	MetricName string

	// Grade is a documentation quality bucket.
	Grade string

	// OutputMode represents the format of the output.
	OutputMode string

	// TargetKind is the resolved file system kind of an analysis target.
	TargetKind string

	// DatabaseBackend represents the database backend for history and caching.
	DatabaseBackend string
)

// All metrics supported.
const (
	DocumentationMetric MetricName = "documentation"
	TagsMetric          MetricName = "tags"
)

// All documentation grades, best to worst.
const (
	GradeA Grade = "A" // good documentation
	GradeB Grade = "B" // properly documented, could be improved
	GradeC Grade = "C" // needs work
	GradeU Grade = "U" // undocumented
)

// All output modes supported.
const (
	TextOut OutputMode = "text" // default
	JSONOut OutputMode = "json"
	CSVOut  OutputMode = "csv"
)

// All target kinds.
const (
	FileTarget      TargetKind = "file"
	DirectoryTarget TargetKind = "directory"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite"
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none" // default
)

// AllMetrics returns the metrics run by the check command, in order.
var AllMetrics = []MetricName{DocumentationMetric, TagsMetric}

// AllGrades lists the documentation grades in report order.
var AllGrades = []Grade{GradeA, GradeB, GradeC, GradeU}

// DefaultTargets are analyzed when no files are configured.
var DefaultTargets = []string{"lib", "bin", "app", "test", "spec", "feature"}

// DefaultTags are the marker tokens searched by the tags metric.
var DefaultTags = []string{"TODO", "FIXME"}

// DefaultDocFailGrades are the grades that fail a file in the documentation metric.
var DefaultDocFailGrades = []Grade{GradeC, GradeU}

// ValidMetrics lists all valid metric names.
var ValidMetrics = map[MetricName]struct{}{
	DocumentationMetric: {},
	TagsMetric:          {},
}

// ValidGrades lists all valid documentation grades.
var ValidGrades = map[Grade]struct{}{
	GradeA: {},
	GradeB: {},
	GradeC: {},
	GradeU: {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut: {},
	JSONOut: {},
	CSVOut:  {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

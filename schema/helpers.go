package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// SplitList splits a comma-separated option into trimmed, non-empty parts.
func SplitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ParseGrades parses a list like "C,U" into grades.
func ParseGrades(s string) ([]Grade, error) {
	var grades []Grade
	seen := make(map[Grade]struct{})
	for _, p := range SplitList(s) {
		g := Grade(strings.ToUpper(p))
		if _, ok := ValidGrades[g]; !ok {
			return nil, fmt.Errorf("invalid grade '%s'. must be A, B, C or U", p)
		}
		if _, dup := seen[g]; dup {
			continue
		}
		seen[g] = struct{}{}
		grades = append(grades, g)
	}
	return grades, nil
}

// ParseMetricName validates a metric name.
func ParseMetricName(s string) (MetricName, error) {
	m := MetricName(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := ValidMetrics[m]; !ok {
		return "", fmt.Errorf("invalid metric '%s'. must be documentation or tags", s)
	}
	return m, nil
}

// FormatTagLine renders a match the way it is printed and reported.
func FormatTagLine(path string, m TagMatch) string {
	return path + "(" + strconv.Itoa(m.Line) + "): " + strings.TrimSpace(m.Text)
}

// GradeHeading returns the printed heading for a documentation grade.
func GradeHeading(g Grade) string {
	switch g {
	case GradeA:
		return "Good documentation"
	case GradeB:
		return "Properly documented, but could be improved"
	case GradeC:
		return "Need work"
	default:
		return "Undocumented"
	}
}

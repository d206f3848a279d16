package schema

// TagMatch is one line matching the tag pattern.
type TagMatch struct {
	Line int    `json:"line"`
	Text string `json:"text"`
}

// TagResult holds every tag match in a file, in line order.
type TagResult struct {
	Path    string     `json:"path"`
	Matches []TagMatch `json:"matches"`
}

// FilePath implements MetricResult.
func (r *TagResult) FilePath() string { return r.Path }

// ItemCount implements MetricResult.
func (r *TagResult) ItemCount() int { return len(r.Matches) }

// DocResult maps every documentation grade to the items that received it.
type DocResult struct {
	Path   string             `json:"path"`
	Grades map[Grade][]string `json:"grades"`
}

// NewDocResult returns a result with all grade buckets present and empty.
func NewDocResult(path string) *DocResult {
	grades := make(map[Grade][]string, len(AllGrades))
	for _, g := range AllGrades {
		grades[g] = []string{}
	}
	return &DocResult{Path: path, Grades: grades}
}

// FilePath implements MetricResult.
func (r *DocResult) FilePath() string { return r.Path }

// ItemCount implements MetricResult.
func (r *DocResult) ItemCount() int {
	n := 0
	for _, items := range r.Grades {
		n += len(items)
	}
	return n
}

// HasAny reports whether any of the given grades holds at least one item.
func (r *DocResult) HasAny(grades []Grade) bool {
	for _, g := range grades {
		if len(r.Grades[g]) > 0 {
			return true
		}
	}
	return false
}

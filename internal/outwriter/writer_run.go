package outwriter

import (
	"fmt"
	"io"
	"strings"

	"github.com/huangsam/rcqm/internal/contract"
	"github.com/huangsam/rcqm/schema"
)

// bannerWidth is the width of the star banner printed before a run.
const bannerWidth = 49

// RunWriter prints the progress of a metric run: the banner, one section per
// file, warnings and the completion line.
type RunWriter struct {
	Out       io.Writer
	Err       io.Writer
	UseColors bool
}

// NewRunWriter creates a progress writer.
func NewRunWriter(out, errOut io.Writer, useColors bool) *RunWriter {
	return &RunWriter{Out: out, Err: errOut, UseColors: useColors}
}

// Banner prints the title framed by star lines.
func (w *RunWriter) Banner(title string) {
	stars := strings.Repeat("*", bannerWidth)
	pad := max(bannerWidth-len(title)-2, 2)
	left := pad / 2
	line := strings.Repeat("*", left) + " " + title + " " + strings.Repeat("*", pad-left)
	w.printf("%s\n%s\n%s\n", stars, w.header(line), stars)
}

// FileHeader announces the evaluation of one file.
func (w *RunWriter) FileHeader(path string) {
	w.printf("== Analyze file %s ==\n", path)
}

// Result prints a metric result in its human-readable form.
func (w *RunWriter) Result(result schema.MetricResult) {
	switch r := result.(type) {
	case *schema.DocResult:
		for _, g := range schema.AllGrades {
			items := r.Grades[g]
			if len(items) == 0 {
				continue
			}
			w.printf("# %s:\n", schema.GradeHeading(g))
			for _, item := range items {
				w.printf("\t- %s\n", item)
			}
		}
	case *schema.TagResult:
		for _, m := range r.Matches {
			w.printf("%s\n", schema.FormatTagLine(r.Path, m))
		}
	}
}

// FileError reports a file that could not be evaluated.
func (w *RunWriter) FileError(path string, err error) {
	label := contract.ErrorValue
	if w.UseColors {
		label = contract.ErrorColor.Sprint(label)
	}
	_, _ = fmt.Fprintf(w.Err, "%s %s: %v\n", label, path, err)
}

// Warn prints a non-fatal message on the error stream.
func (w *RunWriter) Warn(format string, args ...any) {
	_, _ = fmt.Fprintf(w.Err, format+"\n", args...)
}

// Done prints the completion line of a run.
func (w *RunWriter) Done(title string) {
	w.printf("\n>>>>>>>>>>>>> %s done <<<<<<<<<<<<<\n", title)
}

func (w *RunWriter) header(s string) string {
	if w.UseColors {
		return contract.HeaderColor.Sprint(s)
	}
	return s
}

func (w *RunWriter) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(w.Out, format, args...)
}

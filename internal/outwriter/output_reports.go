package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/rcqm/internal/contract"
	"github.com/huangsam/rcqm/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteReportStatus outputs one row per metric report file.
func WriteReportStatus(statuses []schema.ReportStatus, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, statuses)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVReportStatus(w, statuses)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeReportStatusTable(w, statuses, cfg)
		}, "Wrote table")
	}
}

func writeReportStatusTable(w io.Writer, statuses []schema.ReportStatus, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Metric", "Report", "Files", "Entries", "Size", "Modified"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	pathWidth := getMaxTablePathWidth(cfg, 55)
	var data [][]string
	for _, s := range statuses {
		if !s.Exists {
			data = append(data, []string{string(s.Metric), contract.TruncatePath(s.Path, pathWidth), "-", "-", "-", "-"})
			continue
		}
		data = append(data, []string{
			string(s.Metric),
			contract.TruncatePath(s.Path, pathWidth),
			strconv.Itoa(s.Files),
			strconv.Itoa(s.Entries),
			formatBytes(s.SizeBytes),
			formatTime(s.Modified),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func writeCSVReportStatus(w io.Writer, statuses []schema.ReportStatus) error {
	header := []string{"metric", "path", "exists", "files", "entries", "size_bytes", "modified"}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for _, s := range statuses {
			modified := ""
			if !s.Modified.IsZero() {
				modified = s.Modified.Format(contract.DateTimeFormat)
			}
			rec := []string{
				string(s.Metric),
				s.Path,
				strconv.FormatBool(s.Exists),
				strconv.Itoa(s.Files),
				strconv.Itoa(s.Entries),
				strconv.FormatInt(s.SizeBytes, 10),
				modified,
			}
			if err := csvWriter.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteReportFiles outputs the files recorded in a metric report with their latest entry.
func WriteReportFiles(metric schema.MetricName, files []schema.ReportFileSummary, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, files)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVReportFiles(w, metric, files)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeReportFilesTable(w, metric, files, cfg)
		}, "Wrote table")
	}
}

func writeReportFilesTable(w io.Writer, metric schema.MetricName, files []schema.ReportFileSummary, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Path", "Runs", "Last Run", "Latest"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	pathWidth := getMaxTablePathWidth(cfg, 50)
	var data [][]string
	for _, f := range files {
		date, latest := describeEntry(metric, f.LastEntry)
		data = append(data, []string{
			contract.TruncatePath(f.Path, pathWidth),
			strconv.Itoa(f.Entries),
			date,
			latest,
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing %d files from the %s report\n", len(files), metric)
	return err
}

func writeCSVReportFiles(w io.Writer, metric schema.MetricName, files []schema.ReportFileSummary) error {
	header := []string{"path", "entries", "last_run", "latest"}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for _, f := range files {
			date, latest := describeEntry(metric, f.LastEntry)
			if err := csvWriter.Write([]string{f.Path, strconv.Itoa(f.Entries), date, latest}); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteReportHistory outputs every entry recorded for one file, oldest first.
func WriteReportHistory(metric schema.MetricName, path string, entries []json.RawMessage, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, entries)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVReportHistory(w, metric, entries)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeReportHistoryTable(w, metric, path, entries)
		}, "Wrote table")
	}
}

func writeReportHistoryTable(w io.Writer, metric schema.MetricName, path string, entries []json.RawMessage) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"#", "Run", "Result"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	var data [][]string
	for i, raw := range entries {
		date, digest := describeEntry(metric, raw)
		data = append(data, []string{strconv.Itoa(i + 1), date, digest})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing %d %s entries for %s\n", len(entries), metric, path)
	return err
}

func writeCSVReportHistory(w io.Writer, metric schema.MetricName, entries []json.RawMessage) error {
	header := []string{"index", "run", "result"}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for i, raw := range entries {
			date, digest := describeEntry(metric, raw)
			if err := csvWriter.Write([]string{strconv.Itoa(i + 1), date, digest}); err != nil {
				return err
			}
		}
		return nil
	})
}

// describeEntry extracts the run date and a one-line digest from a raw report entry.
func describeEntry(metric schema.MetricName, raw json.RawMessage) (string, string) {
	if len(raw) == 0 {
		return "-", "-"
	}
	switch metric {
	case schema.DocumentationMetric:
		var e schema.DocReportEntry
		if err := json.Unmarshal(raw, &e); err != nil {
			return "-", "unreadable entry"
		}
		return formatTime(e.Date), fmt.Sprintf("A:%d B:%d C:%d U:%d", len(e.Good), len(e.CouldImprov), len(e.NeedWork), len(e.Undoc))
	case schema.TagsMetric:
		var e schema.TagsReportEntry
		if err := json.Unmarshal(raw, &e); err != nil {
			return "-", "unreadable entry"
		}
		return formatTime(e.Date), fmt.Sprintf("%d tags", e.Total)
	default:
		return "-", string(raw)
	}
}

// formatBytes renders a size with a binary unit.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/rcqm/internal/contract"
	"github.com/huangsam/rcqm/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteRunSummaries outputs run outcomes, dispatching based on the output format configured.
func WriteRunSummaries(summaries []schema.RunSummary, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSONRunSummaries(w, summaries)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVRunSummaries(w, summaries)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRunSummaryTable(w, summaries, cfg)
		}, "Wrote table")
	}
}

// writeRunSummaryTable renders one row per metric and lists the files that did not pass.
func writeRunSummaryTable(w io.Writer, summaries []schema.RunSummary, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Metric", "Status", "Files", "Failed", "Errored", "Duration"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	aggregate := schema.StatusPass
	for _, s := range summaries {
		aggregate |= s.Status
		label := contract.GetPlainLabel(s.Status)
		if cfg.UseColors {
			label = contract.GetColorLabel(s.Status)
		}
		data = append(data, []string{
			string(s.Metric),
			label,
			strconv.Itoa(s.TotalFiles),
			strconv.Itoa(len(s.Failed)),
			strconv.Itoa(len(s.Errored)),
			s.Duration.Round(time.Millisecond).String(),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	pathWidth := getMaxTablePathWidth(cfg, 10)
	for _, s := range summaries {
		for _, p := range s.Failed {
			if _, err := fmt.Fprintf(w, "%s %s: %s\n", contract.FailValue, s.Metric, contract.TruncatePath(p, pathWidth)); err != nil {
				return err
			}
		}
		for _, p := range s.Errored {
			if _, err := fmt.Fprintf(w, "%s %s: %s\n", contract.ErrorValue, s.Metric, contract.TruncatePath(p, pathWidth)); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintf(w, "Overall status: %s (exit code %d)\n", aggregate, int(aggregate))
	return err
}

// writeCSVRunSummaries writes one record per metric run.
func writeCSVRunSummaries(w io.Writer, summaries []schema.RunSummary) error {
	header := []string{"metric", "status", "exit_code", "total_files", "failed", "errored", "duration_ms"}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for _, s := range summaries {
			rec := []string{
				string(s.Metric),
				s.Status.String(),
				strconv.Itoa(int(s.Status)),
				strconv.Itoa(s.TotalFiles),
				strings.Join(s.Failed, "|"),
				strings.Join(s.Errored, "|"),
				strconv.FormatInt(s.Duration.Milliseconds(), 10),
			}
			if err := csvWriter.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeJSONRunSummaries writes the run summaries with their status label.
func writeJSONRunSummaries(w io.Writer, summaries []schema.RunSummary) error {
	type JSONRunSummary struct {
		Label string `json:"label"`
		schema.RunSummary
	}

	output := make([]JSONRunSummary, len(summaries))
	for i, s := range summaries {
		output[i] = JSONRunSummary{Label: contract.GetPlainLabel(s.Status), RunSummary: s}
	}
	return writeJSON(w, output)
}

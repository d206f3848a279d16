package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/huangsam/rcqm/core"
	"github.com/huangsam/rcqm/core/metrics"
	"github.com/huangsam/rcqm/internal/contract"
	"github.com/huangsam/rcqm/internal/outwriter"
	"github.com/huangsam/rcqm/internal/report"
	"github.com/huangsam/rcqm/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
}

// runMetricResult is the payload returned by run_metric.
type runMetricResult struct {
	Summary  schema.RunSummary `json:"summary"`
	Warnings []string          `json:"warnings,omitempty"`
}

// stores returns the tool cache and history store, tolerating a missing manager.
func (h *toolHandler) stores() (contract.CacheStore, contract.HistoryStore) {
	if h.mgr == nil {
		return nil, nil
	}
	return h.mgr.GetToolStore(), h.mgr.GetHistoryStore()
}

func (h *toolHandler) handleRunMetric(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := schema.ParseMetricName(request.GetString("metric", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid metric: %v", err)), nil
	}

	var files, excludes []string
	if f := request.GetString("files", ""); f != "" {
		files = schema.SplitList(f)
	}
	if e := request.GetString("exclude", ""); e != "" {
		excludes = schema.SplitList(e)
	}
	cfg := h.baseCfg.CloneWithTargets(files, excludes)

	cache, history := h.stores()
	metric, err := metrics.New(name, cfg, nil, cache)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid metric: %v", err)), nil
	}

	// Stdout carries the protocol, so progress is dropped and warnings kept
	var warnings bytes.Buffer
	deps := core.Deps{
		Reports: report.NewStore(cfg.ReportDir),
		History: history,
		Writer:  outwriter.NewRunWriter(io.Discard, &warnings, false),
	}
	summaries, _, err := core.RunMetrics(ctx, cfg, deps, metric)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("run failed: %v", err)), nil
	}

	result := runMetricResult{Summary: summaries[0]}
	for line := range strings.SplitSeq(strings.TrimSpace(warnings.String()), "\n") {
		if line != "" {
			result.Warnings = append(result.Warnings, line)
		}
	}
	jsonData, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetReport(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := schema.ParseMetricName(request.GetString("metric", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid metric: %v", err)), nil
	}
	store := report.NewStore(h.baseCfg.ReportDir)

	var payload any
	if path := request.GetString("path", ""); path != "" {
		entries, err := store.History(name, path)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to read report: %v", err)), nil
		}
		if len(entries) == 0 {
			return mcp.NewToolResultError(fmt.Sprintf("no entries for %s in the %s report", path, name)), nil
		}
		payload = entries
	} else {
		summaries, err := store.Summaries(name)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to read report: %v", err)), nil
		}
		payload = summaries
	}

	jsonData, _ := json.MarshalIndent(payload, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

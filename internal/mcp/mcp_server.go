// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/rcqm/internal/contract"
	"github.com/huangsam/rcqm/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// metricNames lists the metric names accepted by the tools.
func metricNames() []string {
	names := make([]string, 0, len(schema.AllMetrics))
	for _, m := range schema.AllMetrics {
		names = append(names, string(m))
	}
	return names
}

// NewMCPServer initializes and configures the rcqm MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"rcqm Quality Metrics Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: run_metric ---
	s.AddTool(mcp.NewTool("run_metric",
		mcp.WithDescription("Run a quality metric over source files, append the results to its report and return the run summary."),
		mcp.WithString("metric", mcp.Description("Metric to run."), mcp.Required(), mcp.Enum(metricNames()...)),
		mcp.WithString("files", mcp.Description("Comma-separated files or directories to analyze (defaults to lib, bin, app, test, spec, feature).")),
		mcp.WithString("exclude", mcp.Description("Comma-separated paths to skip.")),
	), h.handleRunMetric)

	// --- 2. Tool: get_report ---
	s.AddTool(mcp.NewTool("get_report",
		mcp.WithDescription("Read the cumulative report of a metric. With a path, return every entry recorded for that file."),
		mcp.WithString("metric", mcp.Description("Metric whose report is read."), mcp.Required(), mcp.Enum(metricNames()...)),
		mcp.WithString("path", mcp.Description("File path as recorded in the report.")),
	), h.handleGetReport)

	return s
}

// StartMCPServer starts the rcqm MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}

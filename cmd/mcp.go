package cmd

import (
	"github.com/huangsam/rcqm/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the rcqm MCP server",
	Long: `Launch an MCP server on stdio that lets AI agents run metrics and read reports.

Tools:
  run_metric - Run one metric over files and return the run summary
  get_report - Read a metric report, or the history of one file

Stdout carries the protocol, so per-file progress is not printed.`,
	PreRunE: noTargetsSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, cacheManager)
	},
}

// Package cmd provides the veracode-mcp command line interface.
//
// Commands:
//   - mcp: Model Context Protocol server on stdio (also the default when
//     no subcommand is given, so MCP clients can exec the bare binary)
//   - version: build and version information
//
// Graceful shutdown is implemented via context cancellation on SIGINT
// and SIGTERM.
package cmd

import (
	"github.com/spf13/cobra"
)

// debugMode forces debug logging regardless of the configured level.
var debugMode bool

var rootCmd = &cobra.Command{
	Use:   "veracode-mcp",
	Short: "MCP server exposing Veracode findings to AI agents",
	Long: `veracode-mcp serves Veracode application, finding, and policy data
over the Model Context Protocol so AI agents can query it with tools.

Run without arguments to start the server on stdio, the transport MCP
clients such as Claude Desktop and Cursor expect. Credentials come from
VERACODE_API_KEY_ID / VERACODE_API_KEY_SECRET, ~/.veracode-mcp/config.yaml,
or the shared ~/.veracode/credentials file.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Bare invocation starts the stdio server
		return runMCP()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false,
		"force debug logging regardless of the configured level")
}

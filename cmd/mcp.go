package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	mcpSdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/veracode-tools/veracode-mcp/internal/app"
	"github.com/veracode-tools/veracode-mcp/internal/config"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server on stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMCP()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

// runMCP initializes the application and serves MCP over stdio until the
// client disconnects or the process receives SIGINT/SIGTERM.
func runMCP() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if debugMode || os.Getenv("DEBUG") != "" {
		cfg.LogLevel = "debug"
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runtime, err := app.NewRuntime(ctx, cfg, AppVersion)
	if err != nil {
		return err
	}
	logger := runtime.App.Logger
	defer func() {
		if closeErr := runtime.Close(); closeErr != nil {
			logger.Warn("shutdown error", "error", closeErr)
		}
	}()

	logger.Info("MCP server ready",
		"name", app.ServerName, "version", AppVersion, "transport", "stdio")

	if err := runtime.Server.Run(ctx, &mcpSdk.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("MCP server error: %w", err)
	}

	logger.Info("MCP server shut down gracefully")
	return nil
}

package app

import (
	"context"
	"fmt"

	"github.com/veracode-tools/veracode-mcp/internal/config"
	"github.com/veracode-tools/veracode-mcp/internal/mcp"
)

// ServerName identifies this server to MCP clients.
const ServerName = "veracode-mcp"

// Runtime is a fully initialized process: configuration applied, client
// constructed, MCP server registered and ready to serve. It encapsulates
// the initialization shared by every entry point.
type Runtime struct {
	App    *App
	Server *mcp.Server
}

// NewRuntime builds the application and its MCP server in one step.
//
// Usage:
//
//	runtime, err := app.NewRuntime(ctx, cfg, version)
//	if err != nil { ... }
//	defer runtime.Close()
//	// serve runtime.Server over a transport
func NewRuntime(ctx context.Context, cfg *config.Config, version string) (*Runtime, error) {
	application, err := Setup(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing application: %w", err)
	}

	server, err := mcp.NewServer(mcp.Config{
		Name:    ServerName,
		Version: version,
		Client:  application.Client,
		Logger:  application.Logger.With("component", "mcp"),
	})
	if err != nil {
		if closeErr := application.Close(); closeErr != nil {
			application.Logger.Warn("cleanup after server construction failure", "error", closeErr)
		}
		return nil, fmt.Errorf("creating MCP server: %w", err)
	}

	return &Runtime{App: application, Server: server}, nil
}

// Close releases the underlying application.
func (r *Runtime) Close() error {
	return r.App.Close()
}

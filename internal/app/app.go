// Package app provides application initialization and dependency wiring.
//
// App is the container that ties together the pieces every entry point
// needs: configuration, the stderr logger, the optional trace pipeline,
// and the Veracode API client. Setup builds it, Close releases it.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/veracode-tools/veracode-mcp/internal/config"
	"github.com/veracode-tools/veracode-mcp/internal/log"
	"github.com/veracode-tools/veracode-mcp/internal/veracode"
)

// closeTimeout bounds the trace flush during shutdown.
const closeTimeout = 5 * time.Second

// App is the core application container.
type App struct {
	Config *config.Config
	Logger log.Logger
	Client *veracode.Client

	// tracingShutdown flushes pending spans; nil when tracing is off.
	tracingShutdown func(context.Context) error
}

// Close releases application resources. Safe on a partially initialized
// App: Setup calls it on its own error path.
func (a *App) Close() error {
	if a.Logger != nil {
		a.Logger.Debug("shutting down")
	}

	if a.tracingShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()
		if err := a.tracingShutdown(ctx); err != nil {
			return fmt.Errorf("flushing traces: %w", err)
		}
	}

	return nil
}

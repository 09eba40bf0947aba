package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/veracode-tools/veracode-mcp/internal/config"
	"github.com/veracode-tools/veracode-mcp/internal/log"
	"github.com/veracode-tools/veracode-mcp/internal/observability"
	"github.com/veracode-tools/veracode-mcp/internal/veracode"
)

// Setup creates and initializes the application.
// Returns an App with embedded cleanup; call Close() to release.
func Setup(ctx context.Context, cfg *config.Config) (_ *App, retErr error) {
	a := &App{Config: cfg}

	// On error, clean up everything already initialized
	defer func() {
		if retErr != nil {
			if err := a.Close(); err != nil && a.Logger != nil {
				a.Logger.Warn("cleanup during setup failure", "error", err)
			}
		}
	}()

	a.Logger = provideLogger(cfg)

	shutdown, err := provideTracing(ctx, cfg, a.Logger)
	if err != nil {
		return nil, err
	}
	a.tracingShutdown = shutdown

	client, err := provideClient(cfg, a.Logger)
	if err != nil {
		return nil, err
	}
	a.Client = client

	return a, nil
}

// provideLogger builds the process logger. It writes to stderr: in MCP
// mode stdout carries the protocol stream and must stay clean.
func provideLogger(cfg *config.Config) log.Logger {
	return log.New(log.Config{
		Level: log.ParseLevel(cfg.LogLevel),
		JSON:  cfg.LogJSON,
	})
}

// provideTracing installs the OTLP trace pipeline when enabled. A nil
// shutdown means tracing is off and Close has nothing to flush.
func provideTracing(ctx context.Context, cfg *config.Config, logger log.Logger) (func(context.Context) error, error) {
	if !cfg.Tracing.Enabled {
		return nil, nil
	}

	shutdown, err := observability.Setup(ctx, observability.Config{
		Endpoint:    cfg.Tracing.Endpoint,
		APIKey:      cfg.Tracing.APIKey,
		Environment: cfg.Tracing.Environment,
		ServiceName: cfg.Tracing.ServiceName,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("setting up tracing: %w", err)
	}
	return shutdown, nil
}

// provideClient constructs the Veracode API client from configuration.
// Credential problems (missing key pair, malformed secret) surface here,
// so a broken setup fails at startup instead of on the first tool call.
func provideClient(cfg *config.Config, logger log.Logger) (*veracode.Client, error) {
	clientCfg := veracode.ClientConfig{
		APIKeyID:                cfg.APIKeyID,
		APIKeySecret:            cfg.APIKeySecret,
		BaseURL:                 cfg.EffectiveBaseURL(),
		Timeout:                 time.Duration(cfg.RequestTimeoutSeconds) * time.Second,
		Logger:                  logger.With("component", "veracode"),
		PreferDerivedCompliance: cfg.PreferDerivedCompliance,
	}

	if cfg.RateLimitPerSecond > 0 {
		burst := cfg.RateLimitBurst
		if burst < 1 {
			burst = 1
		}
		clientCfg.RateLimiter = rate.NewLimiter(rate.Limit(cfg.RateLimitPerSecond), burst)
	}

	if cfg.RetryMaxAttempts > 0 {
		policy := veracode.DefaultRetryPolicy()
		policy.MaxRetries = cfg.RetryMaxAttempts
		clientCfg.Retry = policy
	}

	client, err := veracode.NewClient(clientCfg)
	if err != nil {
		return nil, fmt.Errorf("creating veracode client: %w", err)
	}
	return client, nil
}

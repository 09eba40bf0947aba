// Package observability provides OpenTelemetry tracing for veracode-mcp.
//
// Tracing is opt-in and off by default. When enabled, every gateway
// request made by the findings engine produces a span carrying the HTTP
// method, request path, request ID, and attempt count, exported over
// OTLP/HTTP.
//
// # Collector Mode
//
// The default endpoint is a local OpenTelemetry Collector (or vendor
// agent with an OTLP receiver) on localhost:4318. Running a local
// collector keeps vendor credentials out of this process and buffers
// spans across restarts. For agentless setups, point Endpoint at the
// vendor's OTLP ingest host and set APIKey; it is sent as the `api-key`
// request header.
//
// # Configuration
//
// Via ~/.veracode-mcp/config.yaml:
//
//	tracing:
//	  enabled: true
//	  endpoint: "localhost:4318"
//	  environment: "dev"
//	  service_name: "veracode-mcp"
//
// or the standard OTEL_EXPORTER_OTLP_ENDPOINT / OTEL_SERVICE_NAME
// environment variables, which the config layer maps onto the same
// fields.
package observability

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/veracode-tools/veracode-mcp/internal/log"
)

// Config for the OTLP trace exporter.
type Config struct {
	// Endpoint is the OTLP/HTTP host:port (default: localhost:4318).
	Endpoint string
	// APIKey authenticates against agentless vendor endpoints. Leave
	// empty when a local collector handles authentication.
	APIKey string
	// Environment is the deployment environment tag (dev, staging, prod).
	Environment string
	// ServiceName identifies this process in the tracing backend.
	ServiceName string
}

// DefaultEndpoint is the conventional local OTLP/HTTP receiver address.
const DefaultEndpoint = "localhost:4318"

// Setup installs a global TracerProvider exporting batched spans over
// OTLP/HTTP. It returns a shutdown function that flushes pending spans;
// call it before process exit or the tail of a session is lost.
//
// Setup degrades gracefully: if the exporter cannot be constructed the
// returned shutdown is a no-op and the process runs untraced.
func Setup(ctx context.Context, cfg Config, logger log.Logger) (shutdown func(context.Context) error, err error) {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(endpoint)}
	if isLoopback(endpoint) {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if cfg.APIKey != "" {
		opts = append(opts, otlptracehttp.WithHeaders(map[string]string{"api-key": cfg.APIKey}))
	}

	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		logger.Warn("failed to create trace exporter, tracing disabled", "error", err)
		return func(context.Context) error { return nil }, nil
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.DeploymentEnvironment(cfg.Environment),
	)

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sdktrace.NewBatchSpanProcessor(exporter)),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)

	logger.Debug("tracing enabled",
		"endpoint", endpoint,
		"service", cfg.ServiceName,
		"environment", cfg.Environment,
	)

	return provider.Shutdown, nil
}

// isLoopback reports whether the endpoint points at the local machine,
// in which case the exporter skips TLS. Collectors elsewhere get HTTPS.
func isLoopback(endpoint string) bool {
	host := endpoint
	if h, _, ok := strings.Cut(endpoint, ":"); ok {
		host = h
	}
	return host == "localhost" || strings.HasPrefix(host, "127.")
}

package config

import (
	"encoding/json"
	"fmt"
)

// TracingConfig holds OTLP trace export configuration.
//
// Spans are shipped over OTLP/HTTP to a local collector or agent.
// See internal/observability for the exporter setup.
type TracingConfig struct {
	// Enabled turns span export on. When false the tracer provider is
	// a no-op and nothing leaves the process.
	Enabled bool `mapstructure:"enabled" json:"enabled"`
	// Endpoint is the OTLP/HTTP collector endpoint (default: localhost:4318)
	Endpoint string `mapstructure:"endpoint" json:"endpoint"`
	// APIKey is an optional collector API key, sent as a header
	APIKey string `mapstructure:"api_key" json:"api_key" sensitive:"true"`
	// Environment is the deployment environment tag (default: dev)
	Environment string `mapstructure:"environment" json:"environment"`
	// ServiceName is the service name on exported spans (default: veracode-mcp)
	ServiceName string `mapstructure:"service_name" json:"service_name"`
}

// MarshalJSON masks the collector API key.
func (t TracingConfig) MarshalJSON() ([]byte, error) {
	type alias TracingConfig
	a := alias(t)
	a.APIKey = maskSecret(a.APIKey)
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal tracing config: %w", err)
	}
	return data, nil
}

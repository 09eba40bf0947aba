// Package config provides application configuration management with multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override)
//  2. Config file (~/.veracode-mcp/config.yaml)
//  3. Shared platform credentials file (~/.veracode/credentials, key material only)
//  4. Default values
//
// Main configuration categories:
//   - Credentials: API key pair and profile selection (see credentials.go)
//   - API: region/base URL, request timeout, retry and rate-limit budgets
//   - Logging: level and format for the stderr logger
//   - Tracing: OTLP span export (see observability.go)
//
// Security: the API key secret is never logged; config directory uses 0750
// permissions. Validation: fail-fast range checks in validation.go with
// sentinel errors for errors.Is().
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Region identifiers used in Config.Region.
const (
	RegionCommercial = "commercial"
	RegionEuropean   = "european"
	RegionFederal    = "federal"
)

// regionBaseURLs maps a region identifier to its API gateway.
var regionBaseURLs = map[string]string{
	RegionCommercial: "https://api.veracode.com",
	RegionEuropean:   "https://api.veracode.eu",
	RegionFederal:    "https://api.veracode.us",
}

const (
	// DefaultRequestTimeoutSeconds bounds each HTTP attempt.
	DefaultRequestTimeoutSeconds = 30

	// MaxRequestTimeoutSeconds is the ceiling for the per-request timeout.
	MaxRequestTimeoutSeconds = 300

	// MaxRetryAttempts is the ceiling for configured retries. The
	// default is zero: nothing is retried unless asked for.
	MaxRetryAttempts = 10
)

// Config stores application configuration.
// SECURITY: sensitive fields are explicitly masked in MarshalJSON().
// When adding new sensitive fields, update MarshalJSON.
type Config struct {
	// API credential pair. The secret is a hex-encoded key; both may
	// come from the environment, the config file, or the shared
	// platform credentials file.
	APIKeyID     string `mapstructure:"api_key_id" json:"api_key_id"`
	APIKeySecret string `mapstructure:"api_key_secret" json:"api_key_secret"` // SENSITIVE: masked in MarshalJSON

	// CredentialsProfile selects the section of ~/.veracode/credentials
	// to read when the key pair is not set directly.
	CredentialsProfile string `mapstructure:"credentials_profile" json:"credentials_profile"`

	// Region selects the API gateway; BaseURL overrides it entirely
	// (useful for proxies and test doubles).
	Region  string `mapstructure:"region" json:"region"`
	BaseURL string `mapstructure:"base_url" json:"base_url"`

	// Request budget configuration
	RequestTimeoutSeconds int `mapstructure:"request_timeout_seconds" json:"request_timeout_seconds"`

	// RetryMaxAttempts is the number of retries after the first attempt
	// for transient failures. Zero (the default) disables retries.
	RetryMaxAttempts int `mapstructure:"retry_max_attempts" json:"retry_max_attempts"`

	// Client-side throttle. Zero disables proactive rate limiting.
	RateLimitPerSecond float64 `mapstructure:"rate_limit_per_second" json:"rate_limit_per_second"`
	RateLimitBurst     int     `mapstructure:"rate_limit_burst" json:"rate_limit_burst"`

	// PreferDerivedCompliance makes policy evaluation trust the locally
	// derived status over the backend's declared one when both exist.
	PreferDerivedCompliance bool `mapstructure:"prefer_derived_compliance" json:"prefer_derived_compliance"`

	// Logging configuration. Logs always go to stderr: stdout belongs
	// to the protocol stream in MCP mode.
	LogLevel string `mapstructure:"log_level" json:"log_level"`
	LogJSON  bool   `mapstructure:"log_json" json:"log_json"`

	// Observability configuration (see observability.go)
	Tracing TracingConfig `mapstructure:"tracing" json:"tracing"`
}

// Load loads configuration.
// Priority: environment variables > config file > shared credentials file > defaults.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".veracode-mcp")

	// Ensure directory exists (0750 keeps the config private to the user)
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".") // Also support current directory

	setDefaults(v)
	bindEnvVariables(v)

	// Read configuration file (if exists)
	if err := v.ReadInConfig(); err != nil {
		// Configuration file not found is not an error, use defaults
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using default values",
			"search_paths", []string{configDir, "."},
			"config_name", "config.yaml")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	// Fall back to the shared platform credentials file for key
	// material the environment and config file did not provide
	if err := cfg.fillFromSharedCredentials(filepath.Join(home, ".veracode", "credentials")); err != nil {
		return nil, fmt.Errorf("reading shared credentials: %w", err)
	}

	// CRITICAL: validate immediately (fail-fast)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults(v *viper.Viper) {
	// Credential defaults
	v.SetDefault("credentials_profile", "default")

	// API defaults
	v.SetDefault("region", RegionCommercial)
	v.SetDefault("request_timeout_seconds", DefaultRequestTimeoutSeconds)
	v.SetDefault("retry_max_attempts", 0)
	v.SetDefault("rate_limit_per_second", 0)
	v.SetDefault("rate_limit_burst", 1)
	v.SetDefault("prefer_derived_compliance", false)

	// Logging defaults
	v.SetDefault("log_level", "info")
	v.SetDefault("log_json", false)

	// Tracing defaults
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.endpoint", "localhost:4318")
	v.SetDefault("tracing.environment", "dev")
	v.SetDefault("tracing.service_name", "veracode-mcp")
}

// bindEnvVariables binds environment variables explicitly. The credential
// variables match the names the platform's other tooling reads, so one
// environment serves every client.
func bindEnvVariables(v *viper.Viper) {
	// Helper to panic on unexpected bind errors (hardcoded strings can't fail).
	// If this panics, it's a BUG in our code, not a runtime error
	mustBind := func(key, envVar string) {
		if err := v.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	// API key pair
	mustBind("api_key_id", "VERACODE_API_KEY_ID")
	mustBind("api_key_secret", "VERACODE_API_KEY_SECRET")
	mustBind("credentials_profile", "VERACODE_API_PROFILE")

	// Gateway selection
	mustBind("region", "VERACODE_REGION")
	mustBind("base_url", "VERACODE_API_BASE_URL")

	// Engine behavior
	mustBind("retry_max_attempts", "VERACODE_MCP_RETRY_MAX_ATTEMPTS")
	mustBind("prefer_derived_compliance", "VERACODE_MCP_PREFER_DERIVED_COMPLIANCE")

	// Logging
	mustBind("log_level", "VERACODE_MCP_LOG_LEVEL")
	mustBind("log_json", "VERACODE_MCP_LOG_JSON")

	// Tracing
	mustBind("tracing.enabled", "VERACODE_MCP_TRACING_ENABLED")
	mustBind("tracing.endpoint", "OTEL_EXPORTER_OTLP_ENDPOINT")
	mustBind("tracing.service_name", "OTEL_SERVICE_NAME")
}

// EffectiveBaseURL returns the API gateway to use: the explicit BaseURL
// override when set, else the gateway of the configured region.
func (c *Config) EffectiveBaseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return regionBaseURLs[c.Region]
}

// maskedValue is the placeholder for masked sensitive data.
// Full-width blocks (U+2588) cannot collide with real secret substrings.
const maskedValue = "████████"

// maskSecret masks a secret string for safe logging. Secrets of eight
// characters or fewer are fully masked; longer ones keep the first and
// last two characters for debug utility.
//
// This defends against accidental logging of real secrets, nothing more.
// If logs are compromised, rotate the key pair.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return maskedValue
	}
	return s[:2] + "<" + maskedValue + ">" + s[len(s)-2:]
}

// MarshalJSON implements json.Marshaler with explicit sensitive field masking.
//
// Sensitive fields masked:
//   - APIKeySecret
//   - Tracing.APIKey (via TracingConfig.MarshalJSON)
//
// When adding new sensitive fields, update this method or the nested
// struct's MarshalJSON.
func (c Config) MarshalJSON() ([]byte, error) {
	type alias Config
	a := alias(c)
	a.APIKeySecret = maskSecret(a.APIKeySecret)
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

// String implements Stringer to prevent accidental printing of secrets.
func (c Config) String() string {
	data, err := c.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("Config{error: %v}", err)
	}
	return string(data)
}

package config

import (
	"errors"
	"testing"
)

// validConfig returns a Config with all required fields set.
func validConfig() *Config {
	return &Config{
		APIKeyID:              "0123456789abcdef",
		APIKeySecret:          "cafebabe0123456789abcdefcafebabe",
		CredentialsProfile:    "default",
		Region:                RegionCommercial,
		RequestTimeoutSeconds: 30,
		RateLimitBurst:        1,
		LogLevel:              "info",
	}
}

func TestValidateSuccess(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Errorf("Validate() unexpected error with valid config: %v", err)
	}
}

func TestValidateNil(t *testing.T) {
	var cfg *Config
	if err := cfg.Validate(); !errors.Is(err, ErrConfigNil) {
		t.Errorf("Validate() error = %v, want ErrConfigNil", err)
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "missing key id",
			mutate:  func(c *Config) { c.APIKeyID = "" },
			wantErr: ErrMissingAPICredentials,
		},
		{
			name:    "missing secret",
			mutate:  func(c *Config) { c.APIKeySecret = "" },
			wantErr: ErrMissingAPICredentials,
		},
		{
			name:    "secret not hex",
			mutate:  func(c *Config) { c.APIKeySecret = "definitely-not-hex" },
			wantErr: ErrInvalidAPICredentials,
		},
		{
			name:    "unknown region",
			mutate:  func(c *Config) { c.Region = "moonbase" },
			wantErr: ErrInvalidRegion,
		},
		{
			name:    "relative base URL",
			mutate:  func(c *Config) { c.BaseURL = "api.veracode.com" },
			wantErr: ErrInvalidBaseURL,
		},
		{
			name:    "timeout too small",
			mutate:  func(c *Config) { c.RequestTimeoutSeconds = 0 },
			wantErr: ErrInvalidTimeout,
		},
		{
			name:    "timeout too large",
			mutate:  func(c *Config) { c.RequestTimeoutSeconds = 301 },
			wantErr: ErrInvalidTimeout,
		},
		{
			name:    "negative retries",
			mutate:  func(c *Config) { c.RetryMaxAttempts = -1 },
			wantErr: ErrInvalidRetry,
		},
		{
			name:    "too many retries",
			mutate:  func(c *Config) { c.RetryMaxAttempts = 11 },
			wantErr: ErrInvalidRetry,
		},
		{
			name:    "negative rate limit",
			mutate:  func(c *Config) { c.RateLimitPerSecond = -1 },
			wantErr: ErrInvalidRateLimit,
		},
		{
			name: "rate limit without burst",
			mutate: func(c *Config) {
				c.RateLimitPerSecond = 5
				c.RateLimitBurst = 0
			},
			wantErr: ErrInvalidRateLimit,
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.LogLevel = "verbose" },
			wantErr: ErrInvalidLogLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateAcceptsCustomBaseURL(t *testing.T) {
	cfg := validConfig()
	cfg.BaseURL = "https://proxy.internal:8443"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() unexpected error with custom base URL: %v", err)
	}
}

func TestEffectiveBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		region  string
		baseURL string
		want    string
	}{
		{name: "commercial region", region: RegionCommercial, want: "https://api.veracode.com"},
		{name: "european region", region: RegionEuropean, want: "https://api.veracode.eu"},
		{name: "federal region", region: RegionFederal, want: "https://api.veracode.us"},
		{name: "override wins", region: RegionEuropean, baseURL: "https://proxy.internal", want: "https://proxy.internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Region = tt.region
			cfg.BaseURL = tt.baseURL
			if got := cfg.EffectiveBaseURL(); got != tt.want {
				t.Errorf("EffectiveBaseURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

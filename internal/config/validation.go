package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"slices"
)

var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrMissingAPICredentials indicates the API key pair is not set anywhere.
	ErrMissingAPICredentials = errors.New("missing API credentials")

	// ErrInvalidAPICredentials indicates the API key secret is not valid hex.
	ErrInvalidAPICredentials = errors.New("invalid API credentials")

	// ErrInvalidRegion indicates the region identifier is not recognized.
	ErrInvalidRegion = errors.New("invalid region")

	// ErrInvalidBaseURL indicates the base URL override is not an absolute URL.
	ErrInvalidBaseURL = errors.New("invalid base URL")

	// ErrInvalidTimeout indicates the request timeout is out of range.
	ErrInvalidTimeout = errors.New("invalid request timeout")

	// ErrInvalidRetry indicates the retry attempt count is out of range.
	ErrInvalidRetry = errors.New("invalid retry attempts")

	// ErrInvalidRateLimit indicates the rate limit settings are inconsistent.
	ErrInvalidRateLimit = errors.New("invalid rate limit")

	// ErrInvalidLogLevel indicates the log level is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
)

// validLogLevels are the accepted log_level values.
var validLogLevels = []string{"debug", "info", "warn", "error"}

// Validate validates configuration values.
// Returns sentinel errors that can be checked with errors.Is().
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	// 1. Credential validation (required for every API operation)
	if c.APIKeyID == "" || c.APIKeySecret == "" {
		return fmt.Errorf("%w: set VERACODE_API_KEY_ID and VERACODE_API_KEY_SECRET, "+
			"or add a profile to ~/.veracode/credentials\n"+
			"Generate a key pair at: https://docs.veracode.com/r/t_create_api_creds",
			ErrMissingAPICredentials)
	}
	if _, err := hex.DecodeString(c.APIKeySecret); err != nil {
		return fmt.Errorf("%w: api_key_secret must be the hex-encoded secret key", ErrInvalidAPICredentials)
	}

	// 2. Gateway validation
	if _, ok := regionBaseURLs[c.Region]; !ok {
		return fmt.Errorf("%w: %q is not valid, must be one of: %v",
			ErrInvalidRegion, c.Region, []string{RegionCommercial, RegionEuropean, RegionFederal})
	}
	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: %q must be an absolute URL", ErrInvalidBaseURL, c.BaseURL)
		}
		// A custom gateway is usually a proxy or a test double; worth a
		// note in the log when debugging connectivity
		slog.Debug("using custom API base URL", "base_url", c.BaseURL)
	}

	// 3. Request budget validation
	if c.RequestTimeoutSeconds < 1 || c.RequestTimeoutSeconds > MaxRequestTimeoutSeconds {
		return fmt.Errorf("%w: must be between 1 and %d seconds, got %d",
			ErrInvalidTimeout, MaxRequestTimeoutSeconds, c.RequestTimeoutSeconds)
	}
	if c.RetryMaxAttempts < 0 || c.RetryMaxAttempts > MaxRetryAttempts {
		return fmt.Errorf("%w: must be between 0 and %d, got %d",
			ErrInvalidRetry, MaxRetryAttempts, c.RetryMaxAttempts)
	}
	if c.RateLimitPerSecond < 0 {
		return fmt.Errorf("%w: rate_limit_per_second cannot be negative, got %g",
			ErrInvalidRateLimit, c.RateLimitPerSecond)
	}
	if c.RateLimitPerSecond > 0 && c.RateLimitBurst < 1 {
		return fmt.Errorf("%w: rate_limit_burst must be at least 1 when a rate limit is set, got %d",
			ErrInvalidRateLimit, c.RateLimitBurst)
	}

	// 4. Logging validation
	if !slices.Contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("%w: %q is not valid, must be one of: %v",
			ErrInvalidLogLevel, c.LogLevel, validLogLevels)
	}

	return nil
}

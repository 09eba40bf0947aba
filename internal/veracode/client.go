package veracode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

// Regional API gateways. The commercial region is the default.
const (
	RegionCommercialURL = "https://api.veracode.com"
	RegionEuropeanURL   = "https://api.veracode.eu"
	RegionFederalURL    = "https://api.veracode.us"
)

const (
	defaultTimeout = 30 * time.Second

	// maxResponseBytes caps how much of a response body is read into
	// memory. A findings page at maximum size stays well under this.
	maxResponseBytes = 50 << 20

	// errorBodyLimit bounds how much of an error response is read when
	// extracting a message.
	errorBodyLimit = 4 << 10

	tracerName = "github.com/veracode-tools/veracode-mcp/internal/veracode"
)

// RetryPolicy configures transient-failure retries on API calls. The zero
// value disables retries entirely; every attempt beyond the first is
// opt-in.
type RetryPolicy struct {
	MaxRetries      int           // Additional attempts after the first
	InitialInterval time.Duration // First backoff interval
	MaxInterval     time.Duration // Backoff ceiling
}

// DefaultRetryPolicy returns a conservative policy for interactive use:
// two retries with short exponential backoff.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:      2,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     5 * time.Second,
	}
}

// retryableError reports whether err is transient and worth another
// attempt. Rate limiting, server-side failures, and network errors
// qualify; client errors and malformed responses do not.
func retryableError(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.Kind {
	case KindNetwork, KindRateLimited, KindServer:
		return true
	}
	return false
}

// ClientConfig carries everything needed to construct a Client. APIKeyID
// and APIKeySecret are required; all other fields have working defaults.
type ClientConfig struct {
	APIKeyID     string
	APIKeySecret string

	// BaseURL selects the regional gateway. Defaults to the commercial
	// region.
	BaseURL string

	// Timeout bounds each HTTP attempt. Defaults to 30 seconds.
	Timeout time.Duration

	// HTTPClient overrides the underlying client. Timeout is ignored
	// when this is set.
	HTTPClient *http.Client

	Logger *slog.Logger // Optional: defaults to a no-op logger

	// RateLimiter throttles outgoing calls client-side. Optional: nil
	// means no proactive throttling.
	RateLimiter *rate.Limiter

	// Retry governs transient-failure retries. The zero value means a
	// single attempt per call.
	Retry RetryPolicy

	// PreferDerivedCompliance makes policy compliance reporting trust
	// the locally derived status over the backend's own, instead of
	// only falling back to it when the backend reports nothing.
	PreferDerivedCompliance bool
}

// Client is a read-only Veracode REST API client. It signs every request,
// classifies failures, and never caches responses. Safe for concurrent
// use.
type Client struct {
	httpClient *http.Client
	signer     *hmacSigner
	baseURL    *url.URL
	logger     *slog.Logger
	limiter    *rate.Limiter
	retry      RetryPolicy
	tracer     trace.Tracer

	preferDerivedCompliance bool
}

// NewClient validates cfg and constructs a Client. Credential problems
// (missing keys, malformed secret) surface here rather than on the first
// call.
func NewClient(cfg ClientConfig) (*Client, error) {
	signer, err := newHMACSigner(cfg.APIKeyID, cfg.APIKeySecret)
	if err != nil {
		return nil, err
	}

	rawBase := cfg.BaseURL
	if rawBase == "" {
		rawBase = RegionCommercialURL
	}
	base, err := url.Parse(rawBase)
	if err != nil {
		return nil, fmt.Errorf("parse base URL %q: %w", rawBase, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base URL %q must be absolute", rawBase)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Client{
		httpClient:              httpClient,
		signer:                  signer,
		baseURL:                 base,
		logger:                  logger,
		limiter:                 cfg.RateLimiter,
		retry:                   cfg.Retry,
		tracer:                  otel.Tracer(tracerName),
		preferDerivedCompliance: cfg.PreferDerivedCompliance,
	}, nil
}

// PlatformBaseURL returns the web UI origin for this client's region,
// derived from the API host by substituting the gateway subdomain.
func (c *Client) PlatformBaseURL() string {
	host := strings.Replace(c.baseURL.Host, "api.", "analysiscenter.", 1)
	return c.baseURL.Scheme + "://" + host
}

// AbsoluteURL rewrites a backend-relative link into an absolute platform
// URL. Links that are already absolute pass through unchanged. Pure
// string templating, never a network call.
func (c *Client) AbsoluteURL(link string) string {
	if link == "" || strings.Contains(link, "://") {
		return link
	}
	if !strings.HasPrefix(link, "/") {
		link = "/" + link
	}
	return c.PlatformBaseURL() + link
}

// getJSON performs a signed GET against path, decoding the response into
// out. Query may be nil. Each attempt is signed with a fresh nonce and
// timestamp; retries follow the client's RetryPolicy.
func (c *Client) getJSON(ctx context.Context, op, path string, query url.Values, out any) error {
	requestURL := *c.baseURL
	requestURL.Path = path
	requestURL.RawQuery = query.Encode()

	requestID := uuid.NewString()

	ctx, span := c.tracer.Start(ctx, op, trace.WithAttributes(
		attribute.String("http.request.method", http.MethodGet),
		attribute.String("url.path", path),
		attribute.String("request.id", requestID),
	))
	defer span.End()

	var lastErr error
	delay := c.retry.InitialInterval
	start := time.Now()

	for attempt := 0; attempt <= c.retry.MaxRetries; attempt++ {
		// Throttle each attempt, not just the first
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				span.SetStatus(codes.Error, "rate limit wait")
				return fmt.Errorf("rate limit wait: %w", err)
			}
		}

		err := c.doOnce(ctx, op, &requestURL, requestID, out)
		if err == nil {
			span.SetAttributes(attribute.Int("http.attempts", attempt+1))
			return nil
		}

		lastErr = err

		if !retryableError(err) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}

		if attempt == c.retry.MaxRetries {
			break
		}

		if delay <= 0 {
			delay = 500 * time.Millisecond
		}
		c.logger.Debug("retrying request",
			"operation", op,
			"request_id", requestID,
			"attempt", attempt+1,
			"delay", delay,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return fmt.Errorf("canceled during retry: %w", ctx.Err())
		case <-time.After(delay):
			delay = min(delay*2, c.retry.MaxInterval)
		}
	}

	span.RecordError(lastErr)
	span.SetStatus(codes.Error, lastErr.Error())
	if c.retry.MaxRetries > 0 {
		return fmt.Errorf("%s after %d retries (elapsed: %v): %w",
			op, c.retry.MaxRetries, time.Since(start).Round(time.Millisecond), lastErr)
	}
	return lastErr
}

// doOnce runs a single signed attempt. Signing happens here so every
// attempt carries a fresh nonce.
func (c *Client) doOnce(ctx context.Context, op string, u *url.URL, requestID string, out any) error {
	signTarget := u.Path
	if u.RawQuery != "" {
		signTarget += "?" + u.RawQuery
	}
	auth, err := c.signer.AuthHeader(http.MethodGet, u.Host, signTarget)
	if err != nil {
		return &APIError{Kind: KindAuthSetup, Op: op, Message: "sign request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return &APIError{Kind: KindClient, Op: op, Message: "build request", Err: err}
	}
	req.Header.Set("Authorization", auth)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &APIError{Kind: KindNetwork, Op: op, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	elapsed := time.Since(start)
	if err != nil {
		return &APIError{Kind: KindNetwork, Op: op, StatusCode: resp.StatusCode, Message: "read response", Err: err}
	}

	trace.SpanFromContext(ctx).SetAttributes(
		attribute.Int("http.response.status_code", resp.StatusCode),
		attribute.Int("http.response.body.size", len(body)),
	)

	c.logger.Debug("api response",
		"operation", op,
		"request_id", requestID,
		"method", http.MethodGet,
		"path", u.Path,
		"status", resp.StatusCode,
		"bytes", len(body),
		"elapsed", elapsed,
	)

	if resp.StatusCode != http.StatusOK {
		return &APIError{
			Kind:       classifyStatus(resp.StatusCode),
			Op:         op,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(body),
		}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &APIError{Kind: KindMalformed, Op: op, StatusCode: resp.StatusCode, Message: "decode response", Err: err}
	}
	return nil
}

// errorMessage extracts a human-readable message from an error response
// body. The backend usually sends {"message": ...}; anything else is
// passed through as a bounded snippet.
func errorMessage(body []byte) string {
	if len(body) > errorBodyLimit {
		body = body[:errorBodyLimit]
	}
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	s := strings.TrimSpace(string(body))
	if s == "" {
		return "no response body"
	}
	return s
}

package veracode

import (
	"errors"
	"fmt"
)

// Sentinel errors for resolution and credential failures.
// Check with errors.Is().
var (
	// ErrApplicationNotFound indicates a name query matched zero applications.
	// Distinct from an empty findings result, which is a valid success.
	ErrApplicationNotFound = errors.New("application not found")

	// ErrMissingCredentials indicates the API key pair was not supplied.
	ErrMissingCredentials = errors.New("missing API credentials")

	// ErrInvalidSecret indicates the API key secret is not valid hex.
	ErrInvalidSecret = errors.New("invalid API key secret")
)

// ErrorKind classifies an APIError into the failure taxonomy callers
// dispatch on. Rate-limited errors are deliberately distinct from other
// client errors so callers can back off; nothing is retried here.
type ErrorKind string

const (
	// KindAuthSetup is a malformed-credential failure raised before any
	// network call is made.
	KindAuthSetup ErrorKind = "auth-setup"

	// KindNetwork covers connectivity failures and per-request timeouts.
	KindNetwork ErrorKind = "network"

	// KindClient covers HTTP 4xx responses other than 429.
	KindClient ErrorKind = "client"

	// KindRateLimited is HTTP 429. Never retried automatically; backoff
	// policy belongs to the caller.
	KindRateLimited ErrorKind = "rate-limited"

	// KindServer covers HTTP 5xx responses.
	KindServer ErrorKind = "server"

	// KindMalformed indicates the backend returned a body that could not
	// be decoded as the expected envelope.
	KindMalformed ErrorKind = "malformed-response"
)

// APIError is the typed failure surface of the client. Every operation
// returns either a success value or one of these; lower layers wrap the
// underlying cause instead of swallowing it.
type APIError struct {
	Kind       ErrorKind
	Op         string // operation context, e.g. "list applications"
	StatusCode int    // zero when no HTTP response was received
	Message    string // backend-supplied message when present, else raw status
	Err        error  // underlying cause, may be nil
}

// Error implements the error interface.
func (e *APIError) Error() string {
	switch {
	case e.StatusCode > 0:
		return fmt.Sprintf("%s: %s (HTTP %d): %s", e.Op, e.Kind, e.StatusCode, e.Message)
	case e.Message != "":
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Message)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
}

// Unwrap exposes the underlying cause for errors.Is/errors.As chains.
func (e *APIError) Unwrap() error {
	return e.Err
}

// IsRateLimited reports whether err is an HTTP 429 from the backend.
func IsRateLimited(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == KindRateLimited
}

// classifyStatus maps an HTTP status code onto an ErrorKind.
// Statuses below 400 never reach this function.
func classifyStatus(status int) ErrorKind {
	switch {
	case status == 429:
		return KindRateLimited
	case status >= 500:
		return KindServer
	default:
		return KindClient
	}
}

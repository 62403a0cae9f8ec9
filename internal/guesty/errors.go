package guesty

import (
	"errors"
	"fmt"

	domain "github.com/donaldgifford/rental-gateway/pkg/types"
)

var (
	// ErrRateLimited is matched by every error returned while a broker is
	// backing off after a 429 from the token endpoint.
	ErrRateLimited = errors.New("token endpoint rate limited")

	// ErrMixedCurrency is returned when one response prices nights in more
	// than one currency.
	ErrMixedCurrency = errors.New("mixed currencies in one result")

	// ErrNoSource is returned when no pricing endpoint is configured.
	ErrNoSource = errors.New("no pricing endpoint configured")
)

// ValidationError is the domain validation error, re-exported for callers
// that only import this package.
type ValidationError = domain.ValidationError

// ConfigError reports missing or unusable configuration. It is fatal and
// never retried.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "guesty configuration: " + e.Reason
}

// UpstreamAuthError is returned when the token endpoint rejects a request.
// StatusCode is 0 for transport failures.
type UpstreamAuthError struct {
	Scope      string
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamAuthError) Error() string {
	msg := fmt.Sprintf("token request for scope %q failed (status %d)", e.Scope, e.StatusCode)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *UpstreamAuthError) Unwrap() error { return e.Err }

// UpstreamError is returned when a pricing endpoint answers non-2xx or
// cannot be reached. StatusCode is 0 for transport failures.
type UpstreamError struct {
	Source     string
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("guesty %s request failed: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("guesty %s API error (status %d): %s", e.Source, e.StatusCode, e.Body)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// ParseError is returned when an upstream body cannot be decoded or does
// not satisfy the result invariants.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s response: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

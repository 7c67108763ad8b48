package apiclient

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Kind classifies a request failure independently of the vendor that
// produced it. Kinds form a small hierarchy: a timeout is also a
// connection failure, and a not-found is also a request failure.
// HasKind honors that subsumption.
type Kind int

const (
	// KindRequest covers any request that failed for a reason no more
	// specific kind describes, including unexpected transport errors.
	KindRequest Kind = iota
	// KindConnection covers transport failures before a response was
	// received: DNS lookups, refused connections, resets.
	KindConnection
	// KindTimeout covers deadline expiry, both transport timeouts and
	// exceeded contexts. A timeout also matches KindConnection.
	KindTimeout
	// KindAuth covers 401 and 403 responses.
	KindAuth
	// KindNotFound covers 404 responses. A not-found also matches
	// KindRequest.
	KindNotFound
	// KindRateLimit covers 429 responses.
	KindRateLimit
	// KindServer covers 5xx responses.
	KindServer
	// KindParse covers 200 responses whose body is not valid JSON.
	KindParse
	// KindConfig covers invalid client construction, before any
	// request is made.
	KindConfig
	// KindUnavailable covers backends that answered but cannot serve
	// the resource right now, such as a model that is still loading.
	KindUnavailable
)

// String returns the human-readable name of the kind.
func (k Kind) String() string {
	switch k {
	case KindRequest:
		return "request failure"
	case KindConnection:
		return "connection failure"
	case KindTimeout:
		return "timeout"
	case KindAuth:
		return "authentication failure"
	case KindNotFound:
		return "not found"
	case KindRateLimit:
		return "rate limit exceeded"
	case KindServer:
		return "server failure"
	case KindParse:
		return "response parse failure"
	case KindConfig:
		return "client configuration failure"
	case KindUnavailable:
		return "resource unavailable"
	default:
		return "unknown failure"
	}
}

// isA reports whether k is classified under parent.
func (k Kind) isA(parent Kind) bool {
	if k == parent {
		return true
	}
	switch {
	case k == KindTimeout && parent == KindConnection:
		return true
	case k == KindNotFound && parent == KindRequest:
		return true
	}
	return false
}

// Error is the single error type produced by API clients. Kind carries
// the generic classification and Vendor names the backend the failure
// came from, so callers can match on either axis independently.
type Error struct {
	Kind       Kind
	Vendor     string
	Message    string
	StatusCode int
	// RetryAfter holds the server-advised cooldown on rate limit
	// errors, defaulted when the Retry-After header is absent.
	RetryAfter time.Duration
	// Resource identifies what was looked up on not-found errors.
	Resource string
	Err      error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	if e.Vendor != "" {
		b.WriteString(e.Vendor)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the classification of err. The second return is false
// when err does not wrap an API client error.
func KindOf(err error) (Kind, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind, true
	}
	return 0, false
}

// HasKind reports whether err carries kind, directly or through the
// hierarchy: a timeout error matches both KindTimeout and
// KindConnection, a not-found matches both KindNotFound and
// KindRequest.
func HasKind(err error, kind Kind) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Kind.isA(kind)
}

// FromVendor reports whether err originated from the named backend.
func FromVendor(err error, vendor string) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Vendor == vendor
}

// IsNotFound checks if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return HasKind(err, KindNotFound)
}

// IsRateLimit checks if the error indicates a rate limited request.
func IsRateLimit(err error) bool {
	return HasKind(err, KindRateLimit)
}

// IsAuth checks if the error indicates rejected credentials.
func IsAuth(err error) bool {
	return HasKind(err, KindAuth)
}

// IsTimeout checks if the error indicates an expired deadline.
func IsTimeout(err error) bool {
	return HasKind(err, KindTimeout)
}

// RetryAfterIn returns the server-advised cooldown carried by a rate
// limit error, or zero when err is not one.
func RetryAfterIn(err error) time.Duration {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Kind == KindRateLimit {
		return apiErr.RetryAfter
	}
	return 0
}

package tvdb

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/organarr/organarr/apiclient"
)

// Option configures a Client.
type Option func(*options)

type options struct {
	baseURL    string
	pin        string
	cacheSize  int
	autoRetry  bool
	timeout    time.Duration
	httpClient *http.Client
	logger     zerolog.Logger
}

func defaultOptions() options {
	return options{
		baseURL:   DefaultBaseURL,
		cacheSize: apiclient.DefaultCacheSize,
		timeout:   apiclient.DefaultTimeout,
		logger:    zerolog.Nop(),
	}
}

// WithBaseURL points the client at a different API root.
func WithBaseURL(baseURL string) Option {
	return func(o *options) {
		o.baseURL = baseURL
	}
}

// WithPIN adds the subscriber PIN to the login request. Required for
// user-supported API keys.
func WithPIN(pin string) Option {
	return func(o *options) {
		o.pin = pin
	}
}

// WithCacheSize bounds the response cache.
func WithCacheSize(size int) Option {
	return func(o *options) {
		o.cacheSize = size
	}
}

// WithAutoRetry makes the client recover from an expired token by
// logging in again, and from a rate limit by waiting out the advised
// cooldown. Each request retries at most once.
func WithAutoRetry(retry bool) Option {
	return func(o *options) {
		o.autoRetry = retry
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.timeout = timeout
	}
}

// WithHTTPClient swaps the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithLogger attaches a logger. Defaults to a no-op logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

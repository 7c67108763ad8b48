package apiclient

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// HeaderFunc supplies per-request headers, typically authentication
// tokens. It is called once per outbound request so refreshed sessions
// take effect without rebuilding the client.
type HeaderFunc func() map[string]string

// Option configures a Client.
type Option func(*clientOptions)

// clientOptions holds configuration options for the Client.
type clientOptions struct {
	vendor     string
	userAgent  string
	cacheSize  int
	autoRetry  bool
	timeout    time.Duration
	headerFn   HeaderFunc
	httpClient *http.Client
	logger     zerolog.Logger
}

func defaultOptions() clientOptions {
	return clientOptions{
		cacheSize: DefaultCacheSize,
		timeout:   DefaultTimeout,
		logger:    zerolog.Nop(),
	}
}

// WithVendor tags every error the client produces with the given
// backend name so callers can filter failures by origin.
func WithVendor(name string) Option {
	return func(o *clientOptions) {
		o.vendor = name
	}
}

// WithCacheSize bounds the response cache to n entries. Values below
// one keep the default.
func WithCacheSize(n int) Option {
	return func(o *clientOptions) {
		if n > 0 {
			o.cacheSize = n
		}
	}
}

// WithAutoRetry enables a single synchronous retry after a 429
// response, sleeping through the server-advised cooldown first.
func WithAutoRetry(enabled bool) Option {
	return func(o *clientOptions) {
		o.autoRetry = enabled
	}
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithHeaderFunc installs a callback that supplies authentication
// headers for every request. Caller-supplied headers on an individual
// request take precedence over these.
func WithHeaderFunc(fn HeaderFunc) Option {
	return func(o *clientOptions) {
		o.headerFn = fn
	}
}

// WithHTTPClient replaces the underlying HTTP client. WithTimeout is
// ignored when a custom client is supplied.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = hc
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(userAgent string) Option {
	return func(o *clientOptions) {
		o.userAgent = userAgent
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *clientOptions) {
		o.logger = logger
	}
}

package musicbrainz

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
	contact    string
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

// WithBaseURL points the client at a different web service root,
// e.g. a mirror or a test server.
func WithBaseURL(baseURL string) Option {
	return func(o *options) {
		o.baseURL = baseURL
	}
}

// WithContact adds a contact address (email or URL) to the User-Agent,
// as the MusicBrainz guidelines recommend.
func WithContact(contact string) Option {
	return func(o *options) {
		o.contact = contact
	}
}

// WithCacheSize bounds the memoized lookups and the underlying
// response cache.
func WithCacheSize(size int) Option {
	return func(o *options) {
		o.cacheSize = size
	}
}

// WithAutoRetry makes rate-limited calls cool down and retry instead
// of failing. Retries are bounded, never indefinite.
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

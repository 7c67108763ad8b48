package anidb

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Option configures a Client.
type Option func(*options)

type options struct {
	baseURL    string
	titlesURL  string
	httpClient *http.Client
	logger     zerolog.Logger
}

func defaultOptions() options {
	return options{
		baseURL:    DefaultBaseURL,
		titlesURL:  DefaultTitlesURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     zerolog.Nop(),
	}
}

// WithBaseURL points the client at a different HTTP API endpoint.
func WithBaseURL(baseURL string) Option {
	return func(o *options) {
		o.baseURL = baseURL
	}
}

// WithTitlesURL points the client at a different titles dump,
// e.g. a local mirror to spare the upstream bandwidth limits.
func WithTitlesURL(titlesURL string) Option {
	return func(o *options) {
		o.titlesURL = titlesURL
	}
}

// WithHTTPClient swaps the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		if client != nil {
			o.httpClient = client
		}
	}
}

// WithLogger attaches a logger. Defaults to a no-op logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

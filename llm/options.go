package llm

import (
	"net/http"

	"github.com/rs/zerolog"
)

// Option configures a Client.
type Option func(*options)

type options struct {
	apiKey      string
	temperature float32
	maxTokens   int
	httpClient  *http.Client
	logger      zerolog.Logger
}

func defaultOptions() options {
	return options{
		// Ollama ignores the key but go-openai requires one.
		apiKey:      "ollama",
		temperature: 0.2,
		maxTokens:   256,
		logger:      zerolog.Nop(),
	}
}

// WithAPIKey sets the bearer key for hosted endpoints.
func WithAPIKey(key string) Option {
	return func(o *options) {
		if key != "" {
			o.apiKey = key
		}
	}
}

// WithTemperature sets the sampling temperature. Filename extraction
// wants it low; the default is 0.2.
func WithTemperature(temperature float32) Option {
	return func(o *options) {
		o.temperature = temperature
	}
}

// WithMaxTokens caps the completion length.
func WithMaxTokens(maxTokens int) Option {
	return func(o *options) {
		if maxTokens > 0 {
			o.maxTokens = maxTokens
		}
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

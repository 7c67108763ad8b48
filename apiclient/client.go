package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/organarr/organarr/lru"
)

// Defaults applied when the corresponding option is not given.
const (
	DefaultCacheSize = 100
	DefaultTimeout   = 10 * time.Second

	// defaultRetryAfter is used when a 429 response carries no usable
	// Retry-After header.
	defaultRetryAfter = 60 * time.Second
)

// Authenticator is implemented by vendor clients that must establish a
// session before issuing requests. Implementations fail with a
// KindAuth error when credentials are rejected and keep whatever token
// state their header callback needs.
type Authenticator interface {
	Authenticate(ctx context.Context) error
}

// Client is the generic JSON request pipeline shared by every vendor
// integration. It joins endpoints onto a base URL, merges headers,
// caches GET responses in a bounded LRU, translates HTTP and transport
// failures into taxonomy errors, and optionally retries once after a
// rate limit response.
//
// The cache is safe for concurrent use; everything else on the client
// is immutable after construction.
type Client struct {
	baseURL    string
	vendor     string
	userAgent  string
	autoRetry  bool
	headerFn   HeaderFunc
	httpClient *http.Client
	cache      *lru.Cache
	logger     zerolog.Logger

	// sleep is swappable so tests can observe rate limit cooldowns
	// without blocking.
	sleep func(time.Duration)
}

// New creates a client rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, &Error{Kind: KindConfig, Message: "base URL is required"}
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	hc := o.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: o.timeout}
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		vendor:     o.vendor,
		userAgent:  o.userAgent,
		autoRetry:  o.autoRetry,
		headerFn:   o.headerFn,
		httpClient: hc,
		cache:      lru.New(o.cacheSize),
		logger:     o.logger,
		sleep:      time.Sleep,
	}, nil
}

// Vendor returns the backend tag carried by errors from this client.
func (c *Client) Vendor() string {
	return c.vendor
}

// RequestOption adjusts a single request.
type RequestOption func(*requestOptions)

type requestOptions struct {
	headers  map[string]string
	useCache bool
}

// WithHeaders adds extra headers to one request. They win over both
// the client defaults and the header callback.
func WithHeaders(headers map[string]string) RequestOption {
	return func(o *requestOptions) {
		o.headers = headers
	}
}

// WithoutCache sends the request to the network even when a cached
// response exists, and skips storing the result.
func WithoutCache() RequestOption {
	return func(o *requestOptions) {
		o.useCache = false
	}
}

// Get performs a GET request and returns the raw JSON body. Successful
// responses are cached, so two identical calls issue a single network
// request.
func (c *Client) Get(ctx context.Context, endpoint string, params map[string]string, opts ...RequestOption) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, endpoint, params, nil, opts)
}

// Post performs a POST request with a JSON-encoded body. Never cached.
func (c *Client) Post(ctx context.Context, endpoint string, body any, opts ...RequestOption) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, endpoint, nil, body, opts)
}

// Put performs a PUT request with a JSON-encoded body. Never cached.
func (c *Client) Put(ctx context.Context, endpoint string, body any, opts ...RequestOption) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPut, endpoint, nil, body, opts)
}

// Delete performs a DELETE request. Never cached.
func (c *Client) Delete(ctx context.Context, endpoint string, opts ...RequestOption) (json.RawMessage, error) {
	return c.do(ctx, http.MethodDelete, endpoint, nil, nil, opts)
}

// ClearCache evicts every cached response.
func (c *Client) ClearCache() {
	c.cache.Clear()
}

// do runs the shared request pipeline: cache lookup, send, single
// retry after a rate limit cooldown, cache fill.
func (c *Client) do(ctx context.Context, method, endpoint string, params map[string]string, body any, opts []RequestOption) (json.RawMessage, error) {
	ro := requestOptions{useCache: true}
	for _, opt := range opts {
		opt(&ro)
	}

	fullURL := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")

	// Only idempotent reads are cached.
	cacheable := method == http.MethodGet && ro.useCache
	var key string
	if cacheable {
		key = cacheKey(method, fullURL, params, body, ro.headers)
		if cached, ok := c.cache.Get(key); ok {
			c.logger.Trace().Str("url", fullURL).Msg("Cache hit")
			return cached.(json.RawMessage), nil
		}
	}

	raw, retry, err := c.send(ctx, method, fullURL, params, body, ro.headers, c.autoRetry)
	if retry {
		// The retried request is never retried again.
		raw, _, err = c.send(ctx, method, fullURL, params, body, ro.headers, false)
	}
	if err != nil {
		return nil, err
	}

	if cacheable {
		c.cache.Put(key, raw)
	}
	return raw, nil
}

// send issues one HTTP request and classifies the outcome. When the
// response is a 429 and allowRetry is set, it sleeps through the
// advised cooldown and signals the caller to retry instead of failing.
func (c *Client) send(ctx context.Context, method, fullURL string, params map[string]string, body any, extra map[string]string, allowRetry bool) (json.RawMessage, bool, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, false, &Error{Kind: KindRequest, Vendor: c.vendor, Message: "failed to encode request body", Err: err}
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
	if err != nil {
		return nil, false, &Error{Kind: KindRequest, Vendor: c.vendor, Message: "failed to build request", Err: err}
	}

	if len(params) > 0 {
		q := req.URL.Query()
		for k, v := range params {
			q.Set(k, v)
		}
		req.URL.RawQuery = q.Encode()
	}

	c.setHeaders(req, extra)

	c.logger.Trace().
		Str("method", method).
		Str("url", req.URL.String()).
		Msg("Issuing API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, false, c.transportError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, &Error{Kind: KindRequest, Vendor: c.vendor, Message: "failed to read response body", Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		if !json.Valid(respBody) {
			return nil, false, &Error{Kind: KindParse, Vendor: c.vendor, Message: "response body is not valid JSON", StatusCode: resp.StatusCode}
		}
		return json.RawMessage(respBody), false, nil

	case resp.StatusCode == http.StatusNotFound:
		return nil, false, &Error{Kind: KindNotFound, Vendor: c.vendor, Message: trimBody(respBody), StatusCode: resp.StatusCode, Resource: req.URL.Path}

	case resp.StatusCode == http.StatusTooManyRequests:
		retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
		if allowRetry {
			c.logger.Debug().
				Str("url", req.URL.String()).
				Dur("retry_after", retryAfter).
				Msg("Rate limited, retrying once after cooldown")
			c.sleep(retryAfter)
			return nil, true, nil
		}
		return nil, false, &Error{Kind: KindRateLimit, Vendor: c.vendor, Message: trimBody(respBody), StatusCode: resp.StatusCode, RetryAfter: retryAfter}

	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, false, &Error{Kind: KindAuth, Vendor: c.vendor, Message: trimBody(respBody), StatusCode: resp.StatusCode}

	case resp.StatusCode >= 500 && resp.StatusCode <= 599:
		return nil, false, &Error{Kind: KindServer, Vendor: c.vendor, Message: trimBody(respBody), StatusCode: resp.StatusCode}

	default:
		return nil, false, &Error{Kind: KindRequest, Vendor: c.vendor, Message: trimBody(respBody), StatusCode: resp.StatusCode}
	}
}

// setHeaders merges the three header layers onto req. Caller extras
// win over the header callback, which wins over the defaults.
func (c *Client) setHeaders(req *http.Request, extra map[string]string) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.headerFn != nil {
		for k, v := range c.headerFn() {
			req.Header.Set(k, v)
		}
	}
	for k, v := range extra {
		req.Header.Set(k, v)
	}
}

// transportError classifies an error from the HTTP round trip.
func (c *Client) transportError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Kind: KindTimeout, Vendor: c.vendor, Message: "request timed out", Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Vendor: c.vendor, Message: "request deadline exceeded", Err: err}
	}

	var opErr *net.OpError
	var dnsErr *net.DNSError
	if errors.As(err, &opErr) || errors.As(err, &dnsErr) {
		return &Error{Kind: KindConnection, Vendor: c.vendor, Message: "connection failed", Err: err}
	}

	return &Error{Kind: KindRequest, Vendor: c.vendor, Message: err.Error(), Err: err}
}

// cacheKey builds the canonical key for one request. encoding/json
// serializes map keys in sorted order, so logically identical
// parameter sets always produce identical keys regardless of
// insertion order.
func cacheKey(method, fullURL string, params map[string]string, body any, headers map[string]string) string {
	var b strings.Builder
	b.WriteString(method)
	b.WriteByte(' ')
	b.WriteString(fullURL)
	for _, part := range []any{params, body, headers} {
		b.WriteByte('|')
		if part == nil {
			continue
		}
		data, err := json.Marshal(part)
		if err != nil {
			fmt.Fprintf(&b, "%+v", part)
			continue
		}
		b.Write(data)
	}
	return b.String()
}

// parseRetryAfter reads a Retry-After header value in whole seconds.
// Missing or malformed values fall back to the 60 second default.
func parseRetryAfter(value string) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return defaultRetryAfter
	}
	secs, err := strconv.Atoi(value)
	if err != nil || secs < 0 {
		return defaultRetryAfter
	}
	return time.Duration(secs) * time.Second
}

// trimBody reduces a response body to a short single-line message
// suitable for error text.
func trimBody(body []byte) string {
	s := strings.TrimSpace(string(body))
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}

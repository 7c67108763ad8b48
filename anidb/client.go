package anidb

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/organarr/organarr/apiclient"
)

const (
	// DefaultBaseURL is the AniDB HTTP API endpoint.
	DefaultBaseURL = "http://api.anidb.net:9001/httpapi"

	// DefaultTitlesURL is the daily titles dump used for searching.
	DefaultTitlesURL = "https://anidb.net/api/animetitles.xml"

	// protoVersion is the HTTP API protocol version.
	protoVersion = 1

	// AniDB enforces a hard one-request-per-two-seconds limit and bans
	// clients that breach it.
	requestInterval = 2 * time.Second

	vendorName = "anidb"
)

// Client is an AniDB HTTP API client. The API serves XML and bans
// aggressive clients outright, so every request goes through a hard
// one-per-two-seconds limiter. Searching runs against the daily titles
// dump, fetched once and kept for the life of the client.
type Client struct {
	clientName    string
	clientVersion int
	baseURL       string
	titlesURL     string
	httpClient    *http.Client
	limiter       *rate.Limiter
	logger        zerolog.Logger

	mu     sync.Mutex
	titles []AnimeTitles
}

// NewClient creates an AniDB client. AniDB requires every consumer to
// register a client name and version and rejects unattributed
// requests, so both are mandatory.
func NewClient(clientName string, clientVersion int, opts ...Option) (*Client, error) {
	if strings.TrimSpace(clientName) == "" {
		return nil, fmt.Errorf("anidb: registered client name is required")
	}
	if clientVersion <= 0 {
		return nil, fmt.Errorf("anidb: client version must be positive")
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return &Client{
		clientName:    clientName,
		clientVersion: clientVersion,
		baseURL:       o.baseURL,
		titlesURL:     o.titlesURL,
		httpClient:    o.httpClient,
		limiter:       rate.NewLimiter(rate.Every(requestInterval), 1),
		logger:        o.logger,
	}, nil
}

// fetch runs one rate-limited GET and decodes the XML payload into
// out. Failures are classified into the shared error taxonomy.
func (c *Client) fetch(ctx context.Context, rawURL string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &apiclient.Error{Kind: apiclient.KindTimeout, Vendor: vendorName, Message: "rate limiter wait aborted", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return &apiclient.Error{Kind: apiclient.KindRequest, Vendor: vendorName, Message: "failed to build request", Err: err}
	}

	c.logger.Trace().Str("url", rawURL).Msg("Issuing AniDB request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &apiclient.Error{Kind: apiclient.KindConnection, Vendor: vendorName, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &apiclient.Error{Kind: apiclient.KindRequest, Vendor: vendorName, Message: "failed to read response body", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return statusError(resp.StatusCode)
	}

	// The API reports bans and bad client registrations inside a 200.
	var apiErr apiError
	if xml.Unmarshal(body, &apiErr) == nil {
		return &apiclient.Error{
			Kind:       apiclient.KindUnavailable,
			Vendor:     vendorName,
			Message:    strings.TrimSpace(apiErr.Message),
			StatusCode: apiErr.Code,
		}
	}

	if err := xml.Unmarshal(body, out); err != nil {
		return &apiclient.Error{Kind: apiclient.KindParse, Vendor: vendorName, Message: "failed to decode XML response", Err: err}
	}
	return nil
}

func statusError(status int) *apiclient.Error {
	e := &apiclient.Error{Vendor: vendorName, StatusCode: status}
	switch {
	case status == http.StatusNotFound:
		e.Kind = apiclient.KindNotFound
		e.Message = "resource not found"
	case status == http.StatusTooManyRequests:
		e.Kind = apiclient.KindRateLimit
		e.Message = "rate limit exceeded"
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		e.Kind = apiclient.KindAuth
		e.Message = "request rejected"
	case status >= 500:
		e.Kind = apiclient.KindServer
		e.Message = "server error"
	default:
		e.Kind = apiclient.KindRequest
		e.Message = fmt.Sprintf("request failed with status %d", status)
	}
	return e
}

// AnimeTitles returns the full titles dump, fetching it on first use.
func (c *Client) AnimeTitles(ctx context.Context) ([]AnimeTitles, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.titles != nil {
		return c.titles, nil
	}

	var dump animeTitlesDump
	if err := c.fetch(ctx, c.titlesURL, &dump); err != nil {
		return nil, err
	}

	c.logger.Debug().Int("anime", len(dump.Anime)).Msg("Loaded AniDB titles dump")
	c.titles = dump.Anime
	return c.titles, nil
}

// SearchAnime finds anime whose titles contain the query,
// case-insensitively. The HTTP API has no search endpoint; the titles
// dump is the search corpus.
func (c *Client) SearchAnime(ctx context.Context, query string) ([]AnimeTitles, error) {
	titles, err := c.AnimeTitles(ctx)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	var matches []AnimeTitles
	for _, anime := range titles {
		for _, t := range anime.Titles {
			if strings.Contains(strings.ToLower(t.Value), needle) {
				matches = append(matches, anime)
				break
			}
		}
	}

	c.logger.Debug().
		Str("query", query).
		Int("results", len(matches)).
		Msg("AniDB title search")
	return matches, nil
}

// GetAnime fetches one anime by AniDB ID, episodes included.
func (c *Client) GetAnime(ctx context.Context, aid int64) (*Anime, error) {
	params := url.Values{}
	params.Set("request", "anime")
	params.Set("client", c.clientName)
	params.Set("clientver", strconv.Itoa(c.clientVersion))
	params.Set("protover", strconv.Itoa(protoVersion))
	params.Set("aid", strconv.FormatInt(aid, 10))

	var anime Anime
	if err := c.fetch(ctx, c.baseURL+"?"+params.Encode(), &anime); err != nil {
		return nil, err
	}
	return &anime, nil
}

// TestConnection verifies the titles dump is reachable.
func (c *Client) TestConnection(ctx context.Context) error {
	if _, err := c.AnimeTitles(ctx); err != nil {
		return fmt.Errorf("failed to connect to AniDB: %w", err)
	}
	return nil
}

// ClearCache drops the cached titles dump; the next search fetches a
// fresh copy.
func (c *Client) ClearCache() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.titles = nil
}

package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/organarr/organarr/apiclient"
)

// DefaultBaseURL is the TMDB v3 API root.
const DefaultBaseURL = "https://api.themoviedb.org/3"

const vendorName = "tmdb"

// Client is a TMDB v3 API client. Authentication uses the api_key
// query parameter on every request.
type Client struct {
	api      *apiclient.Client
	apiKey   string
	language string
	logger   zerolog.Logger

	// The configuration payload changes rarely, so it is fetched once
	// per client and reused for image URL building.
	mu     sync.Mutex
	config *Configuration
}

// NewClient creates a TMDB client.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("tmdb: API key is required")
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	apiOpts := []apiclient.Option{
		apiclient.WithVendor(vendorName),
		apiclient.WithCacheSize(o.cacheSize),
		apiclient.WithAutoRetry(o.autoRetry),
		apiclient.WithTimeout(o.timeout),
		apiclient.WithLogger(o.logger),
	}
	if o.httpClient != nil {
		apiOpts = append(apiOpts, apiclient.WithHTTPClient(o.httpClient))
	}

	api, err := apiclient.New(o.baseURL, apiOpts...)
	if err != nil {
		return nil, err
	}

	return &Client{
		api:      api,
		apiKey:   apiKey,
		language: o.language,
		logger:   o.logger,
	}, nil
}

// params returns the base query parameters every TMDB request carries,
// merged with extra.
func (c *Client) params(extra map[string]string) map[string]string {
	p := map[string]string{"api_key": c.apiKey}
	if c.language != "" {
		p["language"] = c.language
	}
	for k, v := range extra {
		p[k] = v
	}
	return p
}

func (c *Client) get(ctx context.Context, endpoint string, params map[string]string, out any) error {
	raw, err := c.api.Get(ctx, endpoint, c.params(params))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &apiclient.Error{
			Kind:    apiclient.KindParse,
			Vendor:  vendorName,
			Message: "failed to decode response",
			Err:     err,
		}
	}
	return nil
}

// TestConnection verifies the API key by fetching the configuration.
func (c *Client) TestConnection(ctx context.Context) error {
	if _, err := c.GetConfiguration(ctx); err != nil {
		return fmt.Errorf("failed to connect to TMDB: %w", err)
	}
	return nil
}

// SearchMovie searches movies by title. A non-zero year narrows the
// search to that release year.
func (c *Client) SearchMovie(ctx context.Context, query string, year int) ([]Movie, error) {
	params := map[string]string{"query": query}
	if year > 0 {
		params["year"] = strconv.Itoa(year)
	}

	var resp movieSearchResponse
	if err := c.get(ctx, "search/movie", params, &resp); err != nil {
		return nil, err
	}

	c.logger.Debug().
		Str("query", query).
		Int("results", len(resp.Results)).
		Msg("TMDB movie search")
	return resp.Results, nil
}

// SearchTV searches TV series by name. A non-zero year narrows the
// search to series that first aired that year.
func (c *Client) SearchTV(ctx context.Context, query string, firstAirDateYear int) ([]Show, error) {
	params := map[string]string{"query": query}
	if firstAirDateYear > 0 {
		params["first_air_date_year"] = strconv.Itoa(firstAirDateYear)
	}

	var resp showSearchResponse
	if err := c.get(ctx, "search/tv", params, &resp); err != nil {
		return nil, err
	}

	c.logger.Debug().
		Str("query", query).
		Int("results", len(resp.Results)).
		Msg("TMDB series search")
	return resp.Results, nil
}

// GetMovieDetails fetches one movie by TMDB ID. Extra sub-resources
// (credits, videos, external_ids) can be appended to the response.
func (c *Client) GetMovieDetails(ctx context.Context, movieID int64, appendToResponse ...string) (*Movie, error) {
	params := map[string]string{}
	if len(appendToResponse) > 0 {
		params["append_to_response"] = strings.Join(appendToResponse, ",")
	}

	var movie Movie
	if err := c.get(ctx, fmt.Sprintf("movie/%d", movieID), params, &movie); err != nil {
		return nil, err
	}
	return &movie, nil
}

// GetTVDetails fetches one series by TMDB ID. Extra sub-resources can
// be appended to the response.
func (c *Client) GetTVDetails(ctx context.Context, showID int64, appendToResponse ...string) (*Show, error) {
	params := map[string]string{}
	if len(appendToResponse) > 0 {
		params["append_to_response"] = strings.Join(appendToResponse, ",")
	}

	var show Show
	if err := c.get(ctx, fmt.Sprintf("tv/%d", showID), params, &show); err != nil {
		return nil, err
	}
	return &show, nil
}

// GetSeasonDetails fetches a season's full episode list.
func (c *Client) GetSeasonDetails(ctx context.Context, showID int64, seasonNumber int) (*SeasonDetails, error) {
	var season SeasonDetails
	endpoint := fmt.Sprintf("tv/%d/season/%d", showID, seasonNumber)
	if err := c.get(ctx, endpoint, nil, &season); err != nil {
		return nil, err
	}
	return &season, nil
}

// GetConfiguration fetches the API configuration. The result is kept
// for the life of the client.
func (c *Client) GetConfiguration(ctx context.Context) (*Configuration, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.config != nil {
		return c.config, nil
	}

	var config Configuration
	if err := c.get(ctx, "configuration", nil, &config); err != nil {
		return nil, err
	}

	c.config = &config
	return c.config, nil
}

// PosterURL turns an image path from a search or details payload into
// a full CDN URL. An empty size means the original resolution.
func (c *Client) PosterURL(ctx context.Context, path, size string) (string, error) {
	if path == "" {
		return "", nil
	}
	if size == "" {
		size = "original"
	}

	config, err := c.GetConfiguration(ctx)
	if err != nil {
		return "", err
	}

	base := config.Images.SecureBaseURL
	if base == "" {
		base = config.Images.BaseURL
	}
	return base + size + path, nil
}

// ClearCache evicts cached responses and the stored configuration.
func (c *Client) ClearCache() {
	c.mu.Lock()
	c.config = nil
	c.mu.Unlock()
	c.api.ClearCache()
}

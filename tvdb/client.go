package tvdb

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/organarr/organarr/apiclient"
)

const (
	// DefaultBaseURL is the TVDB v4 API root.
	DefaultBaseURL = "https://api4.thetvdb.com/v4"

	// DefaultSeasonType is the episode ordering used when the caller
	// does not ask for a specific one.
	DefaultSeasonType = "Aired Order"

	// tokenLifetime is how long TVDB bearer tokens stay valid.
	tokenLifetime = 24 * time.Hour

	vendorName = "tvdb"
)

// Client is a TVDB v4 API client. Authentication is lazy: the first
// request logs in with the API key (and subscriber PIN, if set) and
// the bearer token is reused until it expires.
type Client struct {
	api       *apiclient.Client
	apiKey    string
	pin       string
	autoRetry bool
	logger    zerolog.Logger

	mu           sync.Mutex
	token        string
	tokenExpires time.Time
	now          func() time.Time
}

// NewClient creates a TVDB client.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("tvdb: API key is required")
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	c := &Client{
		apiKey:    apiKey,
		pin:       o.pin,
		autoRetry: o.autoRetry,
		logger:    o.logger,
		now:       time.Now,
	}

	apiOpts := []apiclient.Option{
		apiclient.WithVendor(vendorName),
		apiclient.WithCacheSize(o.cacheSize),
		apiclient.WithAutoRetry(o.autoRetry),
		apiclient.WithTimeout(o.timeout),
		apiclient.WithLogger(o.logger),
		apiclient.WithHeaderFunc(c.authHeader),
	}
	if o.httpClient != nil {
		apiOpts = append(apiOpts, apiclient.WithHTTPClient(o.httpClient))
	}

	api, err := apiclient.New(o.baseURL, apiOpts...)
	if err != nil {
		return nil, err
	}
	c.api = api

	return c, nil
}

// authHeader supplies the bearer token for every request. Empty until
// the first successful login, which is fine for the login call itself.
func (c *Client) authHeader() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token == "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + c.token}
}

// Authenticate logs in and stores the bearer token. Most callers
// never need this directly; every lookup authenticates on demand.
func (c *Client) Authenticate(ctx context.Context) error {
	body := map[string]string{"apikey": c.apiKey}
	if c.pin != "" {
		body["pin"] = c.pin
	}

	raw, err := c.api.Post(ctx, "login", body)
	if err != nil {
		return fmt.Errorf("tvdb authentication failed: %w", err)
	}

	var resp loginResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return &apiclient.Error{
			Kind:    apiclient.KindParse,
			Vendor:  vendorName,
			Message: "failed to decode login response",
			Err:     err,
		}
	}
	if resp.Data.Token == "" {
		return ErrMissingToken
	}

	c.mu.Lock()
	c.token = resp.Data.Token
	c.tokenExpires = c.now().Add(tokenLifetime)
	c.mu.Unlock()

	c.logger.Debug().Msg("Authenticated with TVDB")
	return nil
}

// IsAuthenticated reports whether the client holds an unexpired token.
func (c *Client) IsAuthenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token != "" && c.now().Before(c.tokenExpires)
}

func (c *Client) ensureAuthenticated(ctx context.Context) error {
	if c.IsAuthenticated() {
		return nil
	}
	return c.Authenticate(ctx)
}

func (c *Client) invalidateToken() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

// get runs an authenticated GET. A 401 means the token died early
// (revoked key, server-side expiry drift); with auto-retry on, the
// client logs in again and repeats the request once.
func (c *Client) get(ctx context.Context, endpoint string, params map[string]string, out any) error {
	if err := c.ensureAuthenticated(ctx); err != nil {
		return err
	}

	raw, err := c.api.Get(ctx, endpoint, params)
	if err != nil && apiclient.IsAuth(err) && c.autoRetry {
		c.logger.Debug().Str("endpoint", endpoint).Msg("Token rejected, re-authenticating")
		c.invalidateToken()
		if err := c.ensureAuthenticated(ctx); err != nil {
			return err
		}
		raw, err = c.api.Get(ctx, endpoint, params)
	}
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

// TestConnection verifies the API key by logging in.
func (c *Client) TestConnection(ctx context.Context) error {
	if err := c.Authenticate(ctx); err != nil {
		return fmt.Errorf("failed to connect to TVDB: %w", err)
	}
	return nil
}

// SearchSeries searches series by name.
func (c *Client) SearchSeries(ctx context.Context, name string) ([]SearchResult, error) {
	params := map[string]string{
		"query": name,
		"type":  "series",
	}

	var resp searchResponse
	if err := c.get(ctx, "search", params, &resp); err != nil {
		return nil, err
	}

	c.logger.Debug().
		Str("query", name).
		Int("results", len(resp.Data)).
		Msg("TVDB series search")
	return resp.Data, nil
}

// GetSeries fetches one series by TVDB ID.
func (c *Client) GetSeries(ctx context.Context, seriesID int64) (*Series, error) {
	var resp seriesResponse
	if err := c.get(ctx, fmt.Sprintf("series/%d", seriesID), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// GetSeriesExtended fetches a series with its season list attached.
func (c *Client) GetSeriesExtended(ctx context.Context, seriesID int64) (*SeriesExtended, error) {
	var resp seriesExtendedResponse
	if err := c.get(ctx, fmt.Sprintf("series/%d/extended", seriesID), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// GetSeriesEpisodes fetches every episode of a series in the default
// ordering.
func (c *Client) GetSeriesEpisodes(ctx context.Context, seriesID int64) ([]Episode, error) {
	var resp episodesResponse
	endpoint := fmt.Sprintf("series/%d/episodes/default", seriesID)
	if err := c.get(ctx, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data.Episodes, nil
}

// GetSeasonEpisodes fetches the episodes of one season. TVDB models
// each ordering (aired, DVD, absolute) as a separate season record, so
// the lookup resolves the season ID first: exact ordering match wins,
// then "Aired Order", then whichever is listed first. An unknown
// season number returns an empty list rather than an error. An empty
// seasonType means DefaultSeasonType.
func (c *Client) GetSeasonEpisodes(ctx context.Context, seriesID int64, seasonNumber int, seasonType string) ([]Episode, error) {
	if seasonType == "" {
		seasonType = DefaultSeasonType
	}

	extended, err := c.GetSeriesExtended(ctx, seriesID)
	if err != nil {
		return nil, err
	}

	var matching []Season
	for _, season := range extended.Seasons {
		if season.Number == seasonNumber {
			matching = append(matching, season)
		}
	}
	if len(matching) == 0 {
		c.logger.Warn().
			Int64("series_id", seriesID).
			Int("season", seasonNumber).
			Msg("Season not found")
		return nil, nil
	}

	seasonID := matching[0].ID
	for _, want := range []string{seasonType, DefaultSeasonType} {
		if id, ok := seasonByType(matching, want); ok {
			seasonID = id
			break
		}
	}

	var resp episodesResponse
	endpoint := fmt.Sprintf("seasons/%d/episodes", seasonID)
	if err := c.get(ctx, endpoint, nil, &resp); err != nil {
		return nil, err
	}

	c.logger.Debug().
		Int64("series_id", seriesID).
		Int("season", seasonNumber).
		Int("episodes", len(resp.Data.Episodes)).
		Msg("Fetched season episodes")
	return resp.Data.Episodes, nil
}

func seasonByType(seasons []Season, typeName string) (int64, bool) {
	for _, s := range seasons {
		if s.Type.Name == typeName {
			return s.ID, true
		}
	}
	return 0, false
}

// ClearCache evicts every cached response. The bearer token survives.
func (c *Client) ClearCache() {
	c.api.ClearCache()
}

// ParseID turns a series identifier into a numeric TVDB ID. Search
// results prefix theirs ("series-79349"); plain numbers pass through.
func ParseID(id string) (int64, error) {
	id = strings.TrimPrefix(id, "series-")
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return n, nil
}

package tvmaze

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/organarr/organarr/apiclient"
)

// DefaultBaseURL is the public TVMaze API root.
const DefaultBaseURL = "https://api.tvmaze.com"

const vendorName = "tvmaze"

// Client is a TVMaze API client. The API is free and unauthenticated,
// which makes it the fallback catalog when no TVDB or TMDB key is
// configured.
type Client struct {
	api    *apiclient.Client
	logger zerolog.Logger
}

// NewClient creates a TVMaze client.
func NewClient(opts ...Option) (*Client, error) {
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

	return &Client{api: api, logger: o.logger}, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params map[string]string, out any) error {
	raw, err := c.api.Get(ctx, endpoint, params)
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

// TestConnection verifies the service is reachable.
func (c *Client) TestConnection(ctx context.Context) error {
	var show Show
	if err := c.get(ctx, "shows/1", nil, &show); err != nil {
		return fmt.Errorf("failed to connect to TVMaze: %w", err)
	}
	return nil
}

// SearchShows searches shows by name. Results are ordered by
// relevance, best first.
func (c *Client) SearchShows(ctx context.Context, query string) ([]ScoredShow, error) {
	var results []ScoredShow
	if err := c.get(ctx, "search/shows", map[string]string{"q": query}, &results); err != nil {
		return nil, err
	}

	c.logger.Debug().
		Str("query", query).
		Int("results", len(results)).
		Msg("TVMaze show search")
	return results, nil
}

// SearchPeople searches actors and crew by name.
func (c *Client) SearchPeople(ctx context.Context, query string) ([]ScoredPerson, error) {
	var results []ScoredPerson
	if err := c.get(ctx, "search/people", map[string]string{"q": query}, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// GetShow fetches one show by TVMaze ID.
func (c *Client) GetShow(ctx context.Context, showID int64) (*Show, error) {
	var show Show
	if err := c.get(ctx, fmt.Sprintf("shows/%d", showID), nil, &show); err != nil {
		return nil, err
	}
	return &show, nil
}

// GetShowByIMDBID resolves a show through its IMDB identifier.
func (c *Client) GetShowByIMDBID(ctx context.Context, imdbID string) (*Show, error) {
	var show Show
	if err := c.get(ctx, "lookup/shows", map[string]string{"imdb": imdbID}, &show); err != nil {
		return nil, err
	}
	return &show, nil
}

// GetEpisodes fetches every episode of a show.
func (c *Client) GetEpisodes(ctx context.Context, showID int64) ([]Episode, error) {
	var episodes []Episode
	if err := c.get(ctx, fmt.Sprintf("shows/%d/episodes", showID), nil, &episodes); err != nil {
		return nil, err
	}
	return episodes, nil
}

// GetEpisodeByNumber fetches one episode by season and episode number.
func (c *Client) GetEpisodeByNumber(ctx context.Context, showID int64, season, number int) (*Episode, error) {
	params := map[string]string{
		"season": strconv.Itoa(season),
		"number": strconv.Itoa(number),
	}

	var episode Episode
	endpoint := fmt.Sprintf("shows/%d/episodebynumber", showID)
	if err := c.get(ctx, endpoint, params, &episode); err != nil {
		return nil, err
	}
	return &episode, nil
}

// GetShowCast fetches a show's cast list.
func (c *Client) GetShowCast(ctx context.Context, showID int64) ([]CastMember, error) {
	var cast []CastMember
	if err := c.get(ctx, fmt.Sprintf("shows/%d/cast", showID), nil, &cast); err != nil {
		return nil, err
	}
	return cast, nil
}

// ClearCache evicts every cached response.
func (c *Client) ClearCache() {
	c.api.ClearCache()
}

package musicbrainz

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
	"github.com/organarr/organarr/lru"
)

const (
	// DefaultBaseURL is the public MusicBrainz web service root.
	DefaultBaseURL = "https://musicbrainz.org/ws/2"

	// minInterval is the gap MusicBrainz asks anonymous clients to keep
	// between requests.
	// https://musicbrainz.org/doc/MusicBrainz_API/Rate_Limiting
	minInterval = time.Second

	// rateLimitCooldown is how long to back off after a 429 before the
	// next attempt.
	rateLimitCooldown = 2 * time.Second

	// maxAttempts bounds how many times a single call hits the network
	// when every attempt comes back rate limited.
	maxAttempts = 3

	// matchScore is the confidence assigned to a first-result match at
	// each verification level.
	matchScore = 0.8

	vendorName = "musicbrainz"
)

// Client is a MusicBrainz API client that honors the service's
// one-request-per-second guideline. Lookups are memoized, so repeated
// calls with the same arguments never spend rate budget.
type Client struct {
	api       *apiclient.Client
	memo      *lru.Cache
	autoRetry bool
	userAgent string
	logger    zerolog.Logger

	// Pacer state. lastRequest is claimed under mu before each request
	// goes out so concurrent callers space out instead of stampeding.
	mu          sync.Mutex
	lastRequest time.Time
	now         func() time.Time
	sleep       func(time.Duration)
}

// NewClient creates a MusicBrainz client. The application name and
// version are required because MusicBrainz rejects requests without a
// meaningful User-Agent; pass WithContact to include a contact address
// as their guidelines recommend.
func NewClient(appName, appVersion string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(appName) == "" {
		return nil, fmt.Errorf("musicbrainz: application name is required for the User-Agent")
	}
	if strings.TrimSpace(appVersion) == "" {
		return nil, fmt.Errorf("musicbrainz: application version is required for the User-Agent")
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	userAgent := appName + "/" + appVersion
	if o.contact != "" {
		userAgent += " ( " + o.contact + " )"
	}

	apiOpts := []apiclient.Option{
		apiclient.WithVendor(vendorName),
		apiclient.WithUserAgent(userAgent),
		apiclient.WithCacheSize(o.cacheSize),
		apiclient.WithTimeout(o.timeout),
		apiclient.WithLogger(o.logger),
	}
	if o.httpClient != nil {
		apiOpts = append(apiOpts, apiclient.WithHTTPClient(o.httpClient))
	}

	// Rate-limit retries are handled here, between pacer waits, so the
	// underlying client's own retry stays off.
	api, err := apiclient.New(o.baseURL, apiOpts...)
	if err != nil {
		return nil, err
	}

	o.logger.Debug().Str("user_agent", userAgent).Msg("Initialized MusicBrainz client")

	return &Client{
		api:       api,
		memo:      lru.New(o.cacheSize),
		autoRetry: o.autoRetry,
		userAgent: userAgent,
		logger:    o.logger,
		now:       time.Now,
		sleep:     time.Sleep,
	}, nil
}

// UserAgent returns the User-Agent string sent with every request.
func (c *Client) UserAgent() string {
	return c.userAgent
}

// TestConnection verifies the service is reachable by fetching a
// well-known artist record.
func (c *Client) TestConnection(ctx context.Context) error {
	// The Beatles. Stable since 2003, so a safe liveness probe.
	const probe = "artist/b10bbbfc-cf9e-42e0-be17-e2c3e1d2600d"
	if err := c.get(ctx, probe, nil, nil); err != nil {
		return fmt.Errorf("failed to connect to MusicBrainz: %w", err)
	}
	return nil
}

// wait enforces the courtesy interval. The first call passes through
// immediately; later calls sleep out the remainder of the interval
// measured from the previous claim.
func (c *Client) wait() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.lastRequest.IsZero() {
		if elapsed := c.now().Sub(c.lastRequest); elapsed < minInterval {
			d := minInterval - elapsed
			c.logger.Trace().Dur("sleep", d).Msg("Pacing MusicBrainz request")
			c.sleep(d)
		}
	}
	c.lastRequest = c.now()
}

// get runs one paced request and decodes the response into out. A 429
// aborts immediately unless auto-retry is on, in which case the call
// cools down, re-enters the pacer, and tries again up to maxAttempts
// total before giving up with the rate-limit error.
func (c *Client) get(ctx context.Context, endpoint string, params map[string]string, out any) error {
	if params == nil {
		params = make(map[string]string, 1)
	}
	params["fmt"] = "json"

	for attempt := 1; ; attempt++ {
		c.wait()

		raw, err := c.api.Get(ctx, endpoint, params)
		if err == nil {
			if out == nil {
				return nil
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

		if !apiclient.IsRateLimit(err) || !c.autoRetry || attempt == maxAttempts {
			return err
		}

		c.logger.Warn().
			Int("attempt", attempt).
			Str("endpoint", endpoint).
			Msg("MusicBrainz rate limit exceeded, cooling down")
		c.sleep(rateLimitCooldown)
	}
}

// SearchArtist searches artists by free-text query. Results are
// memoized per query.
func (c *Client) SearchArtist(ctx context.Context, query string) ([]Artist, error) {
	key := memoKey("search-artist", query)
	if v, ok := c.memo.Get(key); ok {
		return v.([]Artist), nil
	}

	var resp searchArtistsResponse
	if err := c.get(ctx, "artist", map[string]string{"query": query}, &resp); err != nil {
		return nil, err
	}

	c.memo.Put(key, resp.Artists)
	return resp.Artists, nil
}

// GetArtist fetches one artist by MusicBrainz ID, optionally with its
// releases attached.
func (c *Client) GetArtist(ctx context.Context, mbid string, includeReleases bool) (*Artist, error) {
	key := memoKey("artist", mbid, strconv.FormatBool(includeReleases))
	if v, ok := c.memo.Get(key); ok {
		return v.(*Artist), nil
	}

	params := map[string]string{}
	if includeReleases {
		params["inc"] = "releases"
	}

	var artist Artist
	if err := c.get(ctx, "artist/"+mbid, params, &artist); err != nil {
		return nil, err
	}

	c.memo.Put(key, &artist)
	return &artist, nil
}

// SearchRelease searches releases. The query may use MusicBrainz field
// syntax, e.g. "release:Abbey Road AND artist:The Beatles".
func (c *Client) SearchRelease(ctx context.Context, query string) ([]Release, error) {
	key := memoKey("search-release", query)
	if v, ok := c.memo.Get(key); ok {
		return v.([]Release), nil
	}

	var resp searchReleasesResponse
	if err := c.get(ctx, "release", map[string]string{"query": query}, &resp); err != nil {
		return nil, err
	}

	c.memo.Put(key, resp.Releases)
	return resp.Releases, nil
}

// GetRelease fetches one release by MusicBrainz ID, optionally with
// its track lists attached.
func (c *Client) GetRelease(ctx context.Context, mbid string, includeRecordings bool) (*Release, error) {
	key := memoKey("release", mbid, strconv.FormatBool(includeRecordings))
	if v, ok := c.memo.Get(key); ok {
		return v.(*Release), nil
	}

	params := map[string]string{}
	if includeRecordings {
		params["inc"] = "recordings"
	}

	var release Release
	if err := c.get(ctx, "release/"+mbid, params, &release); err != nil {
		return nil, err
	}

	c.memo.Put(key, &release)
	return &release, nil
}

// SearchRecording searches recordings (individual tracks).
func (c *Client) SearchRecording(ctx context.Context, query string) ([]Recording, error) {
	key := memoKey("search-recording", query)
	if v, ok := c.memo.Get(key); ok {
		return v.([]Recording), nil
	}

	var resp searchRecordingsResponse
	if err := c.get(ctx, "recording", map[string]string{"query": query}, &resp); err != nil {
		return nil, err
	}

	c.memo.Put(key, resp.Recordings)
	return resp.Recordings, nil
}

// GetRecording fetches one recording by MusicBrainz ID.
func (c *Client) GetRecording(ctx context.Context, mbid string) (*Recording, error) {
	key := memoKey("recording", mbid)
	if v, ok := c.memo.Get(key); ok {
		return v.(*Recording), nil
	}

	var recording Recording
	if err := c.get(ctx, "recording/"+mbid, nil, &recording); err != nil {
		return nil, err
	}

	c.memo.Put(key, &recording)
	return &recording, nil
}

// ClearCache drops memoized lookups and the underlying response cache.
func (c *Client) ClearCache() {
	c.memo.Clear()
	c.api.ClearCache()
}

// VerifyMusicFile checks a file's artist, album, and track tags
// against the catalog and returns the best match with a blended
// confidence score. Artist is required; album and track refine the
// match when non-empty. No artist match yields a zero Verification
// and confidence 0 without error.
func (c *Client) VerifyMusicFile(ctx context.Context, artist, album, track string) (Verification, float64, error) {
	artists, err := c.SearchArtist(ctx, artist)
	if err != nil {
		return Verification{}, 0, err
	}
	if len(artists) == 0 {
		c.logger.Warn().Str("artist", artist).Msg("No artists matched")
		return Verification{}, 0, nil
	}

	// First result wins; search results come back relevance-ordered.
	best := artists[0]
	v := Verification{
		Artist:      best.Name,
		ArtistID:    best.ID,
		ArtistScore: matchScore,
	}
	confidence := matchScore

	if album != "" {
		query := fmt.Sprintf("release:%s AND artist:%s", album, best.Name)
		releases, err := c.SearchRelease(ctx, query)
		if err != nil {
			return Verification{}, 0, err
		}

		if len(releases) > 0 {
			rel := releases[0]
			v.Album = rel.Title
			v.AlbumID = rel.ID
			v.AlbumScore = matchScore
			if rel.Date != "" {
				v.Year, _, _ = strings.Cut(rel.Date, "-")
			}
			confidence = (confidence + matchScore) / 2

			if track != "" && rel.ID != "" {
				details, err := c.GetRelease(ctx, rel.ID, true)
				if err != nil {
					return Verification{}, 0, err
				}
				if t, disc, ok := findTrack(details, track); ok {
					v.Track = t.Title
					v.TrackID = t.ID
					v.TrackScore = matchScore
					v.TrackNumber = t.Number
					v.DiscNumber = disc
					confidence = (confidence + matchScore) / 3
				}
			}
		}
	}

	return v, confidence, nil
}

// findTrack scans a release's media for the first track whose title
// contains name, case-insensitively.
func findTrack(release *Release, name string) (Track, int, bool) {
	needle := strings.ToLower(name)
	for _, medium := range release.Media {
		for _, t := range medium.Tracks {
			if strings.Contains(strings.ToLower(t.Title), needle) {
				return t, medium.Position, true
			}
		}
	}
	return Track{}, 0, false
}

func memoKey(parts ...string) string {
	return strings.Join(parts, "\x00")
}

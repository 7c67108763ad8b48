package metadata

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/organarr/organarr/anidb"
	"github.com/organarr/organarr/apiclient"
	"github.com/organarr/organarr/llm"
	"github.com/organarr/organarr/musicbrainz"
	"github.com/organarr/organarr/namer"
	"github.com/organarr/organarr/tmdb"
	"github.com/organarr/organarr/tvdb"
	"github.com/organarr/organarr/tvmaze"
)

// yearOf reads the year out of a vendor date string, which is either
// a bare year or an ISO date.
func yearOf(date string) int {
	y, _, _ := strings.Cut(date, "-")
	n, err := strconv.Atoi(y)
	if err != nil {
		return 0
	}
	return n
}

// tmdbSearcher adapts a TMDB client. TMDB indexes both movies and TV,
// so its result IDs carry a kind prefix ("movie-603", "tv-1396") to
// keep fetches unambiguous.
type tmdbSearcher struct {
	client *tmdb.Client
}

// NewTMDBSearcher adapts a TMDB client to the Searcher interface.
func NewTMDBSearcher(client *tmdb.Client) Searcher {
	return &tmdbSearcher{client: client}
}

func (s *tmdbSearcher) Source() string { return "tmdb" }

func (s *tmdbSearcher) Supports(t namer.MediaType) bool {
	switch t {
	case namer.MediaUnknown, namer.MediaMovie, namer.MediaTV, namer.MediaTVSpecial:
		return true
	}
	return false
}

func (s *tmdbSearcher) Search(ctx context.Context, query string, mediaType namer.MediaType) ([]SearchResult, error) {
	var results []SearchResult

	if mediaType == namer.MediaUnknown || mediaType == namer.MediaMovie {
		movies, err := s.client.SearchMovie(ctx, query, 0)
		if err != nil {
			return nil, err
		}
		for _, m := range movies {
			results = append(results, SearchResult{
				Source:    "tmdb",
				ID:        "movie-" + strconv.FormatInt(m.ID, 10),
				Title:     m.Title,
				Year:      yearOf(m.ReleaseDate),
				MediaType: namer.MediaMovie,
				Overview:  m.Overview,
			})
		}
	}

	if mediaType == namer.MediaUnknown || mediaType == namer.MediaTV || mediaType == namer.MediaTVSpecial {
		shows, err := s.client.SearchTV(ctx, query, 0)
		if err != nil {
			return nil, err
		}
		for _, sh := range shows {
			results = append(results, SearchResult{
				Source:    "tmdb",
				ID:        "tv-" + strconv.FormatInt(sh.ID, 10),
				Title:     sh.Name,
				Year:      yearOf(sh.FirstAirDate),
				MediaType: namer.MediaTV,
				Overview:  sh.Overview,
			})
		}
	}

	return results, nil
}

// splitTMDBID splits a prefixed TMDB ID into its kind and number.
// Plain numeric IDs default to movies, the common lookup case.
func splitTMDBID(id string) (string, int64, error) {
	kind, raw, ok := strings.Cut(id, "-")
	if !ok {
		kind, raw = "movie", id
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid tmdb id %q", id)
	}
	return kind, n, nil
}

func (s *tmdbSearcher) Fetch(ctx context.Context, id string) (*Details, error) {
	kind, n, err := splitTMDBID(id)
	if err != nil {
		return nil, err
	}

	switch kind {
	case "movie":
		m, err := s.client.GetMovieDetails(ctx, n)
		if err != nil {
			return nil, err
		}
		return &Details{
			Source:    "tmdb",
			ID:        id,
			Title:     m.Title,
			Year:      yearOf(m.ReleaseDate),
			MediaType: namer.MediaMovie,
			Overview:  m.Overview,
		}, nil
	case "tv":
		sh, err := s.client.GetTVDetails(ctx, n)
		if err != nil {
			return nil, err
		}
		return &Details{
			Source:    "tmdb",
			ID:        id,
			Title:     sh.Name,
			Year:      yearOf(sh.FirstAirDate),
			MediaType: namer.MediaTV,
			Overview:  sh.Overview,
			Episodes:  sh.NumberOfEpisodes,
		}, nil
	default:
		return nil, fmt.Errorf("invalid tmdb id %q", id)
	}
}

func (s *tmdbSearcher) EpisodeTitle(ctx context.Context, id string, season, episode int) (string, error) {
	kind, raw, ok := strings.Cut(id, "-")
	if !ok {
		// Plain numeric IDs reaching an episode lookup mean a show.
		kind, raw = "tv", id
	}
	if kind != "tv" {
		return "", fmt.Errorf("tmdb id %q is not a series", id)
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid tmdb id %q", id)
	}

	details, err := s.client.GetSeasonDetails(ctx, n, season)
	if err != nil {
		return "", err
	}
	for _, ep := range details.Episodes {
		if ep.EpisodeNumber == episode {
			return ep.Name, nil
		}
	}
	return "", nil
}

func (s *tmdbSearcher) ClearCache() { s.client.ClearCache() }

// tvdbSearcher adapts a TVDB client.
type tvdbSearcher struct {
	client *tvdb.Client
}

// NewTVDBSearcher adapts a TVDB client to the Searcher interface.
func NewTVDBSearcher(client *tvdb.Client) Searcher {
	return &tvdbSearcher{client: client}
}

func (s *tvdbSearcher) Source() string { return "tvdb" }

func (s *tvdbSearcher) Supports(t namer.MediaType) bool {
	switch t {
	case namer.MediaUnknown, namer.MediaTV, namer.MediaTVSpecial:
		return true
	}
	return false
}

func (s *tvdbSearcher) Search(ctx context.Context, query string, _ namer.MediaType) ([]SearchResult, error) {
	hits, err := s.client.SearchSeries(ctx, query)
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(hits))
	for _, hit := range hits {
		id := hit.TVDBID
		if id == "" {
			id = strings.TrimPrefix(hit.ObjectID, "series-")
		}
		results = append(results, SearchResult{
			Source:    "tvdb",
			ID:        id,
			Title:     hit.Name,
			Year:      yearOf(hit.Year),
			MediaType: namer.MediaTV,
			Overview:  hit.Overview,
		})
	}
	return results, nil
}

func (s *tvdbSearcher) Fetch(ctx context.Context, id string) (*Details, error) {
	n, err := tvdb.ParseID(id)
	if err != nil {
		return nil, err
	}

	series, err := s.client.GetSeries(ctx, n)
	if err != nil {
		return nil, err
	}
	return &Details{
		Source:    "tvdb",
		ID:        id,
		Title:     series.Name,
		Year:      yearOf(series.Year),
		MediaType: namer.MediaTV,
		Overview:  series.Overview,
		Status:    series.Status.Name,
	}, nil
}

func (s *tvdbSearcher) EpisodeTitle(ctx context.Context, id string, season, episode int) (string, error) {
	n, err := tvdb.ParseID(id)
	if err != nil {
		return "", err
	}

	episodes, err := s.client.GetSeasonEpisodes(ctx, n, season, "")
	if err != nil {
		return "", err
	}
	for _, ep := range episodes {
		if ep.Number == episode {
			return ep.Name, nil
		}
	}
	return "", nil
}

func (s *tvdbSearcher) ClearCache() { s.client.ClearCache() }

// tvmazeSearcher adapts a TVMaze client.
type tvmazeSearcher struct {
	client *tvmaze.Client
}

// NewTVMazeSearcher adapts a TVMaze client to the Searcher interface.
func NewTVMazeSearcher(client *tvmaze.Client) Searcher {
	return &tvmazeSearcher{client: client}
}

func (s *tvmazeSearcher) Source() string { return "tvmaze" }

func (s *tvmazeSearcher) Supports(t namer.MediaType) bool {
	switch t {
	case namer.MediaUnknown, namer.MediaTV, namer.MediaTVSpecial:
		return true
	}
	return false
}

func (s *tvmazeSearcher) Search(ctx context.Context, query string, _ namer.MediaType) ([]SearchResult, error) {
	scored, err := s.client.SearchShows(ctx, query)
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(scored))
	for _, hit := range scored {
		results = append(results, SearchResult{
			Source:    "tvmaze",
			ID:        strconv.FormatInt(hit.Show.ID, 10),
			Title:     hit.Show.Name,
			Year:      yearOf(hit.Show.Premiered),
			MediaType: namer.MediaTV,
			Overview:  hit.Show.Summary,
		})
	}
	return results, nil
}

func (s *tvmazeSearcher) Fetch(ctx context.Context, id string) (*Details, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid tvmaze id %q", id)
	}

	show, err := s.client.GetShow(ctx, n)
	if err != nil {
		return nil, err
	}
	return &Details{
		Source:    "tvmaze",
		ID:        id,
		Title:     show.Name,
		Year:      yearOf(show.Premiered),
		MediaType: namer.MediaTV,
		Overview:  show.Summary,
		Status:    show.Status,
	}, nil
}

func (s *tvmazeSearcher) EpisodeTitle(ctx context.Context, id string, season, episode int) (string, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid tvmaze id %q", id)
	}

	ep, err := s.client.GetEpisodeByNumber(ctx, n, season, episode)
	if err != nil {
		if apiclient.IsNotFound(err) {
			return "", nil
		}
		return "", err
	}
	return ep.Name, nil
}

func (s *tvmazeSearcher) ClearCache() { s.client.ClearCache() }

// anidbSearcher adapts an AniDB client. AniDB numbers episodes
// absolutely, so episode lookups ignore the season.
type anidbSearcher struct {
	client *anidb.Client
}

// NewAniDBSearcher adapts an AniDB client to the Searcher interface.
func NewAniDBSearcher(client *anidb.Client) Searcher {
	return &anidbSearcher{client: client}
}

func (s *anidbSearcher) Source() string { return "anidb" }

func (s *anidbSearcher) Supports(t namer.MediaType) bool {
	switch t {
	case namer.MediaUnknown, namer.MediaAnime, namer.MediaAnimeSpecial:
		return true
	}
	return false
}

func (s *anidbSearcher) Search(ctx context.Context, query string, _ namer.MediaType) ([]SearchResult, error) {
	matches, err := s.client.SearchAnime(ctx, query)
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(matches))
	for _, anime := range matches {
		results = append(results, SearchResult{
			Source:    "anidb",
			ID:        strconv.FormatInt(anime.AID, 10),
			Title:     anime.MainTitle(),
			MediaType: namer.MediaAnime,
		})
	}
	return results, nil
}

func (s *anidbSearcher) Fetch(ctx context.Context, id string) (*Details, error) {
	aid, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid anidb id %q", id)
	}

	anime, err := s.client.GetAnime(ctx, aid)
	if err != nil {
		return nil, err
	}
	return &Details{
		Source:    "anidb",
		ID:        id,
		Title:     anime.MainTitle(),
		Year:      yearOf(anime.StartDate),
		MediaType: namer.MediaAnime,
		Overview:  anime.Description,
		Episodes:  anime.EpisodeCount,
	}, nil
}

func (s *anidbSearcher) EpisodeTitle(ctx context.Context, id string, _, episode int) (string, error) {
	aid, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid anidb id %q", id)
	}

	anime, err := s.client.GetAnime(ctx, aid)
	if err != nil {
		return "", err
	}

	want := strconv.Itoa(episode)
	for _, ep := range anime.Episodes {
		if ep.Number.IsRegular() && ep.Number.Value == want {
			return ep.TitleIn("en"), nil
		}
	}
	return "", nil
}

func (s *anidbSearcher) ClearCache() { s.client.ClearCache() }

// musicbrainzSearcher adapts a MusicBrainz client; releases are the
// searchable unit.
type musicbrainzSearcher struct {
	client *musicbrainz.Client
}

// NewMusicBrainzSearcher adapts a MusicBrainz client to the Searcher
// interface.
func NewMusicBrainzSearcher(client *musicbrainz.Client) Searcher {
	return &musicbrainzSearcher{client: client}
}

func (s *musicbrainzSearcher) Source() string { return "musicbrainz" }

func (s *musicbrainzSearcher) Supports(t namer.MediaType) bool {
	return t == namer.MediaUnknown || t == namer.MediaMusic
}

func (s *musicbrainzSearcher) Search(ctx context.Context, query string, _ namer.MediaType) ([]SearchResult, error) {
	releases, err := s.client.SearchRelease(ctx, query)
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(releases))
	for _, rel := range releases {
		overview := ""
		if len(rel.ArtistCredit) > 0 {
			overview = "by " + rel.ArtistCredit[0].Name
		}
		results = append(results, SearchResult{
			Source:    "musicbrainz",
			ID:        rel.ID,
			Title:     rel.Title,
			Year:      yearOf(rel.Date),
			MediaType: namer.MediaMusic,
			Overview:  overview,
		})
	}
	return results, nil
}

func (s *musicbrainzSearcher) Fetch(ctx context.Context, id string) (*Details, error) {
	rel, err := s.client.GetRelease(ctx, id, false)
	if err != nil {
		return nil, err
	}
	return &Details{
		Source:    "musicbrainz",
		ID:        id,
		Title:     rel.Title,
		Year:      yearOf(rel.Date),
		MediaType: namer.MediaMusic,
		Status:    rel.Status,
	}, nil
}

func (s *musicbrainzSearcher) ClearCache() { s.client.ClearCache() }

// llmSearcher adapts the LLM client. The model reads the query the
// way it reads filenames and answers with a single low-confidence
// guess, useful when every catalog comes up empty.
type llmSearcher struct {
	client *llm.Client
}

// NewLLMSearcher adapts an LLM client to the Searcher interface.
func NewLLMSearcher(client *llm.Client) Searcher {
	return &llmSearcher{client: client}
}

func (s *llmSearcher) Source() string { return "llm" }

// Supports always answers true; the model can take a guess at any
// media type.
func (s *llmSearcher) Supports(namer.MediaType) bool { return true }

func (s *llmSearcher) Search(ctx context.Context, query string, _ namer.MediaType) ([]SearchResult, error) {
	guess, err := s.client.ParseFilename(ctx, query)
	if err != nil {
		return nil, err
	}
	if guess.Title == "" {
		return nil, nil
	}

	mediaType := namer.MediaUnknown
	switch {
	case guess.IsEpisode():
		mediaType = namer.MediaTV
	case guess.Year > 0:
		mediaType = namer.MediaMovie
	}

	return []SearchResult{{
		Source:    "llm",
		Title:     guess.Title,
		Year:      guess.Year,
		MediaType: mediaType,
	}}, nil
}

// Fetch is unsupported: model guesses are not catalog records.
func (s *llmSearcher) Fetch(context.Context, string) (*Details, error) {
	return nil, fmt.Errorf("llm guesses have no catalog record to fetch")
}

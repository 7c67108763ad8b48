// Package metadata aggregates media lookups across the configured
// catalog sources and picks the record a filename most likely refers
// to.
package metadata

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/organarr/organarr/namer"
)

// MatchThreshold is the minimum confidence for Match to accept a
// catalog record as the answer for a filename.
const MatchThreshold = 0.5

// Searcher is one metadata source the manager fans out to.
type Searcher interface {
	// Source returns the vendor key ("tvdb", "tmdb", ...).
	Source() string
	// Supports reports whether the source indexes the given media type.
	Supports(mediaType namer.MediaType) bool
	// Search queries the catalog. MediaUnknown asks for every kind the
	// source has.
	Search(ctx context.Context, query string, mediaType namer.MediaType) ([]SearchResult, error)
	// Fetch retrieves the full record behind a search result ID.
	Fetch(ctx context.Context, id string) (*Details, error)
}

// episodeTitler is implemented by searchers that can resolve a single
// episode's title.
type episodeTitler interface {
	EpisodeTitle(ctx context.Context, id string, season, episode int) (string, error)
}

// cacheClearer is implemented by searchers whose underlying client
// keeps a response cache.
type cacheClearer interface {
	ClearCache()
}

// Manager coordinates metadata operations across multiple sources.
type Manager struct {
	searchers []Searcher
	logger    zerolog.Logger
}

// NewManager creates an empty manager. Add sources with Register.
func NewManager(logger zerolog.Logger) *Manager {
	return &Manager{logger: logger}
}

// Register adds a source. A second source with the same key is
// ignored.
func (m *Manager) Register(s Searcher) {
	for _, existing := range m.searchers {
		if existing.Source() == s.Source() {
			return
		}
	}
	m.searchers = append(m.searchers, s)
}

// Sources lists the registered source keys in registration order.
func (m *Manager) Sources() []string {
	keys := make([]string, 0, len(m.searchers))
	for _, s := range m.searchers {
		keys = append(keys, s.Source())
	}
	return keys
}

// Search queries every source that indexes the given media type and
// returns the combined results ordered by how well their titles match
// the query. Sources that fail are logged and skipped; one broken
// vendor never empties the result list.
func (m *Manager) Search(ctx context.Context, query string, mediaType namer.MediaType) ([]SearchResult, error) {
	var (
		mu  sync.Mutex
		all []SearchResult
	)

	g, ctx := errgroup.WithContext(ctx)
	for _, s := range m.searchers {
		if !s.Supports(mediaType) {
			continue
		}

		g.Go(func() error {
			results, err := s.Search(ctx, query, mediaType)
			if err != nil {
				m.logger.Warn().
					Err(err).
					Str("source", s.Source()).
					Str("query", query).
					Msg("Metadata search failed")
				return nil
			}

			mu.Lock()
			all = append(all, results...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range all {
		all[i].Confidence = titleSimilarity(query, all[i].Title) * titleWeight
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Confidence != all[j].Confidence {
			return all[i].Confidence > all[j].Confidence
		}
		return all[i].Source < all[j].Source
	})

	m.logger.Debug().
		Str("query", query).
		Str("media_type", mediaType.String()).
		Int("results", len(all)).
		Msg("Metadata search complete")
	return all, nil
}

// Match finds the catalog record a filename most likely refers to.
// The match is accepted only when its confidence clears
// MatchThreshold; otherwise the result carries the best score seen
// and Matched stays false.
func (m *Manager) Match(ctx context.Context, filename string, mediaType namer.MediaType) (MatchResult, error) {
	title, year := extractTitleYear(filename)
	if title == "" {
		m.logger.Warn().Str("filename", filename).Msg("Could not extract a title from filename")
		return MatchResult{}, nil
	}

	results, err := m.Search(ctx, title, mediaType)
	if err != nil {
		return MatchResult{}, err
	}
	if len(results) == 0 {
		m.logger.Debug().Str("title", title).Msg("No metadata found")
		return MatchResult{}, nil
	}

	var (
		best      *SearchResult
		bestScore float64
	)
	for i := range results {
		score := scoreMatch(title, year, results[i])
		if score > bestScore {
			bestScore = score
			best = &results[i]
		}
	}

	if best == nil || bestScore < MatchThreshold {
		return MatchResult{Confidence: bestScore}, nil
	}

	best.Confidence = bestScore
	return MatchResult{
		Matched:    true,
		Title:      best.Title,
		Year:       best.Year,
		MediaType:  best.MediaType,
		Confidence: bestScore,
		Best:       best,
	}, nil
}

// FetchByID retrieves the full record behind a source-qualified ID of
// the form "source-id", e.g. "tvdb-121361". Everything after the
// first dash belongs to the source.
func (m *Manager) FetchByID(ctx context.Context, ref string) (*Details, error) {
	source, id, ok := strings.Cut(ref, "-")
	if !ok {
		return nil, fmt.Errorf("invalid metadata ID %q: want source-id", ref)
	}

	for _, s := range m.searchers {
		if s.Source() == source {
			return s.Fetch(ctx, id)
		}
	}
	return nil, fmt.Errorf("unknown metadata source %q", source)
}

// EpisodeTitle resolves one episode's title through the source that
// produced the reference. Sources without per-episode data return an
// error; an episode simply missing from the catalog returns "".
func (m *Manager) EpisodeTitle(ctx context.Context, ref string, season, episode int) (string, error) {
	source, id, ok := strings.Cut(ref, "-")
	if !ok {
		return "", fmt.Errorf("invalid metadata ID %q: want source-id", ref)
	}

	for _, s := range m.searchers {
		if s.Source() != source {
			continue
		}
		titler, ok := s.(episodeTitler)
		if !ok {
			return "", fmt.Errorf("source %q has no episode data", source)
		}
		return titler.EpisodeTitle(ctx, id, season, episode)
	}
	return "", fmt.Errorf("unknown metadata source %q", source)
}

// ClearCaches drops every source's response cache.
func (m *Manager) ClearCaches() {
	for _, s := range m.searchers {
		if c, ok := s.(cacheClearer); ok {
			c.ClearCache()
		}
	}
	m.logger.Debug().Msg("Metadata caches cleared")
}

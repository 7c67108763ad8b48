package organize

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/organarr/organarr/metadata"
	"github.com/organarr/organarr/namer"
	"github.com/organarr/organarr/scanner"
)

// fakeSearcher feeds canned metadata into the planner.
type fakeSearcher struct {
	source  string
	results []metadata.SearchResult
	titles  map[string]string
}

func (f *fakeSearcher) Source() string { return f.source }

func (f *fakeSearcher) Supports(namer.MediaType) bool { return true }

func (f *fakeSearcher) Search(_ context.Context, _ string, _ namer.MediaType) ([]metadata.SearchResult, error) {
	return f.results, nil
}

func (f *fakeSearcher) Fetch(_ context.Context, id string) (*metadata.Details, error) {
	return nil, errors.New("no details for " + id)
}

func (f *fakeSearcher) EpisodeTitle(_ context.Context, id string, season, episode int) (string, error) {
	return f.titles[fmt.Sprintf("%s/%d/%d", id, season, episode)], nil
}

func writeMediaFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("media data"), 0o644))
}

func newTestPlanner(t *testing.T, root string) *Planner {
	t.Helper()

	sc, err := scanner.New(root, scanner.WithExtensions([]string{".mkv", ".mp4"}))
	require.NoError(t, err)

	engine, err := namer.NewEngine("", zerolog.Nop())
	require.NoError(t, err)

	return NewPlanner(sc, namer.NewParser(), engine, zerolog.Nop())
}

func TestPlanProposesNames(t *testing.T) {
	root := t.TempDir()
	writeMediaFile(t, filepath.Join(root, "Breaking.Bad.S01E01.720p.mkv"))

	p := newTestPlanner(t, root)
	items, err := p.Plan(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)

	item := items[0]
	assert.Equal(t, namer.MediaTV, item.Parsed.MediaType)
	assert.Equal(t, "Breaking Bad", item.Parsed.Title)
	assert.Equal(t, "Breaking Bad/Season 01/Breaking Bad - S01E01 [720p].mkv", item.ProposedName)
	assert.Equal(t,
		filepath.Join(root, "Breaking Bad", "Season 01", "Breaking Bad - S01E01 [720p].mkv"),
		item.TargetPath)
	assert.True(t, item.NeedsRename())
}

func TestPlanLeavesUnknownFilesAlone(t *testing.T) {
	root := t.TempDir()
	writeMediaFile(t, filepath.Join(root, "notes.mkv"))

	p := newTestPlanner(t, root)
	items, err := p.Plan(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)

	item := items[0]
	assert.Equal(t, namer.MediaUnknown, item.Parsed.MediaType)
	assert.Equal(t, "notes.mkv", item.ProposedName)
	assert.Equal(t, item.File.Path, item.TargetPath)
	assert.False(t, item.NeedsRename())
}

func TestPlanConfirmsAgainstMetadata(t *testing.T) {
	root := t.TempDir()
	writeMediaFile(t, filepath.Join(root, "Breaking.Bad.S01E01.mkv"))

	fake := &fakeSearcher{
		source: "fake",
		results: []metadata.SearchResult{
			{Source: "fake", ID: "81189", Title: "Breaking Bad", Year: 2008, MediaType: namer.MediaTV},
		},
		titles: map[string]string{"81189/1/1": "Pilot"},
	}
	manager := metadata.NewManager(zerolog.Nop())
	manager.Register(fake)

	p := newTestPlanner(t, root)
	p.SetMetadataManager(manager)

	items, err := p.Plan(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)

	item := items[0]
	assert.Equal(t, "fake-81189", item.MatchRef)
	assert.InDelta(t, 0.8, item.MatchConfidence, 0.001)
	assert.Equal(t, 2008, item.Parsed.Year)
	assert.Equal(t, "Pilot", item.Parsed.EpisodeTitle)
	assert.Equal(t, "Breaking Bad/Season 01/Breaking Bad - S01E01 - Pilot.mkv", item.ProposedName)
}

func TestPlanMetadataMissKeepsParse(t *testing.T) {
	root := t.TempDir()
	writeMediaFile(t, filepath.Join(root, "Breaking.Bad.S01E01.mkv"))

	manager := metadata.NewManager(zerolog.Nop())
	manager.Register(&fakeSearcher{source: "fake"})

	p := newTestPlanner(t, root)
	p.SetMetadataManager(manager)

	items, err := p.Plan(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)

	item := items[0]
	assert.Empty(t, item.MatchRef)
	assert.Equal(t, "Breaking Bad", item.Parsed.Title)
	assert.Empty(t, item.Parsed.EpisodeTitle)
	assert.Zero(t, item.Parsed.Year)
}

func TestPlanSkipsEpisodeTitleForMultiEpisode(t *testing.T) {
	root := t.TempDir()
	writeMediaFile(t, filepath.Join(root, "Breaking.Bad.S01E01E02.mkv"))

	fake := &fakeSearcher{
		source: "fake",
		results: []metadata.SearchResult{
			{Source: "fake", ID: "81189", Title: "Breaking Bad", MediaType: namer.MediaTV},
		},
		titles: map[string]string{"81189/1/1": "Pilot"},
	}
	manager := metadata.NewManager(zerolog.Nop())
	manager.Register(fake)

	p := newTestPlanner(t, root)
	p.SetMetadataManager(manager)

	items, err := p.Plan(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)

	item := items[0]
	assert.Equal(t, []int{1, 2}, item.Parsed.Episodes)
	assert.Empty(t, item.Parsed.EpisodeTitle)
	assert.True(t, item.File.MultiEpisode)
	assert.True(t, item.Traits.IsAnthology)
	assert.Equal(t, 2, item.Traits.SegmentCount)
}

func TestPlanFilter(t *testing.T) {
	root := t.TempDir()
	writeMediaFile(t, filepath.Join(root, "Breaking.Bad.S01E01.mkv"))
	writeMediaFile(t, filepath.Join(root, "Breaking.Bad.S02E01.mkv"))

	p := newTestPlanner(t, root)
	p.SetFilter(func(item Item) (bool, error) {
		return item.Parsed.Season == 1, nil
	})

	items, err := p.Plan(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Parsed.Season)
}

func TestPlanFilterErrorDropsItem(t *testing.T) {
	root := t.TempDir()
	writeMediaFile(t, filepath.Join(root, "Breaking.Bad.S01E01.mkv"))

	p := newTestPlanner(t, root)
	p.SetFilter(func(Item) (bool, error) {
		return true, errors.New("bad expression")
	})

	items, err := p.Plan(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

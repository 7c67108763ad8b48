package tvmaze

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/organarr/organarr/apiclient"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	client, err := NewClient(WithBaseURL(baseURL))
	require.NoError(t, err)
	return client
}

func TestSearchShows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/shows", r.URL.Path)
		assert.Equal(t, "Breaking Bad", r.URL.Query().Get("q"))
		fmt.Fprint(w, `[
			{"score":0.9,"show":{"id":1,"name":"Breaking Bad","status":"Ended","externals":{"thetvdb":81189,"imdb":"tt0903747"}}},
			{"score":0.5,"show":{"id":2,"name":"Breaking Bad: Original Minisodes"}}
		]`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	results, err := client.SearchShows(context.Background(), "Breaking Bad")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, int64(1), results[0].Show.ID)
	assert.Equal(t, "Breaking Bad", results[0].Show.Name)
	assert.Equal(t, int64(81189), results[0].Show.Externals.TVDB)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestSearchShowsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	results, err := client.SearchShows(context.Background(), "Nonexistent Show")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestGetShow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/shows/1", r.URL.Path)
		fmt.Fprint(w, `{"id":1,"name":"Breaking Bad","status":"Ended","premiered":"2008-01-20",
			"summary":"<p>A chemistry teacher.</p>","rating":{"average":9.2},
			"network":{"id":20,"name":"AMC","country":{"name":"United States","code":"US"}}}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	show, err := client.GetShow(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Breaking Bad", show.Name)
	assert.Equal(t, "Ended", show.Status)
	assert.Equal(t, 9.2, show.Rating.Average)
	require.NotNil(t, show.Network)
	assert.Equal(t, "AMC", show.Network.Name)
}

func TestGetShowNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	_, err := client.GetShow(context.Background(), 99999)
	require.Error(t, err)
	assert.True(t, apiclient.IsNotFound(err))
	assert.True(t, apiclient.FromVendor(err, "tvmaze"))
}

func TestGetShowByIMDBID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/lookup/shows", r.URL.Path)
		assert.Equal(t, "tt0903747", r.URL.Query().Get("imdb"))
		fmt.Fprint(w, `{"id":1,"name":"Breaking Bad","externals":{"imdb":"tt0903747"}}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	show, err := client.GetShowByIMDBID(context.Background(), "tt0903747")
	require.NoError(t, err)
	assert.Equal(t, int64(1), show.ID)
	assert.Equal(t, "tt0903747", show.Externals.IMDB)
}

func TestGetEpisodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/shows/1/episodes", r.URL.Path)
		fmt.Fprint(w, `[
			{"id":1,"name":"Pilot","season":1,"number":1,"airdate":"2008-01-20"},
			{"id":2,"name":"Cat's in the Bag...","season":1,"number":2}
		]`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	episodes, err := client.GetEpisodes(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, episodes, 2)
	assert.Equal(t, "Pilot", episodes[0].Name)
	assert.Equal(t, 1, episodes[0].Season)
	assert.Equal(t, 2, episodes[1].Number)
}

func TestGetEpisodeByNumber(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/shows/1/episodebynumber", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("season"))
		assert.Equal(t, "1", r.URL.Query().Get("number"))
		fmt.Fprint(w, `{"id":1,"name":"Pilot","season":1,"number":1,"runtime":60}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	episode, err := client.GetEpisodeByNumber(context.Background(), 1, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, "Pilot", episode.Name)
	assert.Equal(t, 60, episode.Runtime)
}

func TestGetShowCast(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/shows/1/cast", r.URL.Path)
		fmt.Fprint(w, `[
			{"person":{"id":1,"name":"Bryan Cranston","birthday":"1956-03-07"},"character":{"id":10,"name":"Walter White"}}
		]`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	cast, err := client.GetShowCast(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, cast, 1)
	assert.Equal(t, "Bryan Cranston", cast[0].Person.Name)
	assert.Equal(t, "Walter White", cast[0].Character.Name)
}

func TestRepeatLookupAnswersFromCache(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, `{"id":1,"name":"Breaking Bad"}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	ctx := context.Background()

	_, err := client.GetShow(ctx, 1)
	require.NoError(t, err)
	_, err = client.GetShow(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

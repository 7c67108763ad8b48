package musicbrainz

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/organarr/organarr/apiclient"
)

// fakeClock drives the pacer deterministically: sleeping advances the
// clock instead of blocking.
type fakeClock struct {
	t     time.Time
	slept []time.Duration
}

func (f *fakeClock) Now() time.Time { return f.t }

func (f *fakeClock) Sleep(d time.Duration) {
	f.slept = append(f.slept, d)
	f.t = f.t.Add(d)
}

func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestClient(t *testing.T, baseURL string, opts ...Option) (*Client, *fakeClock) {
	t.Helper()

	opts = append([]Option{WithBaseURL(baseURL)}, opts...)
	client, err := NewClient("organarr", "test", opts...)
	require.NoError(t, err)

	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	client.now = clock.Now
	client.sleep = clock.Sleep
	return client, clock
}

func TestNewClientRequiresIdentity(t *testing.T) {
	_, err := NewClient("", "1.0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "application name")

	_, err = NewClient("organarr", "  ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "application version")
}

func TestUserAgentFormat(t *testing.T) {
	tests := []struct {
		name    string
		contact string
		want    string
	}{
		{name: "without contact", contact: "", want: "organarr/1.0"},
		{name: "with contact", contact: "ops@example.com", want: "organarr/1.0 ( ops@example.com )"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sentUA string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				sentUA = r.Header.Get("User-Agent")
				fmt.Fprint(w, `{}`)
			}))
			defer srv.Close()

			opts := []Option{WithBaseURL(srv.URL)}
			if tt.contact != "" {
				opts = append(opts, WithContact(tt.contact))
			}
			client, err := NewClient("organarr", "1.0", opts...)
			require.NoError(t, err)

			assert.Equal(t, tt.want, client.UserAgent())

			_, err = client.GetRecording(context.Background(), "some-mbid")
			require.NoError(t, err)
			assert.Equal(t, tt.want, sentUA)
		})
	}
}

func TestEveryRequestAsksForJSON(t *testing.T) {
	var formats []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		formats = append(formats, r.URL.Query().Get("fmt"))
		fmt.Fprint(w, `{"artists":[]}`)
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv.URL)

	_, err := client.SearchArtist(context.Background(), "Nirvana")
	require.NoError(t, err)
	_, err = client.GetArtist(context.Background(), "mbid-1", true)
	require.NoError(t, err)

	require.Len(t, formats, 2)
	for _, f := range formats {
		assert.Equal(t, "json", f)
	}
}

func TestPacingEnforcesMinimumInterval(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"artists":[]}`)
	}))
	defer srv.Close()

	client, clock := newTestClient(t, srv.URL)
	ctx := context.Background()

	// First request passes through without waiting.
	_, err := client.SearchArtist(ctx, "one")
	require.NoError(t, err)
	assert.Empty(t, clock.slept)

	// Immediate follow-up waits out the full interval.
	_, err = client.SearchArtist(ctx, "two")
	require.NoError(t, err)
	require.Len(t, clock.slept, 1)
	assert.Equal(t, time.Second, clock.slept[0])

	// A request after a partial gap only waits the remainder.
	clock.Advance(400 * time.Millisecond)
	_, err = client.SearchArtist(ctx, "three")
	require.NoError(t, err)
	require.Len(t, clock.slept, 2)
	assert.Equal(t, 600*time.Millisecond, clock.slept[1])

	// A request after more than the interval does not wait at all.
	clock.Advance(3 * time.Second)
	_, err = client.SearchArtist(ctx, "four")
	require.NoError(t, err)
	assert.Len(t, clock.slept, 2)
}

func TestRateLimitWithoutAutoRetry(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv.URL)

	_, err := client.SearchArtist(context.Background(), "anything")
	require.Error(t, err)
	assert.True(t, apiclient.IsRateLimit(err))
	assert.True(t, apiclient.FromVendor(err, "musicbrainz"))
	assert.Equal(t, 1, calls)
}

func TestRateLimitAutoRetryRecovers(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"artists":[{"id":"a1","name":"Nirvana"}]}`)
	}))
	defer srv.Close()

	client, clock := newTestClient(t, srv.URL, WithAutoRetry(true))

	artists, err := client.SearchArtist(context.Background(), "Nirvana")
	require.NoError(t, err)
	require.Len(t, artists, 1)
	assert.Equal(t, "Nirvana", artists[0].Name)
	assert.Equal(t, 3, calls)

	// Two failed attempts, each followed by a cooldown. The cooldown
	// itself covers the pacing interval, so no extra pacer sleeps.
	assert.Equal(t, []time.Duration{rateLimitCooldown, rateLimitCooldown}, clock.slept)
}

func TestRateLimitAutoRetryIsBounded(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv.URL, WithAutoRetry(true))

	_, err := client.SearchArtist(context.Background(), "anything")
	require.Error(t, err)
	assert.True(t, apiclient.IsRateLimit(err))
	assert.Equal(t, maxAttempts, calls)
}

func TestLookupsAreMemoized(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, `{"artists":[{"id":"a1","name":"Nirvana"}]}`)
	}))
	defer srv.Close()

	client, clock := newTestClient(t, srv.URL)
	ctx := context.Background()

	first, err := client.SearchArtist(ctx, "Nirvana")
	require.NoError(t, err)
	second, err := client.SearchArtist(ctx, "Nirvana")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls, "repeat lookup should answer from memory")
	assert.Empty(t, clock.slept, "memoized lookup must not spend rate budget")

	_, err = client.SearchArtist(ctx, "nirvana")
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "different query must hit the network")

	client.ClearCache()
	_, err = client.SearchArtist(ctx, "Nirvana")
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestGetArtistIncludeReleasesKeying(t *testing.T) {
	var incs []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		incs = append(incs, r.URL.Query().Get("inc"))
		fmt.Fprint(w, `{"id":"a1","name":"Nirvana"}`)
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv.URL)
	ctx := context.Background()

	_, err := client.GetArtist(ctx, "a1", false)
	require.NoError(t, err)
	_, err = client.GetArtist(ctx, "a1", true)
	require.NoError(t, err)

	// Same MBID with and without releases are distinct lookups.
	require.Equal(t, []string{"", "releases"}, incs)
}

func verifyTestServer(t *testing.T, artistsJSON string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/artist":
			fmt.Fprint(w, artistsJSON)
		case "/release":
			fmt.Fprint(w, `{"releases":[{"id":"r1","title":"Nevermind","date":"1991-09-24"}]}`)
		case "/release/r1":
			assert.Equal(t, "recordings", r.URL.Query().Get("inc"))
			fmt.Fprint(w, `{"id":"r1","title":"Nevermind","media":[
				{"position":1,"tracks":[
					{"id":"t1","title":"Smells Like Teen Spirit","number":"1"},
					{"id":"t2","title":"Come as You Are","number":"3"}
				]}
			]}`)
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestVerifyMusicFile(t *testing.T) {
	const artists = `{"artists":[{"id":"a1","name":"Nirvana","score":100}]}`

	t.Run("artist only", func(t *testing.T) {
		srv := verifyTestServer(t, artists)
		defer srv.Close()
		client, _ := newTestClient(t, srv.URL)

		v, confidence, err := client.VerifyMusicFile(context.Background(), "Nirvana", "", "")
		require.NoError(t, err)
		assert.True(t, v.Found())
		assert.Equal(t, "Nirvana", v.Artist)
		assert.Equal(t, "a1", v.ArtistID)
		assert.InDelta(t, 0.8, confidence, 1e-9)
	})

	t.Run("artist and album", func(t *testing.T) {
		srv := verifyTestServer(t, artists)
		defer srv.Close()
		client, _ := newTestClient(t, srv.URL)

		v, confidence, err := client.VerifyMusicFile(context.Background(), "Nirvana", "Nevermind", "")
		require.NoError(t, err)
		assert.Equal(t, "Nevermind", v.Album)
		assert.Equal(t, "r1", v.AlbumID)
		assert.Equal(t, "1991", v.Year)
		assert.InDelta(t, 0.8, confidence, 1e-9)
	})

	t.Run("artist album and track", func(t *testing.T) {
		srv := verifyTestServer(t, artists)
		defer srv.Close()
		client, _ := newTestClient(t, srv.URL)

		v, confidence, err := client.VerifyMusicFile(context.Background(), "Nirvana", "Nevermind", "come as you are")
		require.NoError(t, err)
		assert.Equal(t, "Come as You Are", v.Track)
		assert.Equal(t, "t2", v.TrackID)
		assert.Equal(t, "3", v.TrackNumber)
		assert.Equal(t, 1, v.DiscNumber)
		assert.InDelta(t, 1.6/3, confidence, 1e-9)
	})

	t.Run("unknown track leaves album confidence", func(t *testing.T) {
		srv := verifyTestServer(t, artists)
		defer srv.Close()
		client, _ := newTestClient(t, srv.URL)

		v, confidence, err := client.VerifyMusicFile(context.Background(), "Nirvana", "Nevermind", "No Such Song")
		require.NoError(t, err)
		assert.Empty(t, v.Track)
		assert.InDelta(t, 0.8, confidence, 1e-9)
	})

	t.Run("no artist match", func(t *testing.T) {
		srv := verifyTestServer(t, `{"artists":[]}`)
		defer srv.Close()
		client, _ := newTestClient(t, srv.URL)

		v, confidence, err := client.VerifyMusicFile(context.Background(), "Unknown Artist", "", "")
		require.NoError(t, err)
		assert.False(t, v.Found())
		assert.Zero(t, confidence)
	})
}

func TestTestConnection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"b10bbbfc-cf9e-42e0-be17-e2c3e1d2600d","name":"The Beatles"}`)
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv.URL)
	require.NoError(t, client.TestConnection(context.Background()))

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer down.Close()

	bad, _ := newTestClient(t, down.URL)
	require.Error(t, bad.TestConnection(context.Background()))
}

// Package musicbrainz provides a rate-limited client for the
// MusicBrainz web service, used to verify music file tags against the
// public catalog.
//
// MusicBrainz asks anonymous clients for at most one request per
// second and a meaningful User-Agent. The client owns both concerns:
// every instance paces its own requests with a per-instance clock
// (two instances never contend on shared state), and the constructor
// refuses to build without an application name and version for the
// User-Agent.
//
// Lookups are memoized in a bounded LRU keyed on method and arguments,
// so repeated queries for the same artist or release answer from
// memory without spending rate budget.
//
// # Usage
//
//	client, err := musicbrainz.NewClient(
//		"organarr", "1.0",
//		musicbrainz.WithContact("ops@example.com"),
//		musicbrainz.WithAutoRetry(true),
//		musicbrainz.WithLogger(logger),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	match, confidence, err := client.VerifyMusicFile(ctx, "The Beatles", "Abbey Road", "Come Together")
//
// # Rate limiting
//
// When the service still answers 429, the behavior depends on the
// auto-retry option: off (the default) surfaces the rate-limit error
// immediately; on cools down for two seconds, re-enters the pacer,
// and retries, giving up after three attempts total.
package musicbrainz

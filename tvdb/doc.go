// Package tvdb provides a client for the TVDB v4 API, the primary
// episode catalog for TV lookups.
//
// # Authentication
//
// TVDB v4 trades an API key (plus a subscriber PIN for user-supported
// keys) for a bearer token that lives 24 hours. The client handles the
// whole lifecycle: the first lookup logs in, the token rides along on
// every request, and when auto-retry is enabled a 401 triggers one
// re-login and replay.
//
//	client, err := tvdb.NewClient(
//		"your-api-key",
//		tvdb.WithPIN("your-pin"),
//		tvdb.WithAutoRetry(true),
//		tvdb.WithLogger(logger),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	results, err := client.SearchSeries(ctx, "Breaking Bad")
//
// # Season orderings
//
// TVDB models every episode ordering of a season (aired, DVD,
// absolute) as a distinct season record sharing the same number.
// GetSeasonEpisodes resolves that ambiguity: it prefers the requested
// ordering, falls back to "Aired Order", and otherwise takes the first
// record with the right number.
//
// # Identifiers
//
// Search results carry string IDs prefixed with the entity kind
// ("series-79349"); detail lookups want the bare number. ParseID
// converts between the two.
package tvdb

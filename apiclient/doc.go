// Package apiclient provides the shared HTTP pipeline under every
// metadata backend integration.
//
// Each vendor package (tmdb, tvdb, tvmaze, anidb, musicbrainz) wraps a
// Client instead of reimplementing request mechanics. The pipeline
// gives all of them the same behavior:
//
//   - Endpoint paths are joined onto the configured base URL with
//     exactly one slash between them.
//   - GET responses are cached in a bounded per-client LRU keyed by
//     method, URL, parameters, body, and extra headers. POST, PUT and
//     DELETE never touch the cache.
//   - Failures are translated into a single Error type classified on
//     two independent axes: a generic Kind (not found, auth,
//     rate limit, server, timeout, connection, parse) and the vendor
//     the failure came from.
//   - A 429 response optionally triggers one synchronous retry after
//     sleeping through the server-advised cooldown.
//
// # Usage
//
//	client, err := apiclient.New(
//		"https://api.example.com/v2",
//		apiclient.WithVendor("example"),
//		apiclient.WithCacheSize(100),
//		apiclient.WithAutoRetry(true),
//		apiclient.WithLogger(logger),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	raw, err := client.Get(ctx, "/series/42", nil)
//	if err != nil {
//		if apiclient.IsNotFound(err) {
//			// handle the missing series
//		}
//		log.Fatal(err)
//	}
//
//	var series Series
//	if err := json.Unmarshal(raw, &series); err != nil {
//		log.Fatal(err)
//	}
//
// # Error Handling
//
// Callers match errors at whatever specificity they need. HasKind
// honors the kind hierarchy, so a timeout satisfies both KindTimeout
// and KindConnection and a not-found satisfies both KindNotFound and
// KindRequest:
//
//	if apiclient.HasKind(err, apiclient.KindConnection) {
//		// covers refused connections, resets and timeouts
//	}
//	if apiclient.FromVendor(err, "tvdb") {
//		// covers every failure from the TVDB client
//	}
package apiclient

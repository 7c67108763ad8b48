// Package llm wraps an OpenAI-compatible completion endpoint as a
// metadata source of last resort.
//
// Release-group naming is adversarial enough that pattern tables
// sometimes come up empty. When they do, ParseFilename hands the raw
// filename to a language model and gets back a structured guess
// (title, year, season, episode, quality, codec, audio). The guess is
// always treated as low confidence: it can confirm or seed a lookup
// against the real catalogs, never replace one.
//
// The default endpoint is a local Ollama instance via its
// OpenAI-compatible API, so nothing leaves the machine unless a hosted
// endpoint is configured explicitly:
//
//	client, err := llm.NewClient("http://localhost:11434/v1", "deepseek-r1:8b",
//		llm.WithLogger(logger),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	guess, err := client.ParseFilename(ctx, "BreakingBad.S01E01.HDTV.x264.mkv")
//
// Failures are classified into the shared apiclient error taxonomy, so
// a rate-limited hosted endpoint looks exactly like any other
// rate-limited vendor.
package llm

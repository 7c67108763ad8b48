package llm

import (
	"context"

	"github.com/organarr/organarr/namer"
)

// verifiedConfidence is what a parse is promoted to when the model
// completes it. High enough to clear the parser's default threshold,
// low enough to stay below pattern-match certainty.
const verifiedConfidence = 0.7

// Verifier adapts the client to the parser's verification hook. Parses
// too shaky to trust on their own are re-read by the model, which
// fills the gaps the patterns missed.
type Verifier struct {
	client *Client
}

// NewVerifier wraps a client for use as a namer.Verifier.
func NewVerifier(client *Client) *Verifier {
	return &Verifier{client: client}
}

// Verify asks the model to re-read filename and merges its guess into
// parsed. The model only fills fields the patterns left empty; it
// never overrides what was already extracted.
func (v *Verifier) Verify(ctx context.Context, parsed namer.ParsedName, filename string) (namer.ParsedName, error) {
	guess, err := v.client.ParseFilename(ctx, filename)
	if err != nil {
		return parsed, err
	}
	if guess.Title == "" {
		return parsed, nil
	}

	merged := parsed
	if merged.Title == "" {
		merged.Title = guess.Title
	}
	if merged.Year == 0 {
		merged.Year = guess.Year
	}
	if merged.Season == 0 && guess.Season > 0 {
		merged.Season = guess.Season
	}
	if len(merged.Episodes) == 0 && guess.Episode > 0 {
		merged.Episodes = []int{guess.Episode}
	}
	if merged.Quality == "" {
		merged.Quality = guess.Quality
	}

	if merged.MediaType == namer.MediaUnknown {
		switch {
		case guess.IsEpisode():
			merged.MediaType = namer.MediaTV
		case guess.Year > 0:
			merged.MediaType = namer.MediaMovie
		default:
			// The model confirmed nothing decisive; keep the original.
			return parsed, nil
		}
	}

	if merged.Confidence < verifiedConfidence {
		merged.Confidence = verifiedConfidence
	}
	return merged, nil
}

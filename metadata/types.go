package metadata

import "github.com/organarr/organarr/namer"

// SearchResult is one catalog hit from a metadata source.
type SearchResult struct {
	Source     string
	ID         string
	Title      string
	Year       int
	MediaType  namer.MediaType
	Overview   string
	Confidence float64
}

// Ref returns the source-qualified identifier ("tvdb-121361") used to
// fetch the full record later. Results without a catalog ID return "".
func (r SearchResult) Ref() string {
	if r.ID == "" {
		return ""
	}
	return r.Source + "-" + r.ID
}

// Details is the full record behind a search result. Fields a source
// does not track stay zero.
type Details struct {
	Source    string
	ID        string
	Title     string
	Year      int
	MediaType namer.MediaType
	Overview  string
	Status    string
	Episodes  int
}

// MatchResult reports how a filename matched against the catalogs.
// Confidence is filled even when nothing cleared the threshold, so
// callers can tell a near miss from silence.
type MatchResult struct {
	Matched    bool
	Title      string
	Year       int
	MediaType  namer.MediaType
	Confidence float64
	Best       *SearchResult
}

// Ref returns the matched record's source-qualified ID, empty when
// nothing matched.
func (r MatchResult) Ref() string {
	if r.Best == nil {
		return ""
	}
	return r.Best.Ref()
}

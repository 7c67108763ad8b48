// Package namer parses media filenames into structured records and renders
// them back into canonical names.
//
// Parsing is pattern based and never fails: every filename yields a
// ParsedName with a confidence score, falling back to MediaUnknown when no
// pattern applies. Rendering goes through either the fixed default formats
// (see Format) or user-editable templates (see Engine).
package namer

// MediaType identifies the kind of media a filename describes.
type MediaType string

const (
	MediaTV           MediaType = "tv_show"
	MediaTVSpecial    MediaType = "tv_special"
	MediaMovie        MediaType = "movie"
	MediaAnime        MediaType = "anime"
	MediaAnimeSpecial MediaType = "anime_special"
	// MediaMusic is never produced by filename parsing; music files are
	// identified through MusicBrainz verification.
	MediaMusic   MediaType = "music"
	MediaUnknown MediaType = "unknown"
)

func (t MediaType) String() string {
	return string(t)
}

// IsAnime reports whether the type is anime or an anime special.
func (t MediaType) IsAnime() bool {
	return t == MediaAnime || t == MediaAnimeSpecial
}

// IsSpecial reports whether the type is a special of any kind.
func (t MediaType) IsSpecial() bool {
	return t == MediaTVSpecial || t == MediaAnimeSpecial
}

// ParsedName holds everything extracted from a media filename. Zero values
// mean the field was not present: Season 0 is "unknown season", an empty
// Episodes slice means no episode markers were found.
type ParsedName struct {
	MediaType  MediaType
	Title      string
	Extension  string
	Quality    string
	Confidence float64

	// TV fields.
	Season       int
	Episodes     []int
	EpisodeTitle string

	// Movie fields.
	Year int

	// Anime fields.
	Group         string
	Version       int
	SpecialType   string
	SpecialNumber int
}

// Fields returns the record as a fixed map for template rendering and rule
// evaluation. The key set is the same for every record regardless of media
// type, so rules can reference any field without existence checks.
func (p ParsedName) Fields() map[string]any {
	return map[string]any{
		"media_type":     string(p.MediaType),
		"title":          p.Title,
		"extension":      p.Extension,
		"quality":        p.Quality,
		"confidence":     p.Confidence,
		"season":         p.Season,
		"episodes":       p.Episodes,
		"episode_title":  p.EpisodeTitle,
		"year":           p.Year,
		"group":          p.Group,
		"version":        p.Version,
		"special_type":   p.SpecialType,
		"special_number": p.SpecialNumber,
	}
}

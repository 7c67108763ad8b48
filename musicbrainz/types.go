package musicbrainz

// Artist is a MusicBrainz artist entity. Score is only populated on
// search results.
type Artist struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	SortName       string    `json:"sort-name"`
	Type           string    `json:"type,omitempty"`
	Country        string    `json:"country,omitempty"`
	Disambiguation string    `json:"disambiguation,omitempty"`
	Score          int       `json:"score,omitempty"`
	Releases       []Release `json:"releases,omitempty"`
}

// Release is an album-level entity. Media is only populated on a
// lookup with recordings included.
type Release struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Status       string         `json:"status,omitempty"`
	Date         string         `json:"date,omitempty"`
	Country      string         `json:"country,omitempty"`
	TrackCount   int            `json:"track-count,omitempty"`
	Score        int            `json:"score,omitempty"`
	ArtistCredit []ArtistCredit `json:"artist-credit,omitempty"`
	Media        []Medium       `json:"media,omitempty"`
}

// Medium is one disc of a release.
type Medium struct {
	Position   int     `json:"position"`
	Format     string  `json:"format,omitempty"`
	TrackCount int     `json:"track-count,omitempty"`
	Tracks     []Track `json:"tracks,omitempty"`
}

// Track is one entry on a medium's track list.
type Track struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Number   string `json:"number"`
	Position int    `json:"position,omitempty"`
	Length   int    `json:"length,omitempty"`
}

// Recording is a distinct audio take, independent of the releases it
// appears on.
type Recording struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Length       int            `json:"length,omitempty"`
	Score        int            `json:"score,omitempty"`
	ArtistCredit []ArtistCredit `json:"artist-credit,omitempty"`
}

// ArtistCredit links an entity to the artist it is credited to.
type ArtistCredit struct {
	Name   string `json:"name"`
	Artist Artist `json:"artist"`
}

// Verification is the best catalog match for a music file's tags,
// with per-level match scores.
type Verification struct {
	Artist      string
	ArtistID    string
	ArtistScore float64

	Album      string
	AlbumID    string
	AlbumScore float64
	Year       string

	Track       string
	TrackID     string
	TrackScore  float64
	TrackNumber string
	DiscNumber  int
}

// Found reports whether the verification matched at least an artist.
func (v Verification) Found() bool {
	return v.ArtistID != ""
}

type searchArtistsResponse struct {
	Count   int      `json:"count"`
	Artists []Artist `json:"artists"`
}

type searchReleasesResponse struct {
	Count    int       `json:"count"`
	Releases []Release `json:"releases"`
}

type searchRecordingsResponse struct {
	Count      int         `json:"count"`
	Recordings []Recording `json:"recordings"`
}

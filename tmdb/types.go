package tmdb

// Movie is a TMDB movie record. Search results carry a subset of the
// fields; details lookups fill the rest.
type Movie struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	OriginalTitle string  `json:"original_title,omitempty"`
	Overview      string  `json:"overview,omitempty"`
	ReleaseDate   string  `json:"release_date,omitempty"`
	Runtime       int     `json:"runtime,omitempty"`
	Popularity    float64 `json:"popularity,omitempty"`
	VoteAverage   float64 `json:"vote_average,omitempty"`
	VoteCount     int64   `json:"vote_count,omitempty"`
	PosterPath    string  `json:"poster_path,omitempty"`
	Genres        []Genre `json:"genres,omitempty"`

	ExternalIDs *ExternalIDs `json:"external_ids,omitempty"`
}

// Show is a TMDB TV series record.
type Show struct {
	ID               int64           `json:"id"`
	Name             string          `json:"name"`
	OriginalName     string          `json:"original_name,omitempty"`
	Overview         string          `json:"overview,omitempty"`
	FirstAirDate     string          `json:"first_air_date,omitempty"`
	NumberOfSeasons  int             `json:"number_of_seasons,omitempty"`
	NumberOfEpisodes int             `json:"number_of_episodes,omitempty"`
	Popularity       float64         `json:"popularity,omitempty"`
	VoteAverage      float64         `json:"vote_average,omitempty"`
	PosterPath       string          `json:"poster_path,omitempty"`
	Genres           []Genre         `json:"genres,omitempty"`
	Seasons          []SeasonSummary `json:"seasons,omitempty"`

	ExternalIDs *ExternalIDs `json:"external_ids,omitempty"`
}

// SeasonSummary is the season stub embedded in a show's details.
type SeasonSummary struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	SeasonNumber int    `json:"season_number"`
	EpisodeCount int    `json:"episode_count"`
	AirDate      string `json:"air_date,omitempty"`
}

// SeasonDetails is the full season payload, episodes included.
type SeasonDetails struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	SeasonNumber int       `json:"season_number"`
	Episodes     []Episode `json:"episodes"`
}

// Episode is a single episode entry in a season.
type Episode struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Overview      string `json:"overview,omitempty"`
	SeasonNumber  int    `json:"season_number"`
	EpisodeNumber int    `json:"episode_number"`
	Runtime       int    `json:"runtime,omitempty"`
	AirDate       string `json:"air_date,omitempty"`
}

// Genre is a TMDB genre tag.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ExternalIDs cross-references a TMDB record to other catalogs.
// Populated when details are requested with "external_ids" appended.
type ExternalIDs struct {
	IMDBID string `json:"imdb_id,omitempty"`
	TVDBID int64  `json:"tvdb_id,omitempty"`
}

// Configuration is the API-wide configuration payload, needed to turn
// image paths into full URLs.
type Configuration struct {
	Images ImageConfiguration `json:"images"`
}

// ImageConfiguration lists the image CDN roots and available sizes.
type ImageConfiguration struct {
	BaseURL       string   `json:"base_url"`
	SecureBaseURL string   `json:"secure_base_url"`
	PosterSizes   []string `json:"poster_sizes"`
}

type movieSearchResponse struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

type showSearchResponse struct {
	Page         int    `json:"page"`
	Results      []Show `json:"results"`
	TotalPages   int    `json:"total_pages"`
	TotalResults int    `json:"total_results"`
}

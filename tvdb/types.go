package tvdb

// SearchResult is one hit from the v4 search index. IDs come back as
// strings, often with an entity prefix in ObjectID ("series-79349").
type SearchResult struct {
	ObjectID        string `json:"objectID"`
	TVDBID          string `json:"tvdb_id"`
	Name            string `json:"name"`
	Type            string `json:"type"`
	Year            string `json:"year,omitempty"`
	Overview        string `json:"overview,omitempty"`
	Network         string `json:"network,omitempty"`
	Country         string `json:"country,omitempty"`
	PrimaryLanguage string `json:"primary_language,omitempty"`
	Status          string `json:"status,omitempty"`
}

// Series is the base series record.
type Series struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Slug           string `json:"slug,omitempty"`
	Overview       string `json:"overview,omitempty"`
	Year           string `json:"year,omitempty"`
	FirstAired     string `json:"firstAired,omitempty"`
	LastAired      string `json:"lastAired,omitempty"`
	AverageRuntime int    `json:"averageRuntime,omitempty"`
	Status         Status `json:"status"`
}

// Status is the airing status attached to a series.
type Status struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// SeriesExtended is the extended series payload, seasons included.
type SeriesExtended struct {
	Series
	Seasons []Season `json:"seasons"`
}

// Season is one ordering of a series' episodes. The same season
// number appears once per ordering type (aired, DVD, absolute).
type Season struct {
	ID       int64      `json:"id"`
	SeriesID int64      `json:"seriesId"`
	Number   int        `json:"number"`
	Type     SeasonType `json:"type"`
}

// SeasonType names the ordering a season belongs to.
type SeasonType struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// Episode is a single episode record.
type Episode struct {
	ID             int64  `json:"id"`
	SeriesID       int64  `json:"seriesId"`
	Name           string `json:"name"`
	Overview       string `json:"overview,omitempty"`
	SeasonNumber   int    `json:"seasonNumber"`
	Number         int    `json:"number"`
	AbsoluteNumber int    `json:"absoluteNumber,omitempty"`
	Aired          string `json:"aired,omitempty"`
	Runtime        int    `json:"runtime,omitempty"`
}

// The v4 API wraps every payload in a data envelope.

type loginResponse struct {
	Data struct {
		Token string `json:"token"`
	} `json:"data"`
}

type searchResponse struct {
	Data []SearchResult `json:"data"`
}

type seriesResponse struct {
	Data Series `json:"data"`
}

type seriesExtendedResponse struct {
	Data SeriesExtended `json:"data"`
}

type episodesResponse struct {
	Data struct {
		Episodes []Episode `json:"episodes"`
	} `json:"data"`
}

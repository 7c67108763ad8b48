package tvmaze

// Show is a TVMaze show record. Summary fields carry the API's HTML
// markup untouched.
type Show struct {
	ID        int64     `json:"id"`
	URL       string    `json:"url,omitempty"`
	Name      string    `json:"name"`
	Type      string    `json:"type,omitempty"`
	Language  string    `json:"language,omitempty"`
	Genres    []string  `json:"genres,omitempty"`
	Status    string    `json:"status,omitempty"`
	Runtime   int       `json:"runtime,omitempty"`
	Premiered string    `json:"premiered,omitempty"`
	Ended     string    `json:"ended,omitempty"`
	Summary   string    `json:"summary,omitempty"`
	Updated   int64     `json:"updated,omitempty"`
	Rating    Rating    `json:"rating"`
	Network   *Network  `json:"network,omitempty"`
	Externals Externals `json:"externals"`
}

// Rating wraps the average user rating.
type Rating struct {
	Average float64 `json:"average"`
}

// Network is the channel or streaming service airing a show.
type Network struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Country Country `json:"country"`
}

// Country locates a network.
type Country struct {
	Name     string `json:"name"`
	Code     string `json:"code"`
	Timezone string `json:"timezone"`
}

// Externals cross-references a show to other catalogs.
type Externals struct {
	TVRage int64  `json:"tvrage,omitempty"`
	TVDB   int64  `json:"thetvdb,omitempty"`
	IMDB   string `json:"imdb,omitempty"`
}

// Episode is a single episode record.
type Episode struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Season  int    `json:"season"`
	Number  int    `json:"number"`
	Type    string `json:"type,omitempty"`
	Airdate string `json:"airdate,omitempty"`
	Airtime string `json:"airtime,omitempty"`
	Runtime int    `json:"runtime,omitempty"`
	Summary string `json:"summary,omitempty"`
}

// Person is an actor or crew member.
type Person struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Birthday string `json:"birthday,omitempty"`
}

// Character is a role within a show.
type Character struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ScoredShow is a search hit: the show plus its relevance score.
// Results come back ordered by score, best first.
type ScoredShow struct {
	Score float64 `json:"score"`
	Show  Show    `json:"show"`
}

// ScoredPerson is a people-search hit.
type ScoredPerson struct {
	Score  float64 `json:"score"`
	Person Person  `json:"person"`
}

// CastMember pairs a person with the character they play.
type CastMember struct {
	Person    Person    `json:"person"`
	Character Character `json:"character"`
}

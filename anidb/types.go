package anidb

import "encoding/xml"

// Title is one localized name of an anime or episode.
type Title struct {
	Lang  string `xml:"lang,attr"`
	Type  string `xml:"type,attr"`
	Value string `xml:",chardata"`
}

// AnimeTitles is one entry of the daily titles dump: an anime ID with
// every name it is known under.
type AnimeTitles struct {
	AID    int64   `xml:"aid,attr"`
	Titles []Title `xml:"title"`
}

// MainTitle returns the canonical title, falling back to the first
// listed name.
func (a AnimeTitles) MainTitle() string {
	for _, t := range a.Titles {
		if t.Type == "main" {
			return t.Value
		}
	}
	if len(a.Titles) > 0 {
		return a.Titles[0].Value
	}
	return ""
}

// Anime is the full record served by the HTTP API.
type Anime struct {
	ID           int64     `xml:"id,attr"`
	Type         string    `xml:"type"`
	EpisodeCount int       `xml:"episodecount"`
	StartDate    string    `xml:"startdate"`
	EndDate      string    `xml:"enddate"`
	Titles       []Title   `xml:"titles>title"`
	Description  string    `xml:"description"`
	Picture      string    `xml:"picture"`
	Episodes     []Episode `xml:"episodes>episode"`
}

// MainTitle returns the canonical title, falling back to the first
// listed name.
func (a Anime) MainTitle() string {
	return AnimeTitles{Titles: a.Titles}.MainTitle()
}

// Episode is one episode of an anime. Regular episodes carry numeric
// numbers; specials are prefixed ("S1", "C2").
type Episode struct {
	ID      int64   `xml:"id,attr"`
	Number  EpNo    `xml:"epno"`
	Length  int     `xml:"length"`
	AirDate string  `xml:"airdate"`
	Titles  []Title `xml:"title"`
}

// EpNo is an episode number with its ordering type. Type 1 is a
// regular episode; higher types are specials, openings, trailers.
type EpNo struct {
	Type  int    `xml:"type,attr"`
	Value string `xml:",chardata"`
}

// IsRegular reports whether the episode belongs to the main ordering.
func (e EpNo) IsRegular() bool {
	return e.Type == 1
}

// TitleIn returns the episode title in the given language, falling
// back to the first listed one.
func (e Episode) TitleIn(lang string) string {
	for _, t := range e.Titles {
		if t.Lang == lang {
			return t.Value
		}
	}
	if len(e.Titles) > 0 {
		return e.Titles[0].Value
	}
	return ""
}

type animeTitlesDump struct {
	XMLName xml.Name      `xml:"animetitles"`
	Anime   []AnimeTitles `xml:"anime"`
}

type apiError struct {
	XMLName xml.Name `xml:"error"`
	Code    int      `xml:"code,attr"`
	Message string   `xml:",chardata"`
}

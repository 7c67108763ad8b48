// Package detect extracts episode structure from media filenames.
//
// Matching is table driven: an ordered list of compiled patterns is
// tried until one hits, so disambiguation between overlapping formats
// (a bare "OVA" keyword versus "OVA.3") is decided by position in the
// table, not by scoring. Every function here is pure string work and
// never fails; a filename that encodes nothing recognizable simply
// yields no matches.
package detect

import (
	"regexp"
	"strconv"
)

// extractMode selects how episode numbers are pulled out of a match.
type extractMode int

const (
	// allGroups takes every capture group that participated in the
	// match, left to right.
	allGroups extractMode = iota
	// episodeRun rescans the matched text for each E<n> marker. This
	// sidesteps the single-capture limit on repeated groups and keeps
	// the leading season number out of the result.
	episodeRun
)

type multiPattern struct {
	re      *regexp.Regexp
	extract extractMode
}

// multiEpisodePatterns is tried in order; the first match wins.
var multiEpisodePatterns = []multiPattern{
	// Repeated markers: S01E01E02, S01E01E02E03, ...
	{regexp.MustCompile(`(?i)S\d+(?:E\d+){2,}`), episodeRun},
	// Hyphen range with both markers: S01E01-E03
	{regexp.MustCompile(`(?i)S\d+E(\d+)-E(\d+)`), allGroups},
	// X format range: 1x01-03
	{regexp.MustCompile(`(?i)\d+x(\d+)-(\d+)`), allGroups},
	// Hyphen range without the second marker: S01E01-03
	{regexp.MustCompile(`(?i)S\d+E(\d+)-(\d+)`), allGroups},
	// Space separated markers: S01E01 E02
	{regexp.MustCompile(`(?i)S\d+E(\d+)\s+E(\d+)`), allGroups},
	// Word separator: S01E01 to E03
	{regexp.MustCompile(`(?i)S\d+E(\d+)\s+to\s+E(\d+)`), allGroups},
	// Symbol separators: S01E01&E02, S01E01+E02, S01E01,E02
	{regexp.MustCompile(`(?i)S\d+E(\d+)\s*[&+,]\s*E(\d+)`), allGroups},
}

var (
	episodeMarker = regexp.MustCompile(`(?i)E(\d+)`)
	singleEpisode = regexp.MustCompile(`(?i)S\d+E(\d+)|(\d+)x\d+|Episode\s*(\d+)`)
)

// MultiEpisodes returns every episode number encoded in filename, in
// order of appearance. Range formats yield their two endpoints, so
// S01E01-E05 gives [1 5], never the expanded run. A name carrying a
// single episode marker yields one element; anything unrecognizable
// yields none.
func MultiEpisodes(filename string) []int {
	for _, p := range multiEpisodePatterns {
		var episodes []int
		switch p.extract {
		case episodeRun:
			span := p.re.FindString(filename)
			if span == "" {
				continue
			}
			for _, m := range episodeMarker.FindAllStringSubmatch(span, -1) {
				if n, err := strconv.Atoi(m[1]); err == nil {
					episodes = append(episodes, n)
				}
			}
		case allGroups:
			m := p.re.FindStringSubmatch(filename)
			if m == nil {
				continue
			}
			for _, g := range m[1:] {
				if g == "" {
					continue
				}
				if n, err := strconv.Atoi(g); err == nil {
					episodes = append(episodes, n)
				}
			}
		}
		if len(episodes) > 0 {
			return episodes
		}
	}

	if m := singleEpisode.FindStringSubmatch(filename); m != nil {
		for _, g := range m[1:] {
			if g == "" {
				continue
			}
			if n, err := strconv.Atoi(g); err == nil {
				return []int{n}
			}
		}
	}

	return nil
}

// SpecialType labels the kind of special release a filename encodes.
type SpecialType string

const (
	SpecialEpisode SpecialType = "special"
	SpecialOVA     SpecialType = "ova"
	SpecialMovie   SpecialType = "movie"
)

// SpecialMatch describes a detected special. Number is nil when the
// filename names a special without a sequence number, which is a
// different state from no special at all.
type SpecialMatch struct {
	Type   SpecialType
	Number *int
}

type specialPattern struct {
	re  *regexp.Regexp
	typ SpecialType
}

// specialPatterns is tried in order; the first match wins. Keyword
// variants with an attached number sit above the bare keywords so
// "OVA.3" is not shadowed by "OVA".
var specialPatterns = []specialPattern{
	{regexp.MustCompile(`(?i)S00E(\d+)`), SpecialEpisode},
	{regexp.MustCompile(`(?i)Special\.(\d+)`), SpecialEpisode},
	{regexp.MustCompile(`(?i)Special\s*(\d+)`), SpecialEpisode},
	{regexp.MustCompile(`(?i)Specials?`), SpecialEpisode},
	{regexp.MustCompile(`(?i)OVA\.(\d+)`), SpecialOVA},
	{regexp.MustCompile(`(?i)OVA\s*(\d+)`), SpecialOVA},
	{regexp.MustCompile(`(?i)OVAs?`), SpecialOVA},
	{regexp.MustCompile(`(?i)Movie\.(\d+)|Film\.(\d+)`), SpecialMovie},
	{regexp.MustCompile(`(?i)Movie\s*(\d+)|Film\s*(\d+)`), SpecialMovie},
	{regexp.MustCompile(`(?i)Movie|Film`), SpecialMovie},
}

// standaloneNumber picks up a bare dot-delimited integer such as the
// "7" in "Show.Special.Episode.7.mp4". It is a best effort fallback
// for specials whose sequence number is not adjacent to the keyword;
// an unrelated numeric segment between dots can supply a wrong number.
var standaloneNumber = regexp.MustCompile(`\.(\d+)\.`)

// Special reports whether filename encodes a special release. Returns
// nil when no special pattern matches.
func Special(filename string) *SpecialMatch {
	var fallback *int
	if m := standaloneNumber.FindStringSubmatch(filename); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			fallback = &n
		}
	}

	for _, p := range specialPatterns {
		m := p.re.FindStringSubmatch(filename)
		if m == nil {
			continue
		}
		var number *int
		for _, g := range m[1:] {
			if g == "" {
				continue
			}
			if n, err := strconv.Atoi(g); err == nil {
				number = &n
				break
			}
		}
		if number == nil {
			number = fallback
		}
		return &SpecialMatch{Type: p.typ, Number: number}
	}

	return nil
}

package detect

import (
	"path/filepath"
	"regexp"
	"strings"
)

// EpisodeType aggregates every classification the detector can make
// about one filename.
type EpisodeType struct {
	IsAnthology  bool
	SegmentCount int
	IsPremiere   bool
	IsFinale     bool
	IsMultiPart  bool
}

var finalePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:season|series)[\s-]*finale`),
	regexp.MustCompile(`final[\s.-]*episode`),
	regexp.MustCompile(`finale`),
}

var premierePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:season|series)[\s-]*premiere`),
	regexp.MustCompile(`first[\s-]*episode`),
	regexp.MustCompile(`premiere`),
	regexp.MustCompile(`pilot`),
}

const numberWords = `\d+|one|two|three|four|five|i|ii|iii|iv|v`

var partPatterns = []*regexp.Regexp{
	regexp.MustCompile(`part[\s.-]*(` + numberWords + `)`),
	regexp.MustCompile(`pt[\s.-]*(` + numberWords + `)`),
	regexp.MustCompile(`(` + numberWords + `)\s*of\s*(` + numberWords + `)`),
	regexp.MustCompile(`\((` + numberWords + `)[ .]of[ .](` + numberWords + `)\)`),
}

// titlePattern pulls the title text that follows an SxxExx marker,
// including multi-episode variants, with the extension stripped.
var titlePattern = regexp.MustCompile(`(?i)S\d+[.\s_-]*E\d+(?:[-E\d ]*\d)?[.\s_-]*(.*?)(?:\.\w+)?$`)

// segmentSeparators are the separators anthology titles place between
// segment names: "&", ",", "+", spaced hyphens and the word "and".
var segmentSeparators = regexp.MustCompile(`\s*[&,+]\s*|\s+-\s+|\s+and\s+`)

// SplitTitleSegments splits an episode title into its segment names.
// A title without separators comes back as a single segment; an empty
// title yields none.
func SplitTitleSegments(title string) []string {
	if strings.TrimSpace(title) == "" {
		return nil
	}
	parts := segmentSeparators.Split(title, -1)
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

// IsAnthology reports whether filename appears to hold multiple story
// segments, either as several episode markers or as a title listing
// segment names.
func IsAnthology(filename string) bool {
	if len(MultiEpisodes(filename)) > 1 {
		return true
	}
	return len(SplitTitleSegments(titleOf(filename))) > 1
}

// SegmentCount reports how many segments filename appears to hold.
// A two-element episode range with a gap counts the full span, so
// S01E01-E03 is three segments. Non-anthology files count as one.
func SegmentCount(filename string) int {
	if !IsAnthology(filename) {
		return 1
	}

	episodes := MultiEpisodes(filename)
	if len(episodes) > 1 {
		if len(episodes) == 2 && episodes[1]-episodes[0] > 1 {
			return episodes[1] - episodes[0] + 1
		}
		return len(episodes)
	}

	if segments := SplitTitleSegments(titleOf(filename)); len(segments) > 1 {
		return len(segments)
	}
	return 1
}

// IsSeasonFinale reports whether the filename carries a finale marker.
func IsSeasonFinale(filename string) bool {
	lower := strings.ToLower(filename)
	for _, p := range finalePatterns {
		if p.MatchString(lower) {
			return true
		}
	}
	return false
}

// IsSeasonPremiere reports whether the filename carries a premiere or
// pilot marker. A plain episode one is not assumed to be a premiere.
func IsSeasonPremiere(filename string) bool {
	lower := strings.ToLower(filename)
	for _, p := range premierePatterns {
		if p.MatchString(lower) {
			return true
		}
	}
	return false
}

// IsMultiPart reports whether the filename marks one part of a
// multi-part story, in digit, word or roman numeral form.
func IsMultiPart(filename string) bool {
	lower := strings.ToLower(filename)
	for _, p := range partPatterns {
		if p.MatchString(lower) {
			return true
		}
	}
	return false
}

// Classify runs every episode-type check on one filename.
func Classify(filename string) EpisodeType {
	t := EpisodeType{SegmentCount: 1}
	t.IsAnthology = IsAnthology(filename)
	if t.IsAnthology {
		t.SegmentCount = SegmentCount(filename)
	}
	t.IsFinale = IsSeasonFinale(filename)
	t.IsPremiere = IsSeasonPremiere(filename)
	t.IsMultiPart = IsMultiPart(filename)
	return t
}

// titleOf extracts the title portion after the episode marker. Empty
// when the name has no marker.
func titleOf(filename string) string {
	base := filepath.Base(filename)
	m := titlePattern.FindStringSubmatch(base)
	if m == nil {
		return ""
	}
	return m[1]
}

package metadata

import (
	"regexp"
	"strconv"
	"strings"
)

// Scoring weights. Title similarity carries most of the score; a year
// agreement nudges it either way.
const (
	titleWeight = 0.8
	yearBonus   = 0.3
	yearPenalty = 0.1
)

// Filename cleanup patterns, applied in order by extractTitleYear.
var (
	extensionRe      = regexp.MustCompile(`\.[^.]+$`)
	yearRe           = regexp.MustCompile(`(?:^|\D)(\d{4})(?:\D|$)`)
	episodeMarkRe    = regexp.MustCompile(`(?i)S\d{1,2}E\d{1,2}.*`)
	seasonMarkRe     = regexp.MustCompile(`(?i)Season\s+\d+.*`)
	bracketTagRe     = regexp.MustCompile(`\[\w+\]`)
	trailingNumberRe = regexp.MustCompile(`\s*-\s*\d+.*`)
	qualityBracketRe = regexp.MustCompile(`\[\d+p\]`)
	separatorRe      = regexp.MustCompile(`[._()-]`)
	whitespaceRe     = regexp.MustCompile(`\s+`)
)

// stopwords are articles excluded from title comparison.
var stopwords = map[string]struct{}{
	"the": {},
	"a":   {},
	"an":  {},
}

// extractTitleYear pulls a searchable title and release year out of a
// media filename. The year must be a plausible 4-digit number, which
// keeps resolutions like 1080 from being read as years. Episode and
// season markers, bracket tags and the year itself are stripped from
// the title.
func extractTitleYear(filename string) (string, int) {
	name := extensionRe.ReplaceAllString(filename, "")

	year := 0
	for _, m := range yearRe.FindAllStringSubmatch(name, -1) {
		n, err := strconv.Atoi(m[1])
		if err == nil && n >= 1900 && n < 2100 {
			year = n
			break
		}
	}

	title := name
	if year > 0 {
		yearPattern := regexp.MustCompile(`\.?\(?` + strconv.Itoa(year) + `(?:\.\))?`)
		title = yearPattern.ReplaceAllString(title, "")
	}
	title = episodeMarkRe.ReplaceAllString(title, "")
	title = seasonMarkRe.ReplaceAllString(title, "")
	title = bracketTagRe.ReplaceAllString(title, "")
	title = trailingNumberRe.ReplaceAllString(title, "")
	title = qualityBracketRe.ReplaceAllString(title, "")
	title = separatorRe.ReplaceAllString(title, " ")
	title = strings.TrimSpace(whitespaceRe.ReplaceAllString(title, " "))

	return title, year
}

// scoreMatch rates how well a search result answers the extracted
// title and year: similarity weighted at 0.8, plus 0.3 when the years
// agree, minus 0.1 when they conflict, capped at 1.0.
func scoreMatch(title string, year int, r SearchResult) float64 {
	score := titleSimilarity(title, r.Title) * titleWeight

	if year > 0 && r.Year > 0 {
		if year == r.Year {
			score += yearBonus
		} else {
			score -= yearPenalty
		}
	}

	if score > 1 {
		score = 1
	}
	return score
}

// titleSimilarity compares titles by word overlap (Jaccard), ignoring
// case and leading articles. Identical titles score 1.0.
func titleSimilarity(a, b string) float64 {
	if strings.EqualFold(a, b) {
		return 1.0
	}

	wordsA := contentWords(a)
	wordsB := contentWords(b)

	union := make(map[string]struct{}, len(wordsA)+len(wordsB))
	for w := range wordsA {
		union[w] = struct{}{}
	}
	for w := range wordsB {
		union[w] = struct{}{}
	}
	if len(union) == 0 {
		return 0
	}

	shared := 0
	for w := range wordsA {
		if _, ok := wordsB[w]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(union))
}

func contentWords(title string) map[string]struct{} {
	words := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(title)) {
		if _, skip := stopwords[w]; !skip {
			words[w] = struct{}{}
		}
	}
	return words
}

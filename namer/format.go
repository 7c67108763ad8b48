package namer

import (
	"fmt"
	"sort"
	"strings"
)

// Style selects the separator convention for default formatting.
type Style string

const (
	// StyleDots joins name parts with periods: Show.Name.S01E02.mp4.
	StyleDots Style = "dots"
	// StyleSpaces keeps spaces and wraps quality in brackets:
	// Show Name S01E02 [720p].mp4.
	StyleSpaces Style = "spaces"
)

// PreviewName parses a filename and renders it back with the default format
// for its detected media type.
func PreviewName(filename string, style Style) string {
	return Format(ParseName(filename), style)
}

// Format renders a parsed name with the default format for its media type.
func Format(p ParsedName, style Style) string {
	switch {
	case p.MediaType == MediaMovie:
		return FormatMovie(p, style)
	case p.MediaType.IsAnime():
		return FormatAnime(p, style)
	default:
		return FormatTV(p, style)
	}
}

// FormatTV renders a TV episode name. Missing fields fall back to neutral
// defaults so the result is always a usable filename.
func FormatTV(p ParsedName, style Style) string {
	title := p.Title
	if title == "" {
		title = "Unknown"
	}
	season := p.Season
	if season == 0 {
		season = 1
	}
	episodes := p.Episodes
	if len(episodes) == 0 {
		episodes = []int{1}
	}
	extension := p.Extension
	if extension == "" {
		extension = "mp4"
	}

	episodeTitle := p.EpisodeTitle
	separator := " "
	if style == StyleDots {
		title = strings.ReplaceAll(title, " ", ".")
		episodeTitle = strings.ReplaceAll(episodeTitle, " ", ".")
		separator = "."
	}

	parts := []string{title, fmt.Sprintf("S%02d%s", season, episodeLabel(episodes))}
	if episodeTitle != "" {
		parts = append(parts, episodeTitle)
	}
	if p.Quality != "" {
		parts = append(parts, p.Quality)
	}

	name := strings.Join(parts, separator)
	if !strings.HasPrefix(extension, ".") {
		extension = "." + extension
	}
	if !strings.HasSuffix(name, extension) {
		name += extension
	}
	return name
}

// FormatMovie renders a movie name, "Title (Year) [Quality]" in the spaces
// style and dot-joined otherwise.
func FormatMovie(p ParsedName, style Style) string {
	extension := p.Extension
	if !strings.HasPrefix(extension, ".") {
		extension = "." + extension
	}

	if style == StyleDots {
		parts := []string{strings.ReplaceAll(p.Title, " ", ".")}
		if p.Year != 0 {
			parts = append(parts, fmt.Sprint(p.Year))
		}
		if p.Quality != "" {
			parts = append(parts, p.Quality)
		}
		return strings.Join(parts, ".") + extension
	}

	name := p.Title
	if p.Year != 0 {
		name = fmt.Sprintf("%s (%d)", p.Title, p.Year)
	}
	if p.Quality != "" {
		name += " [" + p.Quality + "]"
	}
	return name + extension
}

// FormatAnime renders an anime name. Releases with a known group keep the
// fansub convention "[Group] Title - 01 [720p]" regardless of style.
func FormatAnime(p ParsedName, style Style) string {
	var episodeText string
	if p.MediaType == MediaAnimeSpecial && p.SpecialType != "" {
		episodeText = "E" + strings.ToUpper(p.SpecialType)
		if p.SpecialNumber != 0 {
			episodeText += fmt.Sprint(p.SpecialNumber)
		}
	} else if len(p.Episodes) == 1 {
		episodeText = fmt.Sprintf("E%02d", p.Episodes[0])
	} else if len(p.Episodes) > 1 {
		episodeText = fmt.Sprintf("E%02d-E%02d", p.Episodes[0], p.Episodes[len(p.Episodes)-1])
	}

	if p.Group != "" {
		name := fmt.Sprintf("[%s] %s - %s", p.Group, p.Title, strings.TrimLeft(episodeText, "E"))
		if p.Quality != "" {
			name += " [" + p.Quality + "]"
		}
		return name + p.Extension
	}

	title := p.Title
	if style == StyleDots {
		title = strings.ReplaceAll(title, " ", ".")
		parts := []string{title}
		if episodeText != "" {
			parts = append(parts, episodeText)
		}
		if p.Quality != "" {
			parts = append(parts, p.Quality)
		}
		return strings.Join(parts, ".") + p.Extension
	}

	name := title
	if episodeText != "" {
		name += " " + episodeText
	}
	if p.Quality != "" {
		name += " [" + p.Quality + "]"
	}
	return name + p.Extension
}

// episodeLabel formats an episode list: E02 for a single episode, E01-E03
// for a sequential run, E01E03E07 for anything else.
func episodeLabel(episodes []int) string {
	if len(episodes) == 0 {
		return ""
	}
	if len(episodes) == 1 {
		return fmt.Sprintf("E%02d", episodes[0])
	}

	sorted := make([]int, len(episodes))
	copy(sorted, episodes)
	sort.Ints(sorted)

	sequential := true
	for i := 1; i < len(sorted); i++ {
		if sorted[i] != sorted[i-1]+1 {
			sequential = false
			break
		}
	}
	if sequential {
		return fmt.Sprintf("E%02d-E%02d", sorted[0], sorted[len(sorted)-1])
	}

	var b strings.Builder
	for _, ep := range sorted {
		fmt.Fprintf(&b, "E%02d", ep)
	}
	return b.String()
}

package namer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatTV(t *testing.T) {
	parsed := ParsedName{
		MediaType:    MediaTV,
		Title:        "Show Name",
		Season:       1,
		Episodes:     []int{2},
		EpisodeTitle: "Episode Title",
		Extension:    ".mp4",
	}

	assert.Equal(t, "Show.Name.S01E02.Episode.Title.mp4", FormatTV(parsed, StyleDots))
	assert.Equal(t, "Show Name S01E02 Episode Title.mp4", FormatTV(parsed, StyleSpaces))
}

func TestFormatTVWithQuality(t *testing.T) {
	parsed := ParsedName{
		MediaType: MediaTV,
		Title:     "Show Name",
		Season:    2,
		Episodes:  []int{5},
		Quality:   "720p",
		Extension: ".mp4",
	}

	assert.Equal(t, "Show Name S02E05 720p.mp4", FormatTV(parsed, StyleSpaces))
	assert.Equal(t, "Show.Name.S02E05.720p.mp4", FormatTV(parsed, StyleDots))
}

func TestFormatTVMultiEpisode(t *testing.T) {
	parsed := ParsedName{
		MediaType: MediaTV,
		Title:     "Show Name",
		Season:    1,
		Episodes:  []int{3, 1, 2},
		Extension: ".mp4",
	}

	// Sequential runs collapse to a range after sorting.
	assert.Equal(t, "Show.Name.S01E01-E03.mp4", FormatTV(parsed, StyleDots))

	parsed.Episodes = []int{1, 3, 7}
	assert.Equal(t, "Show.Name.S01E01E03E07.mp4", FormatTV(parsed, StyleDots))
}

func TestFormatTVDefaults(t *testing.T) {
	assert.Equal(t, "Unknown.S01E01.mp4", FormatTV(ParsedName{}, StyleDots))
}

func TestFormatMovie(t *testing.T) {
	parsed := ParsedName{
		MediaType: MediaMovie,
		Title:     "Movie Name",
		Year:      2020,
		Quality:   "1080p",
		Extension: ".mp4",
	}

	assert.Equal(t, "Movie.Name.2020.1080p.mp4", FormatMovie(parsed, StyleDots))
	assert.Equal(t, "Movie Name (2020) [1080p].mp4", FormatMovie(parsed, StyleSpaces))

	parsed.Year = 0
	parsed.Quality = ""
	assert.Equal(t, "Movie Name.mp4", FormatMovie(parsed, StyleSpaces))
	assert.Equal(t, "Movie.Name.mp4", FormatMovie(parsed, StyleDots))
}

func TestFormatAnimeWithGroup(t *testing.T) {
	parsed := ParsedName{
		MediaType: MediaAnime,
		Title:     "Anime Name",
		Group:     "Group",
		Episodes:  []int{1},
		Quality:   "720p",
		Extension: ".mkv",
	}

	// The fansub convention wins over the style when a group is known.
	assert.Equal(t, "[Group] Anime Name - 01 [720p].mkv", FormatAnime(parsed, StyleDots))
	assert.Equal(t, "[Group] Anime Name - 01 [720p].mkv", FormatAnime(parsed, StyleSpaces))
}

func TestFormatAnimeSpecial(t *testing.T) {
	parsed := ParsedName{
		MediaType:     MediaAnimeSpecial,
		Title:         "Anime Name",
		Group:         "Group",
		SpecialType:   "OVA",
		SpecialNumber: 2,
		Quality:       "1080p",
		Extension:     ".mkv",
	}

	assert.Equal(t, "[Group] Anime Name - OVA2 [1080p].mkv", FormatAnime(parsed, StyleSpaces))
}

func TestFormatAnimeWithoutGroup(t *testing.T) {
	parsed := ParsedName{
		MediaType: MediaAnime,
		Title:     "Anime Name",
		Episodes:  []int{5},
		Quality:   "720p",
		Extension: ".mkv",
	}

	assert.Equal(t, "Anime.Name.E05.720p.mkv", FormatAnime(parsed, StyleDots))
	assert.Equal(t, "Anime Name E05 [720p].mkv", FormatAnime(parsed, StyleSpaces))
}

func TestFormatDispatch(t *testing.T) {
	movie := ParsedName{MediaType: MediaMovie, Title: "Movie", Year: 2020, Extension: ".mp4"}
	assert.Equal(t, "Movie (2020).mp4", Format(movie, StyleSpaces))

	special := ParsedName{
		MediaType:     MediaAnimeSpecial,
		Title:         "Anime",
		Group:         "Group",
		SpecialType:   "Special",
		SpecialNumber: 1,
		Extension:     ".mkv",
	}
	assert.Equal(t, "[Group] Anime - SPECIAL1.mkv", Format(special, StyleSpaces))

	// TV specials and unknowns fall back to the TV formatter.
	tvSpecial := ParsedName{MediaType: MediaTVSpecial, Title: "Show", Season: 1, Episodes: []int{4}, Extension: ".mp4"}
	assert.Equal(t, "Show S01E04.mp4", Format(tvSpecial, StyleSpaces))
}

func TestPreviewName(t *testing.T) {
	assert.Equal(t, "Show.Name.S01E02.Episode.Title.mp4",
		PreviewName("Show Name - S01E02 - Episode Title.mp4", StyleDots))
	assert.Equal(t, "Movie Name (2020) [720p].mp4",
		PreviewName("Movie.Name.2020.720p.mp4", StyleSpaces))
}

func TestEpisodeLabel(t *testing.T) {
	cases := []struct {
		name     string
		episodes []int
		want     string
	}{
		{"empty", nil, ""},
		{"single", []int{2}, "E02"},
		{"sequential", []int{1, 2, 3}, "E01-E03"},
		{"unsorted sequential", []int{3, 1, 2}, "E01-E03"},
		{"gaps", []int{1, 3, 7}, "E01E03E07"},
		{"pair with gap", []int{1, 3}, "E01E03"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, episodeLabel(tc.episodes))
		})
	}
}

package llm

import (
	"strconv"
	"strings"
)

// FilenameGuess is the model's structured reading of a media filename.
// Zero fields mean the model could not extract that detail.
type FilenameGuess struct {
	Title   string
	Year    int
	Season  int
	Episode int
	Quality string
	Codec   string
	Audio   string
}

// IsEpisode reports whether the guess describes a TV episode.
func (g FilenameGuess) IsEpisode() bool {
	return g.Season > 0 && g.Episode > 0
}

// String renders the guess as a compact one-line summary for logs and
// table output.
func (g FilenameGuess) String() string {
	var b strings.Builder
	b.WriteString(g.Title)
	if g.Year > 0 {
		b.WriteString(" (" + strconv.Itoa(g.Year) + ")")
	}
	if g.IsEpisode() {
		b.WriteString(" S" + pad2(g.Season) + "E" + pad2(g.Episode))
	}
	if g.Quality != "" {
		b.WriteString(" " + g.Quality)
	}
	if g.Codec != "" {
		b.WriteString(" " + g.Codec)
	}
	return b.String()
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

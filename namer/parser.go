package namer

import (
	"context"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/organarr/organarr/detect"
)

// Confidence thresholds. Strict parsers reject anything under
// strictThreshold; verifiers are only consulted below verifyBelow.
const (
	defaultThreshold = 0.5
	strictThreshold  = 0.8
	verifyBelow      = 0.95
)

// Detection patterns, checked in order. Anime group tags are checked before
// TV markers because fansub names often contain stray SxxExx-like tokens.
var (
	animeSpecialHint = regexp.MustCompile(`^\[.*?\].*?OVA\d*\s*\[`)

	animePatterns = []*regexp.Regexp{
		regexp.MustCompile(`^\[([^\]]+)\]`),
		regexp.MustCompile(` - \d{1,2}(v\d)? \[`),
		regexp.MustCompile(` - (OVA|Special)\d* \[`),
	}

	tvSpecialPatterns = []*regexp.Regexp{
		regexp.MustCompile(`[sS]\d{1,2}\.5x[Ss]pecial`),
		regexp.MustCompile(`[Ss]pecial\s+[Ee]pisode`),
		regexp.MustCompile(`OVA\d*`),
	}

	tvPatterns = []*regexp.Regexp{
		regexp.MustCompile(`[sS]\d{1,2}[eE]\d{1,2}`),
		regexp.MustCompile(`[sS]\d{1,2}[eE]\d{1,2}(?:[eE]\d{1,2})+`),
		regexp.MustCompile(`\d{1,2}x\d{1,2}`),
		regexp.MustCompile(`[Ss]eason\s+\d{1,2}\s+[Ee]pisode\s+\d{1,2}`),
		regexp.MustCompile(`[sS]\d{1,2}\.[eE]\d{1,2}`),
	}

	moviePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\(\d{4}\)`),
		regexp.MustCompile(`\[\d{4}\]`),
		regexp.MustCompile(`[. _-]+(19|20)\d{2}[. _-]`),
		regexp.MustCompile(`\b(19|20)\d{2}\b.*\d+p`),
	}

	trailingYear = regexp.MustCompile(`(19|20)\d{2}(\.|$|\s)`)
)

// DetectMediaType classifies a filename without fully parsing it.
func DetectMediaType(filename string) MediaType {
	name := filepath.Base(filename)

	if animeSpecialHint.MatchString(name) {
		return MediaAnimeSpecial
	}

	for _, re := range animePatterns {
		if re.MatchString(name) {
			if strings.Contains(name, "OVA") || strings.Contains(name, "Special") {
				return MediaAnimeSpecial
			}
			return MediaAnime
		}
	}

	for _, re := range tvSpecialPatterns {
		if re.MatchString(name) {
			return MediaTVSpecial
		}
	}

	for _, re := range tvPatterns {
		if re.MatchString(name) {
			return MediaTV
		}
	}

	for _, re := range moviePatterns {
		if re.MatchString(name) {
			return MediaMovie
		}
	}

	// Bare trailing year, e.g. "Movie Name 2020.mp4".
	if trailingYear.MatchString(name) {
		return MediaMovie
	}

	return MediaUnknown
}

// TV filename patterns. Episode titles and quality markers are optional in
// most layouts, so quality is stripped first to keep it out of titles.
var (
	tvDashQuality = regexp.MustCompile(`(.*?)\s+-\s+[sS](\d{1,2})[eE](\d{1,2})\s+-\s+(.*?)\s+-\s+(.*?)$`)
	tvDash        = regexp.MustCompile(`(.*?)\s+-\s+[sS](\d{1,2})[eE](\d{1,2})\s+-\s+(.*?)(?:\s+-\s+.*)?$`)
	tvRange       = regexp.MustCompile(`(.*?)[. _-]+[sS](\d{1,2})[eE](\d{1,2})-[eE](\d{1,2})(?:[. _-]+(.*))?`)
	tvStandard    = regexp.MustCompile(`(.*?)[. _-]+[sS](\d{1,2})[eE](\d{1,2})((?:[eE]\d{1,2})*)(?:[. _-]+(.*))?`)
	tvAlternate   = regexp.MustCompile(`(.*?)[. _-]+(\d{1,2})x(\d{1,2})(?:[. _-]+(.*))?`)
	tvVerbose     = regexp.MustCompile(`(.*?)[. _-]+[Ss]eason[. _-]+(\d{1,2})[. _-]+[Ee]pisode[. _-]+(\d{1,2})(?:[. _-]+(.*))?`)
	tvPeriod      = regexp.MustCompile(`(.*?)[. _-]+[sS](\d{1,2})\.[eE](\d{1,2})(?:[. _-]+(.*))?`)

	tvExtraEpisodes = regexp.MustCompile(`[eE](\d{1,2})`)
	titleYear       = regexp.MustCompile(`(.*?) \((\d{4})\)`)

	// Ordered so the combined form wins when quality and source are
	// space-separated; each match is removed from the working name.
	tvQualityPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(\d{3,4}p\s+(?:HDTV|WEB-DL|BluRay|BRRip))`),
		regexp.MustCompile(`(?i)(\d{3,4}p)`),
		regexp.MustCompile(`(?i)(HDTV|WEB-DL|BluRay|BRRip)`),
		regexp.MustCompile(`(?i)(x264|x265|HEVC)`),
	}
)

func parseTV(filename string) ParsedName {
	p := ParsedName{
		MediaType:  MediaTV,
		Extension:  filepath.Ext(filename),
		Season:     1,
		Confidence: 0.8,
	}
	name := strings.TrimSuffix(filename, p.Extension)

	// Dash layout carries quality as its own segment, so capture it before
	// the stripping pass below can split it up.
	if m := tvDashQuality.FindStringSubmatch(name); m != nil {
		p.Title = strings.TrimSpace(m[1])
		p.Season = toInt(m[2])
		p.Episodes = []int{toInt(m[3])}
		p.EpisodeTitle = strings.TrimSpace(m[4])
		p.Quality = strings.TrimSpace(m[5])
		p.Confidence = 0.95
		return p
	}

	for _, re := range tvQualityPatterns {
		if m := re.FindStringSubmatch(name); m != nil {
			p.Quality = m[1]
			name = re.ReplaceAllString(name, "")
		}
	}

	if m := tvDash.FindStringSubmatch(name); m != nil {
		p.Title = strings.TrimSpace(m[1])
		p.Season = toInt(m[2])
		p.Episodes = []int{toInt(m[3])}
		p.EpisodeTitle = strings.TrimSpace(m[4])
		p.Confidence = 0.95
		return p
	}

	// Ranges expand to the full episode list: S01E02-E04 covers 2, 3 and 4.
	if m := tvRange.FindStringSubmatch(name); m != nil {
		p.Title = cleanTitle(m[1])
		p.Season = toInt(m[2])
		for ep := toInt(m[3]); ep <= toInt(m[4]); ep++ {
			p.Episodes = append(p.Episodes, ep)
		}
		if m[5] != "" {
			p.EpisodeTitle = cleanTitle(m[5])
		}
		p.Confidence = 0.9
		return p
	}

	switch {
	case tvStandard.MatchString(name):
		m := tvStandard.FindStringSubmatch(name)
		p.Title = cleanTitle(m[1])
		p.Season = toInt(m[2])
		p.Episodes = []int{toInt(m[3])}
		for _, extra := range tvExtraEpisodes.FindAllStringSubmatch(m[4], -1) {
			p.Episodes = append(p.Episodes, toInt(extra[1]))
		}
		if m[5] != "" {
			p.EpisodeTitle = cleanTitle(m[5])
		}
		p.Confidence = 0.95

	case tvAlternate.MatchString(name):
		m := tvAlternate.FindStringSubmatch(name)
		p.Title = cleanTitle(m[1])
		p.Season = toInt(m[2])
		p.Episodes = []int{toInt(m[3])}
		if m[4] != "" {
			p.EpisodeTitle = cleanTitle(m[4])
		}
		p.Confidence = 0.85

	case tvVerbose.MatchString(name):
		m := tvVerbose.FindStringSubmatch(name)
		p.Title = cleanTitle(m[1])
		p.Season = toInt(m[2])
		p.Episodes = []int{toInt(m[3])}
		if m[4] != "" {
			p.EpisodeTitle = cleanTitle(m[4])
		}
		p.Confidence = 0.8

	case tvPeriod.MatchString(name):
		m := tvPeriod.FindStringSubmatch(name)
		p.Title = cleanTitle(m[1])
		p.Season = toInt(m[2])
		p.Episodes = []int{toInt(m[3])}
		if m[4] != "" {
			p.EpisodeTitle = cleanTitle(m[4])
		}
		p.Confidence = 0.8
	}

	// Keep a year that is part of the show title, e.g. "Show Name (2018)".
	if m := titleYear.FindStringSubmatch(p.Title); m != nil {
		p.Title = m[1] + " (" + m[2] + ")"
	}

	return p
}

// Movie filename patterns. Year placement decides the layout; quality scan
// keeps the last match so a combined "1080p BluRay" beats its parts.
var (
	movieParen     = regexp.MustCompile(`(.*?)\s*\((\d{4})\)(?:.*)?$`)
	movieBracket   = regexp.MustCompile(`(.*?)\s*\[(\d{4})\](?:.*)?$`)
	movieSeparator = regexp.MustCompile(`(.*?)[. _-]+(19\d{2}|20\d{2})(?:[. _-]+(.*))?$`)

	movieQualityPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(\d{3,4}p)`),
		regexp.MustCompile(`(?i)(HDTV|WEB-DL|BluRay|BRRip)`),
		regexp.MustCompile(`(?i)(x264|x265|HEVC)`),
		regexp.MustCompile(`(?i)(\d{3,4}p\s+(?:HDTV|WEB-DL|BluRay|BRRip))`),
	}
)

func parseMovie(filename string) ParsedName {
	p := ParsedName{
		MediaType:  MediaMovie,
		Extension:  filepath.Ext(filename),
		Confidence: 0.8,
	}

	for _, re := range movieQualityPatterns {
		if m := re.FindStringSubmatch(filename); m != nil {
			p.Quality = m[1]
		}
	}

	switch {
	case movieParen.MatchString(filename):
		m := movieParen.FindStringSubmatch(filename)
		p.Title = strings.TrimSpace(m[1])
		p.Year = toInt(m[2])
		p.Confidence = 0.95

	case movieBracket.MatchString(filename):
		m := movieBracket.FindStringSubmatch(filename)
		p.Title = strings.TrimSpace(m[1])
		p.Year = toInt(m[2])
		p.Confidence = 0.9

	case movieSeparator.MatchString(filename):
		m := movieSeparator.FindStringSubmatch(filename)
		p.Title = cleanTitle(m[1])
		p.Year = toInt(m[2])
		p.Confidence = 0.85
	}

	return p
}

// Anime filename patterns, all anchored on the leading [Group] tag.
var (
	animeGroup    = regexp.MustCompile(`^\[([^\]]+)\]`)
	animeQuality  = regexp.MustCompile(`\[(\d{3,4}p)\]`)
	animeStandard = regexp.MustCompile(`^\[([^\]]+)\]\s*(.*?)\s*-\s*(\d{1,2})(v\d)?\s*\[.*?\]`)
	animeSpecial  = regexp.MustCompile(`^\[([^\]]+)\]\s*(.*?)\s*-\s*(OVA|Special)(\d*)\s*\[.*?\]`)
	animeBasic    = regexp.MustCompile(`^\[.*?\]\s*(.*?)\s*-\s*(\d{1,2})`)
)

func parseAnime(filename string) ParsedName {
	p := ParsedName{
		MediaType:  MediaAnime,
		Extension:  filepath.Ext(filename),
		Confidence: 0.8,
	}
	if strings.Contains(filename, "OVA") || strings.Contains(filename, "Special") {
		p.MediaType = MediaAnimeSpecial
	}

	if m := animeGroup.FindStringSubmatch(filename); m != nil {
		p.Group = m[1]
	}
	if m := animeQuality.FindStringSubmatch(filename); m != nil {
		p.Quality = m[1]
	}

	switch {
	case animeStandard.MatchString(filename):
		m := animeStandard.FindStringSubmatch(filename)
		p.Group = m[1]
		p.Title = strings.TrimSpace(m[2])
		p.Episodes = []int{toInt(m[3])}
		if m[4] != "" {
			p.Version = toInt(m[4][1:])
		}
		p.Confidence = 0.9

	case animeSpecial.MatchString(filename):
		m := animeSpecial.FindStringSubmatch(filename)
		p.MediaType = MediaAnimeSpecial
		p.Group = m[1]
		p.Title = strings.TrimSpace(m[2])
		p.SpecialType = m[3]
		p.SpecialNumber = 1
		if m[4] != "" {
			p.SpecialNumber = toInt(m[4])
		}
		p.Confidence = 0.85

	case animeBasic.MatchString(filename):
		m := animeBasic.FindStringSubmatch(filename)
		p.Title = strings.TrimSpace(m[1])
		p.Episodes = []int{toInt(m[2])}
		p.Confidence = 0.6
	}

	return p
}

// ParseName detects the media type of a filename and parses it accordingly.
// Unrecognized names come back as MediaUnknown with the bare stem as title
// and a token confidence.
func ParseName(filename string) ParsedName {
	name := filepath.Base(filename)
	detected := DetectMediaType(name)

	var p ParsedName
	switch detected {
	case MediaTV, MediaTVSpecial:
		p = parseTV(name)
	case MediaMovie:
		p = parseMovie(name)
	case MediaAnime, MediaAnimeSpecial:
		p = parseAnime(name)
	default:
		ext := filepath.Ext(name)
		return ParsedName{
			MediaType:  MediaUnknown,
			Title:      strings.TrimSuffix(name, ext),
			Extension:  ext,
			Confidence: 0.2,
		}
	}

	// The detector distinguishes specials from regular entries; the per-type
	// parsers do not, so the detected type wins.
	p.MediaType = detected

	// Specials carry their own numbering. The special detector resolves
	// keyword and standalone-number variants the per-type parsers do not
	// track, so consult it when the parse left the slot empty.
	if p.MediaType.IsSpecial() && p.SpecialType == "" {
		if sp := detect.Special(name); sp != nil {
			p.SpecialType = string(sp.Type)
			if sp.Number != nil {
				p.SpecialNumber = *sp.Number
			}
		}
	}
	return p
}

// Verifier double-checks low-confidence parses, typically against a language
// model. Implementations return an improved record or an error, in which
// case the original parse is kept.
type Verifier interface {
	Verify(ctx context.Context, parsed ParsedName, filename string) (ParsedName, error)
}

// Parser applies confidence policy on top of ParseName.
type Parser struct {
	threshold float64
	verifier  Verifier
	logger    zerolog.Logger
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithStrict raises the confidence threshold so that only unambiguous
// parses keep their media type.
func WithStrict() ParserOption {
	return func(p *Parser) {
		p.threshold = strictThreshold
	}
}

// WithVerifier installs a verifier for low-confidence parses.
func WithVerifier(v Verifier) ParserOption {
	return func(p *Parser) {
		p.verifier = v
	}
}

// WithLogger sets the logger used for verification failures.
func WithLogger(logger zerolog.Logger) ParserOption {
	return func(p *Parser) {
		p.logger = logger
	}
}

// NewParser returns a Parser with the default confidence threshold.
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{
		threshold: defaultThreshold,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse parses a filename, consults the verifier for shaky results, and
// demotes anything still below the confidence threshold to MediaUnknown.
// The confidence score is preserved either way.
func (p *Parser) Parse(ctx context.Context, filename string) ParsedName {
	parsed := ParseName(filename)

	if p.verifier != nil && parsed.Confidence < verifyBelow {
		verified, err := p.verifier.Verify(ctx, parsed, filename)
		if err != nil {
			p.logger.Debug().Err(err).Str("filename", filename).Msg("Verification failed, keeping original parse")
		} else {
			parsed = verified
		}
	}

	if parsed.Confidence < p.threshold {
		p.logger.Debug().
			Str("filename", filename).
			Float64("confidence", parsed.Confidence).
			Msg("Confidence below threshold, marking unknown")
		parsed.MediaType = MediaUnknown
	}

	return parsed
}

func toInt(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func cleanTitle(s string) string {
	return strings.TrimSpace(strings.NewReplacer(".", " ", "_", " ").Replace(s))
}

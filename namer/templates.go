package namer

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/rs/zerolog"
)

// Default naming templates. Templates render relative paths, so the TV and
// anime defaults sort episodes into season folders.
const (
	defaultTVTemplate    = `{{.Title}}/Season {{pad .Season}}/{{.Title}} - S{{pad .Season}}{{episodes .Episodes}}{{titleSuffix .EpisodeTitle}}{{qualitySuffix .Quality}}{{.Extension}}`
	defaultMovieTemplate = `{{.Title}}{{yearSuffix .Year}}{{qualitySuffix .Quality}}{{.Extension}}`
	defaultAnimeTemplate = `[{{.Group}}] {{.Title}} - {{episodeNumber .}}{{qualitySuffix .Quality}}{{.Extension}}`
)

// templateFiles maps override files in the templates directory to the media
// type they replace the template for.
var templateFiles = map[string]MediaType{
	"tv_show.template":       MediaTV,
	"tv_special.template":    MediaTVSpecial,
	"movie.template":         MediaMovie,
	"anime.template":         MediaAnime,
	"anime_special.template": MediaAnimeSpecial,
	"general.template":       MediaUnknown,
}

// Engine renders parsed names through per-media-type templates. Templates
// use text/template syntax against the ParsedName record, with helpers for
// the common suffix patterns:
//
//	pad            zero-pads a number to two digits
//	episodes       formats an episode list as E02, E01-E03 or E01E03E07
//	episodeNumber  like episodes but without the E prefix, OVA2 for specials
//	titleSuffix    " - Title" when non-empty
//	qualitySuffix  " [720p]" when non-empty
//	yearSuffix     " (2020)" when non-zero
//	sanitize       strips characters that are invalid in file names
type Engine struct {
	templates map[MediaType]*template.Template
	logger    zerolog.Logger
}

// NewEngine builds an engine with the default templates, then applies any
// overrides found in templatesDir. An empty templatesDir keeps the defaults;
// a malformed override is an error.
func NewEngine(templatesDir string, logger zerolog.Logger) (*Engine, error) {
	e := &Engine{
		templates: make(map[MediaType]*template.Template),
		logger:    logger,
	}

	defaults := map[MediaType]string{
		MediaTV:           defaultTVTemplate,
		MediaTVSpecial:    defaultTVTemplate,
		MediaMovie:        defaultMovieTemplate,
		MediaAnime:        defaultAnimeTemplate,
		MediaAnimeSpecial: defaultAnimeTemplate,
		MediaUnknown:      defaultTVTemplate,
	}
	for mediaType, text := range defaults {
		if err := e.Register(mediaType, text); err != nil {
			return nil, err
		}
	}

	if templatesDir == "" {
		return e, nil
	}
	if err := e.loadOverrides(templatesDir); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Engine) loadOverrides(dir string) error {
	for fileName, mediaType := range templateFiles {
		text, err := os.ReadFile(filepath.Join(dir, fileName))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return fmt.Errorf("reading template %s: %w", fileName, err)
		}

		trimmed := strings.TrimSpace(string(text))
		if trimmed == "" {
			continue
		}
		if err := e.Register(mediaType, trimmed); err != nil {
			return fmt.Errorf("parsing template %s: %w", fileName, err)
		}
		e.logger.Debug().
			Str("file", fileName).
			Str("media_type", string(mediaType)).
			Msg("Loaded naming template override")
	}
	return nil
}

// Register replaces the template for a media type.
func (e *Engine) Register(mediaType MediaType, text string) error {
	tmpl, err := template.New(string(mediaType)).Funcs(templateFuncs).Parse(text)
	if err != nil {
		return fmt.Errorf("parsing %s template: %w", mediaType, err)
	}
	e.templates[mediaType] = tmpl
	return nil
}

// Render executes the template registered for the record's media type.
func (e *Engine) Render(p ParsedName) (string, error) {
	tmpl, ok := e.templates[p.MediaType]
	if !ok {
		tmpl = e.templates[MediaUnknown]
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, p); err != nil {
		return "", fmt.Errorf("rendering %s template: %w", p.MediaType, err)
	}
	return buf.String(), nil
}

// Name renders the record, falling back to the default format when the
// template fails. It always produces a usable name.
func (e *Engine) Name(p ParsedName) string {
	name, err := e.Render(p)
	if err != nil {
		e.logger.Warn().Err(err).Str("title", p.Title).Msg("Template failed, using default format")
		return Format(p, StyleSpaces)
	}
	return name
}

var templateFuncs = template.FuncMap{
	"pad": func(n int) string {
		return fmt.Sprintf("%02d", n)
	},
	"episodes": episodeLabel,
	"episodeNumber": func(p ParsedName) string {
		if p.MediaType.IsSpecial() && p.SpecialType != "" {
			label := strings.ToUpper(p.SpecialType)
			if p.SpecialNumber != 0 {
				label += fmt.Sprint(p.SpecialNumber)
			}
			return label
		}
		return strings.TrimLeft(episodeLabel(p.Episodes), "E")
	},
	"titleSuffix": func(s string) string {
		if s == "" {
			return ""
		}
		return " - " + s
	},
	"qualitySuffix": func(s string) string {
		if s == "" {
			return ""
		}
		return " [" + s + "]"
	},
	"yearSuffix": func(year int) string {
		if year == 0 {
			return ""
		}
		return fmt.Sprintf(" (%d)", year)
	},
	"sanitize": sanitizeName,
}

var nameSanitizer = strings.NewReplacer(
	"/", " ",
	"\\", " ",
	":", " ",
	"*", "",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// sanitizeName strips characters that are invalid in file names and
// collapses the whitespace left behind.
func sanitizeName(s string) string {
	return strings.Join(strings.Fields(nameSanitizer.Replace(s)), " ")
}

package organize

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/organarr/organarr/detect"
	"github.com/organarr/organarr/metadata"
	"github.com/organarr/organarr/namer"
	"github.com/organarr/organarr/scanner"
)

// FilterFunc decides whether an item stays in the plan. An error drops the
// item with a warning, so a broken expression never renames anything.
type FilterFunc func(Item) (bool, error)

// Planner builds rename plans from the scan, parse and naming stages.
type Planner struct {
	scanner  *scanner.Scanner
	parser   *namer.Parser
	engine   *namer.Engine
	metadata *metadata.Manager
	filter   FilterFunc
	logger   zerolog.Logger
}

// NewPlanner creates a Planner over the given library scanner.
func NewPlanner(sc *scanner.Scanner, parser *namer.Parser, engine *namer.Engine, logger zerolog.Logger) *Planner {
	return &Planner{
		scanner: sc,
		parser:  parser,
		engine:  engine,
		logger:  logger,
	}
}

// SetMetadataManager enables metadata confirmation: matched items get the
// canonical title and, for single episodes, the episode title.
func (p *Planner) SetMetadataManager(m *metadata.Manager) {
	p.metadata = m
}

// SetFilter restricts the plan to items the filter accepts.
func (p *Planner) SetFilter(fn FilterFunc) {
	p.filter = fn
}

// Plan scans the library and builds one Item per media file. Files the
// parser cannot classify keep their current path, so they show up in the
// plan but never move.
func (p *Planner) Plan(ctx context.Context) ([]Item, error) {
	files, err := p.scanner.Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", p.scanner.Root(), err)
	}

	items := make([]Item, 0, len(files))
	for _, f := range files {
		item := Item{
			File:   f,
			Parsed: p.parser.Parse(ctx, f.Name),
			Traits: detect.Classify(f.Name),
		}

		if p.metadata != nil && item.Parsed.MediaType != namer.MediaUnknown {
			p.confirm(ctx, &item)
		}

		if item.Parsed.MediaType == namer.MediaUnknown {
			item.ProposedName = f.Name
			item.TargetPath = f.Path
		} else {
			item.ProposedName = p.engine.Name(item.Parsed)
			item.TargetPath = filepath.Join(p.scanner.Root(), filepath.FromSlash(item.ProposedName))
		}

		if p.filter != nil {
			keep, err := p.filter(item)
			if err != nil {
				p.logger.Warn().Err(err).Str("file", f.Name).Msg("Filter failed, dropping item")
				continue
			}
			if !keep {
				continue
			}
		}

		items = append(items, item)
	}

	p.logger.Info().
		Int("files", len(files)).
		Int("planned", len(items)).
		Msg("Plan complete")

	return items, nil
}

// confirm looks the parse up against the metadata sources and folds the
// canonical title, year and episode title into it. Lookup failures keep
// the parsed values; a wrong rename is worse than a plain one.
func (p *Planner) confirm(ctx context.Context, item *Item) {
	match, err := p.metadata.Match(ctx, item.File.Name, item.Parsed.MediaType)
	if err != nil {
		p.logger.Warn().Err(err).Str("file", item.File.Name).Msg("Metadata lookup failed")
		return
	}
	if !match.Matched {
		p.logger.Debug().
			Str("file", item.File.Name).
			Float64("confidence", match.Confidence).
			Msg("No metadata match above threshold")
		return
	}

	item.MatchRef = match.Ref()
	item.MatchConfidence = match.Confidence
	item.Parsed.Title = match.Title
	if item.Parsed.Year == 0 && match.Year != 0 {
		item.Parsed.Year = match.Year
	}

	if item.MatchRef == "" {
		return
	}
	if item.Parsed.EpisodeTitle != "" || item.Parsed.Season == 0 || len(item.Parsed.Episodes) != 1 {
		return
	}

	title, err := p.metadata.EpisodeTitle(ctx, item.MatchRef, item.Parsed.Season, item.Parsed.Episodes[0])
	if err != nil {
		p.logger.Debug().Err(err).Str("ref", item.MatchRef).Msg("Episode title lookup failed")
		return
	}
	item.Parsed.EpisodeTitle = title
}

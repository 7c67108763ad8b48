// Package organize drives the rename pipeline: scan a library, parse and
// classify each file, propose a template-rendered name, then apply the
// renames through the journal so every one of them can be rolled back.
package organize

import (
	"github.com/organarr/organarr/detect"
	"github.com/organarr/organarr/namer"
	"github.com/organarr/organarr/scanner"
)

// Item is one media file moving through the pipeline.
type Item struct {
	File   scanner.File
	Parsed namer.ParsedName
	Traits detect.EpisodeType

	// ProposedName is the template-rendered path relative to the library
	// root, using forward slashes.
	ProposedName string
	// TargetPath is ProposedName resolved against the library root. Equal
	// to File.Path when the file is already named correctly.
	TargetPath string

	// MatchRef identifies the metadata record that confirmed the parse, as
	// "source-id". Empty when no lookup ran or nothing matched.
	MatchRef string
	// MatchConfidence is the score of the confirming match.
	MatchConfidence float64

	// Checksum is the hex SHA-256 of the file contents, captured just
	// before the rename so rollbacks can verify the file is unchanged.
	Checksum string
}

// NeedsRename reports whether applying the plan would move the file.
func (i Item) NeedsRename() bool {
	return i.TargetPath != "" && i.TargetPath != i.File.Path
}

package organize

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/organarr/organarr/hardlink"
	"github.com/organarr/organarr/journal"
)

// checksumWorkers bounds how many files are hashed at once.
const checksumWorkers = 4

// ApplyOptions contains options for executing a rename plan.
type ApplyOptions struct {
	DryRun     bool
	SkipLinked bool // leave files with extra hard links alone
}

// Failure pairs an item with the error that stopped it.
type Failure struct {
	Item Item
	Err  error
}

// ApplyResult reports what Apply did.
type ApplyResult struct {
	Renamed []Item
	Skipped []Item
	Failed  []Failure
}

// Operations executes rename plans against the journal.
type Operations struct {
	journal   *journal.Store
	logger    zerolog.Logger
	formatter PlanFormatter
}

// NewOperations creates an Operations instance backed by the given journal.
func NewOperations(store *journal.Store, logger zerolog.Logger) *Operations {
	return &Operations{
		journal:   store,
		logger:    logger,
		formatter: NewConsoleFormatter(),
	}
}

// Apply executes the plan. Every rename is journaled before the file moves
// and marked completed after, so a crash leaves at most one pending row.
// Items that fail do not stop the rest of the plan.
func (o *Operations) Apply(ctx context.Context, items []Item, opts ApplyOptions) (*ApplyResult, error) {
	result := &ApplyResult{}

	var pending []Item
	for _, item := range items {
		if !item.NeedsRename() {
			result.Skipped = append(result.Skipped, item)
			continue
		}
		pending = append(pending, item)
	}

	if len(pending) == 0 {
		o.logger.Info().Msg("Nothing to rename")
		return result, nil
	}

	if opts.DryRun {
		o.logger.Info().Msg("DRY RUN MODE - No changes will be made")
		fmt.Print(o.formatter.FormatPlan(pending))
		return result, nil
	}

	pending, failed, err := o.checksumAll(ctx, pending)
	if err != nil {
		return result, err
	}
	result.Failed = append(result.Failed, failed...)

	for i := range pending {
		item := &pending[i]

		linked, err := hardlink.IsLinked(item.File.Path)
		if err != nil {
			o.logger.Warn().Err(err).Str("path", item.File.Path).Msg("Hardlink check failed")
		} else if linked {
			if opts.SkipLinked {
				o.logger.Warn().Str("path", item.File.Path).Msg("Skipping hard-linked file")
				result.Skipped = append(result.Skipped, *item)
				continue
			}
			o.logger.Warn().Str("path", item.File.Path).Msg("File has other hard links, renaming anyway")
		}

		if err := o.rename(ctx, item); err != nil {
			o.logger.Error().Err(err).Str("path", item.File.Path).Msg("Rename failed")
			result.Failed = append(result.Failed, Failure{Item: *item, Err: err})
			continue
		}
		result.Renamed = append(result.Renamed, *item)
	}

	o.logger.Info().
		Int("renamed", len(result.Renamed)).
		Int("skipped", len(result.Skipped)).
		Int("failed", len(result.Failed)).
		Msg("Apply complete")

	if len(result.Failed) > 0 {
		return result, fmt.Errorf("failed to rename %d files", len(result.Failed))
	}
	return result, nil
}

// checksumAll hashes the pending files concurrently. Items whose hash fails
// come back as failures; the rest keep their plan order. The returned error
// is only ever a cancellation.
func (o *Operations) checksumAll(ctx context.Context, items []Item) ([]Item, []Failure, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(checksumWorkers)

	var mu sync.Mutex
	var failed []Failure
	hashed := make([]bool, len(items))

	for i := range items {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			sum, err := fileChecksum(items[i].File.Path)
			if err != nil {
				o.logger.Warn().Err(err).Str("path", items[i].File.Path).Msg("Checksum failed")
				mu.Lock()
				failed = append(failed, Failure{Item: items[i], Err: err})
				mu.Unlock()
				return nil
			}

			items[i].Checksum = sum
			hashed[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	kept := items[:0]
	for i := range items {
		if hashed[i] {
			kept = append(kept, items[i])
		}
	}
	return kept, failed, nil
}

// rename journals, moves and completes one item.
func (o *Operations) rename(ctx context.Context, item *Item) error {
	if _, err := os.Lstat(item.TargetPath); err == nil {
		return fmt.Errorf("target already exists: %s", item.TargetPath)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("checking target %s: %w", item.TargetPath, err)
	}

	id, err := o.journal.Record(ctx, journal.Operation{
		OriginalPath: item.File.Path,
		NewPath:      item.TargetPath,
		Checksum:     item.Checksum,
	})
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(item.TargetPath), 0o755); err != nil {
		return fmt.Errorf("creating target directory: %w", err)
	}
	if err := os.Rename(item.File.Path, item.TargetPath); err != nil {
		return fmt.Errorf("renaming %s: %w", item.File.Path, err)
	}

	if err := o.journal.MarkCompleted(ctx, id); err != nil {
		return err
	}

	o.logger.Info().
		Int64("operation", id).
		Str("from", item.File.Path).
		Str("to", item.TargetPath).
		Msg("Renamed")

	return nil
}

// fileChecksum returns the hex SHA-256 of the file contents.
func fileChecksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

package organize

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/organarr/organarr/journal"
)

// ErrChecksumMismatch is returned when the file at the journaled location no
// longer matches the content that was renamed.
var ErrChecksumMismatch = errors.New("file content changed since rename")

// RollbackOptions contains options for undoing a rename.
type RollbackOptions struct {
	// SkipVerify moves the file back even when its checksum no longer
	// matches the journal.
	SkipVerify bool
}

// Rollback undoes a completed rename and returns the journal entry it
// undid. With id zero it targets the most recent completed operation. The
// file must still match the checksum taken at rename time unless
// opts.SkipVerify is set.
func (o *Operations) Rollback(ctx context.Context, id int64, opts RollbackOptions) (journal.Operation, error) {
	var op journal.Operation
	var err error
	if id == 0 {
		op, err = o.journal.LastCompleted(ctx)
	} else {
		op, err = o.journal.Get(ctx, id)
	}
	if err != nil {
		return journal.Operation{}, err
	}

	if op.Status != journal.StatusCompleted {
		return op, fmt.Errorf("operation %d is %s, only completed operations roll back", op.ID, op.Status)
	}

	if op.Checksum != "" && !opts.SkipVerify {
		sum, err := fileChecksum(op.NewPath)
		if err != nil {
			return op, fmt.Errorf("verifying %s: %w", op.NewPath, err)
		}
		if sum != op.Checksum {
			return op, fmt.Errorf("%s: %w", op.NewPath, ErrChecksumMismatch)
		}
	}

	if _, err := os.Lstat(op.OriginalPath); err == nil {
		return op, fmt.Errorf("original path already exists: %s", op.OriginalPath)
	} else if !os.IsNotExist(err) {
		return op, fmt.Errorf("checking %s: %w", op.OriginalPath, err)
	}

	if err := os.MkdirAll(filepath.Dir(op.OriginalPath), 0o755); err != nil {
		return op, fmt.Errorf("creating original directory: %w", err)
	}
	if err := os.Rename(op.NewPath, op.OriginalPath); err != nil {
		return op, fmt.Errorf("moving %s back: %w", op.NewPath, err)
	}

	if err := o.journal.MarkRolledBack(ctx, op.ID); err != nil {
		return op, err
	}

	o.logger.Info().
		Int64("operation", op.ID).
		Str("restored", op.OriginalPath).
		Msg("Rolled back")

	op.Status = journal.StatusRolledBack
	return op, nil
}

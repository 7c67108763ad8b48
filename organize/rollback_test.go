package organize

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/organarr/organarr/journal"
)

// applyOne renames a single freshly written file and returns the item.
func applyOne(t *testing.T, ops *Operations, root, name, proposed string) Item {
	t.Helper()

	item := testItem(root, name, proposed)
	require.NoError(t, os.WriteFile(item.File.Path, []byte("episode data"), 0o644))

	result, err := ops.Apply(context.Background(), []Item{item}, ApplyOptions{})
	require.NoError(t, err)
	require.Len(t, result.Renamed, 1)
	return result.Renamed[0]
}

func TestRollbackLastCompleted(t *testing.T) {
	root := t.TempDir()
	ops := newTestOperations(t)
	item := applyOne(t, ops, root, "Breaking.Bad.S01E01.mkv", "Breaking Bad/Season 01/Breaking Bad - S01E01.mkv")

	op, err := ops.Rollback(context.Background(), 0, RollbackOptions{})
	require.NoError(t, err)
	assert.Equal(t, journal.StatusRolledBack, op.Status)
	assert.Equal(t, item.File.Path, op.OriginalPath)

	assert.FileExists(t, item.File.Path)
	assert.NoFileExists(t, item.TargetPath)

	stored, err := ops.journal.Get(context.Background(), op.ID)
	require.NoError(t, err)
	assert.Equal(t, journal.StatusRolledBack, stored.Status)

	_, err = ops.journal.LastCompleted(context.Background())
	assert.ErrorIs(t, err, journal.ErrNotFound)
}

func TestRollbackByID(t *testing.T) {
	root := t.TempDir()
	ops := newTestOperations(t)
	first := applyOne(t, ops, root, "Breaking.Bad.S01E01.mkv", "Breaking Bad/Season 01/Breaking Bad - S01E01.mkv")
	second := applyOne(t, ops, root, "Breaking.Bad.S01E02.mkv", "Breaking Bad/Season 01/Breaking Bad - S01E02.mkv")

	recent, err := ops.journal.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	firstID := recent[1].ID // Recent is newest first

	op, err := ops.Rollback(context.Background(), firstID, RollbackOptions{})
	require.NoError(t, err)
	assert.Equal(t, firstID, op.ID)

	// Only the first rename was undone.
	assert.FileExists(t, first.File.Path)
	assert.NoFileExists(t, first.TargetPath)
	assert.FileExists(t, second.TargetPath)
}

func TestRollbackVerifiesChecksum(t *testing.T) {
	root := t.TempDir()
	ops := newTestOperations(t)
	item := applyOne(t, ops, root, "Breaking.Bad.S01E01.mkv", "Breaking Bad/Season 01/Breaking Bad - S01E01.mkv")

	// The file changed after the rename.
	require.NoError(t, os.WriteFile(item.TargetPath, []byte("tampered"), 0o644))

	_, err := ops.Rollback(context.Background(), 0, RollbackOptions{})
	assert.ErrorIs(t, err, ErrChecksumMismatch)
	assert.FileExists(t, item.TargetPath)

	// SkipVerify overrides the check.
	op, err := ops.Rollback(context.Background(), 0, RollbackOptions{SkipVerify: true})
	require.NoError(t, err)
	assert.Equal(t, journal.StatusRolledBack, op.Status)
	assert.FileExists(t, item.File.Path)
}

func TestRollbackRefusesOccupiedOriginal(t *testing.T) {
	root := t.TempDir()
	ops := newTestOperations(t)
	item := applyOne(t, ops, root, "Breaking.Bad.S01E01.mkv", "Breaking Bad/Season 01/Breaking Bad - S01E01.mkv")

	// Something new appeared at the original path.
	require.NoError(t, os.WriteFile(item.File.Path, []byte("new file"), 0o644))

	_, err := ops.Rollback(context.Background(), 0, RollbackOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
	assert.FileExists(t, item.TargetPath)

	// The journal entry stays completed.
	op, err := ops.journal.LastCompleted(context.Background())
	require.NoError(t, err)
	assert.Equal(t, item.TargetPath, op.NewPath)
}

func TestRollbackNothingCompleted(t *testing.T) {
	ops := newTestOperations(t)

	_, err := ops.Rollback(context.Background(), 0, RollbackOptions{})
	assert.ErrorIs(t, err, journal.ErrNotFound)
}

func TestRollbackRejectsPendingOperation(t *testing.T) {
	root := t.TempDir()
	ops := newTestOperations(t)

	id, err := ops.journal.Record(context.Background(), journal.Operation{
		OriginalPath: root + "/a.mkv",
		NewPath:      root + "/b.mkv",
	})
	require.NoError(t, err)

	_, err = ops.Rollback(context.Background(), id, RollbackOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only completed operations")
}

func TestRollbackMissingFile(t *testing.T) {
	root := t.TempDir()
	ops := newTestOperations(t)
	item := applyOne(t, ops, root, "Breaking.Bad.S01E01.mkv", "Breaking Bad/Season 01/Breaking Bad - S01E01.mkv")

	require.NoError(t, os.Remove(item.TargetPath))

	_, err := ops.Rollback(context.Background(), 0, RollbackOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "verifying")
}

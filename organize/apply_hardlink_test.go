//go:build !windows

package organize

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplySkipsHardLinkedFiles(t *testing.T) {
	root := t.TempDir()
	item := testItem(root, "Breaking.Bad.S01E01.mkv", "Breaking Bad/Season 01/Breaking Bad - S01E01.mkv")
	require.NoError(t, os.WriteFile(item.File.Path, []byte("episode data"), 0o644))
	require.NoError(t, os.Link(item.File.Path, filepath.Join(root, "seeded.mkv")))

	ops := newTestOperations(t)
	result, err := ops.Apply(context.Background(), []Item{item}, ApplyOptions{SkipLinked: true})
	require.NoError(t, err)
	assert.Empty(t, result.Renamed)
	require.Len(t, result.Skipped, 1)
	assert.FileExists(t, item.File.Path)

	// Without SkipLinked the rename goes through with a warning.
	result, err = ops.Apply(context.Background(), []Item{item}, ApplyOptions{})
	require.NoError(t, err)
	require.Len(t, result.Renamed, 1)
	assert.FileExists(t, item.TargetPath)
}

package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "journal.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.Record(ctx, Operation{
		OriginalPath: "/library/show.s01e02.mkv",
		NewPath:      "/library/Show/Season 01/Show - S01E02.mkv",
		Checksum:     "abc123",
	})
	require.NoError(t, err)
	require.Positive(t, id)

	op, err := store.Get(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, "/library/show.s01e02.mkv", op.OriginalPath)
	assert.Equal(t, "/library/Show/Season 01/Show - S01E02.mkv", op.NewPath)
	assert.Equal(t, "rename", op.Type)
	assert.Equal(t, "abc123", op.Checksum)
	assert.Equal(t, StatusPending, op.Status)
	assert.WithinDuration(t, time.Now().UTC(), op.CreatedAt, time.Minute)
	assert.Nil(t, op.CompletedAt)
	assert.Nil(t, op.RolledBackAt)
}

func TestRecordRequiresPaths(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Record(context.Background(), Operation{OriginalPath: "/a"})
	assert.Error(t, err)
}

func TestGetMissing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMarkCompleted(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.Record(ctx, Operation{OriginalPath: "/a", NewPath: "/b"})
	require.NoError(t, err)

	require.NoError(t, store.MarkCompleted(ctx, id))

	op, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, op.Status)
	require.NotNil(t, op.CompletedAt)
	assert.WithinDuration(t, time.Now().UTC(), *op.CompletedAt, time.Minute)

	// Only pending operations can be completed.
	err = store.MarkCompleted(ctx, id)
	assert.ErrorContains(t, err, "not pending")

	assert.ErrorIs(t, store.MarkCompleted(ctx, 999), ErrNotFound)
}

func TestMarkRolledBackRequiresCompleted(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.Record(ctx, Operation{OriginalPath: "/a", NewPath: "/b"})
	require.NoError(t, err)

	err = store.MarkRolledBack(ctx, id)
	assert.ErrorContains(t, err, "not completed")

	require.NoError(t, store.MarkCompleted(ctx, id))
	require.NoError(t, store.MarkRolledBack(ctx, id))

	op, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, StatusRolledBack, op.Status)
	require.NotNil(t, op.RolledBackAt)
}

func TestPending(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.Record(ctx, Operation{OriginalPath: "/a", NewPath: "/1"})
	require.NoError(t, err)
	second, err := store.Record(ctx, Operation{OriginalPath: "/b", NewPath: "/2"})
	require.NoError(t, err)
	third, err := store.Record(ctx, Operation{OriginalPath: "/c", NewPath: "/3"})
	require.NoError(t, err)

	require.NoError(t, store.MarkCompleted(ctx, second))

	pending, err := store.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, first, pending[0].ID)
	assert.Equal(t, third, pending[1].ID)
}

func TestLastCompleted(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.LastCompleted(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	first, err := store.Record(ctx, Operation{OriginalPath: "/a", NewPath: "/1"})
	require.NoError(t, err)
	second, err := store.Record(ctx, Operation{OriginalPath: "/b", NewPath: "/2"})
	require.NoError(t, err)

	require.NoError(t, store.MarkCompleted(ctx, first))
	require.NoError(t, store.MarkCompleted(ctx, second))

	op, err := store.LastCompleted(ctx)
	require.NoError(t, err)
	assert.Equal(t, second, op.ID)
}

func TestRecent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	var ids []int64
	for _, path := range []string{"/a", "/b", "/c"} {
		id, err := store.Record(ctx, Operation{OriginalPath: path, NewPath: path + ".new"})
		require.NoError(t, err)
		ids = append(ids, id)
	}

	recent, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, ids[2], recent[0].ID)
	assert.Equal(t, ids[1], recent[1].ID)
}

func TestReopenPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "journal.db")
	ctx := context.Background()

	store, err := Open(path, zerolog.Nop())
	require.NoError(t, err)

	id, err := store.Record(ctx, Operation{OriginalPath: "/a", NewPath: "/b", Checksum: "sum"})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := Open(path, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	op, err := reopened.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "sum", op.Checksum)
	assert.Equal(t, StatusPending, op.Status)
}

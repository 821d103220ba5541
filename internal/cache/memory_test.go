package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreLastWriterWins(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Put(ctx, Entry{Key: "k", Payload: []byte(`1`)}))
	require.NoError(t, store.Put(ctx, Entry{Key: "k", Payload: []byte(`2`)}))

	e, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `2`, string(e.Payload))
	assert.False(t, e.StoredAt.IsZero())
}

func TestMemoryStoreRejectsBlankKeys(t *testing.T) {
	store := NewMemoryStore()
	assert.ErrorIs(t, store.Put(context.Background(), Entry{Key: "  "}), ErrEmptyKey)
	_, _, err := store.Get(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyKey)
}

func TestMemoryStoreDeleteAndClear(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Put(ctx, Entry{Key: "a", Payload: []byte(`1`)}))
	require.NoError(t, store.Put(ctx, Entry{Key: "b", Payload: []byte(`1`)}))

	require.NoError(t, store.Delete(ctx, "a"))
	_, ok, _ := store.Get(ctx, "a")
	assert.False(t, ok)
	assert.Equal(t, 1, store.Len())

	require.NoError(t, store.Clear(ctx))
	assert.Equal(t, 0, store.Len())
}

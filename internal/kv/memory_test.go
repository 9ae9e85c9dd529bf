package kv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryStoreCompareAndSwap(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	version, err := store.CompareAndSwap(ctx, "notice:1", 0, []byte(`{"v":1}`))
	require.NoError(t, err)
	require.Equal(t, int64(1), version)

	_, err = store.CompareAndSwap(ctx, "notice:1", 0, []byte(`{"v":2}`))
	require.ErrorIs(t, err, ErrVersionConflict)

	version, err = store.CompareAndSwap(ctx, "notice:1", 1, []byte(`{"v":2}`))
	require.NoError(t, err)
	require.Equal(t, int64(2), version)

	rec, err := store.Get(ctx, "notice:1")
	require.NoError(t, err)
	require.Equal(t, `{"v":2}`, string(rec.Value))
	require.Equal(t, int64(2), rec.Version)
}

func TestMemoryStoreGetMissing(t *testing.T) {
	_, err := NewMemoryStore().Get(context.Background(), "nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreScanPrefix(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	for _, key := range []string{"notice:b", "profile:a", "notice:a", "notices"} {
		_, err := store.Put(ctx, key, []byte("{}"))
		require.NoError(t, err)
	}

	items, err := store.ScanPrefix(ctx, "notice:")
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "notice:a", items[0].Key)
	require.Equal(t, "notice:b", items[1].Key)
}

func TestMemoryStoreDoesNotAliasValues(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	value := []byte("abc")
	_, err := store.Put(ctx, "k", value)
	require.NoError(t, err)
	value[0] = 'x'

	rec, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "abc", string(rec.Value))
	rec.Value[1] = 'y'

	again, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "abc", string(again.Value))
}

func TestMemoryStoreHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMemoryStore().Put(ctx, "k", []byte("v"))
	require.ErrorIs(t, err, context.Canceled)
}

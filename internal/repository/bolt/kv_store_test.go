package bolt

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"sitterboard/internal/kv"
)

func openTestStore(t *testing.T) *KVStore {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestKVStoreVersions(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	version, err := store.CompareAndSwap(ctx, "notice:1", 0, []byte(`{"a":1}`))
	require.NoError(t, err)
	require.Equal(t, int64(1), version)

	version, err = store.Put(ctx, "notice:1", []byte(`{"a":2}`))
	require.NoError(t, err)
	require.Equal(t, int64(2), version)

	_, err = store.CompareAndSwap(ctx, "notice:1", 1, []byte(`{"a":3}`))
	require.ErrorIs(t, err, kv.ErrVersionConflict)

	rec, err := store.Get(ctx, "notice:1")
	require.NoError(t, err)
	require.Equal(t, `{"a":2}`, string(rec.Value))
	require.Equal(t, int64(2), rec.Version)
}

func TestKVStoreGetMissing(t *testing.T) {
	_, err := openTestStore(t).Get(context.Background(), "missing")
	require.ErrorIs(t, err, kv.ErrNotFound)
}

func TestKVStoreScanPrefix(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	for _, key := range []string{"notice:2", "profile:1", "notice:1", "noticeboard"} {
		_, err := store.Put(ctx, key, []byte(`{}`))
		require.NoError(t, err)
	}

	items, err := store.ScanPrefix(ctx, "notice:")
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "notice:1", items[0].Key)
	require.Equal(t, "notice:2", items[1].Key)
	require.Equal(t, int64(1), items[0].Version)
}

func TestKVStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kv.db")
	store, err := Open(path)
	require.NoError(t, err)
	_, err = store.Put(ctx, "profile:1", []byte(`{"name":"Ana"}`))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()
	rec, err := reopened.Get(ctx, "profile:1")
	require.NoError(t, err)
	require.Equal(t, `{"name":"Ana"}`, string(rec.Value))
}

package kvstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"sitterboard/internal/common"
	"sitterboard/internal/domain/notice"
	"sitterboard/internal/kv"
)

// racingStore lets another writer slip in right before the next N swaps.
type racingStore struct {
	*kv.MemoryStore
	mu       sync.Mutex
	races    int
	onRace   func(ctx context.Context, key string)
	casCalls int
}

func (s *racingStore) CompareAndSwap(ctx context.Context, key string, expected int64, value []byte) (int64, error) {
	s.mu.Lock()
	s.casCalls++
	race := s.races > 0
	if race {
		s.races--
	}
	s.mu.Unlock()
	if race && s.onRace != nil {
		s.onRace(ctx, key)
	}
	return s.MemoryStore.CompareAndSwap(ctx, key, expected, value)
}

type failingStore struct {
	*kv.MemoryStore
}

func (failingStore) CompareAndSwap(context.Context, string, int64, []byte) (int64, error) {
	return 0, errors.New("disk full")
}

func seedNotice(t *testing.T, repo *NoticeRepository) notice.Notice {
	t.Helper()
	n := notice.New(common.NewUUID(), common.NewUUID(), "Pat", notice.Fields{Title: "Evening", PayRate: 18}, time.Now().UTC())
	_, err := repo.Create(context.Background(), n)
	require.NoError(t, err)
	return n
}

func TestNoticeRepositoryCreateTwice(t *testing.T) {
	repo := NewNoticeRepository(kv.NewMemoryStore(), 0, zerolog.Nop())
	n := seedNotice(t, repo)

	_, err := repo.Create(context.Background(), n)
	require.True(t, common.Is(err, common.CodeConflict), "got %v", err)
}

func TestNoticeRepositoryGetMissing(t *testing.T) {
	repo := NewNoticeRepository(kv.NewMemoryStore(), 0, zerolog.Nop())
	_, err := repo.GetByID(context.Background(), common.NewUUID())
	require.True(t, common.Is(err, common.CodeNotFound), "got %v", err)

	_, err = repo.Update(context.Background(), common.NewUUID(), func(*notice.Notice) error { return nil })
	require.True(t, common.Is(err, common.CodeNotFound), "got %v", err)
}

func TestNoticeRepositoryUpdateRetriesOnConflict(t *testing.T) {
	ctx := context.Background()
	store := &racingStore{MemoryStore: kv.NewMemoryStore()}
	repo := NewNoticeRepository(store, 3, zerolog.Nop())
	n := seedNotice(t, repo)
	store.races = 1

	store.onRace = func(ctx context.Context, key string) {
		rec, err := store.Get(ctx, key)
		require.NoError(t, err)
		var other notice.Notice
		require.NoError(t, decode(rec.Value, &other))
		other.Title = "changed elsewhere"
		value, err := encode(other)
		require.NoError(t, err)
		_, err = store.MemoryStore.CompareAndSwap(ctx, key, rec.Version, value)
		require.NoError(t, err)
	}

	var seenTitles []string
	updated, err := repo.Update(ctx, n.ID, func(current *notice.Notice) error {
		seenTitles = append(seenTitles, current.Title)
		current.Location = "Downtown"
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"Evening", "changed elsewhere"}, seenTitles)
	require.Equal(t, "changed elsewhere", updated.Title)
	require.Equal(t, "Downtown", updated.Location)
}

func TestNoticeRepositoryUpdateGivesUpAfterRetries(t *testing.T) {
	store := &racingStore{MemoryStore: kv.NewMemoryStore()}
	repo := NewNoticeRepository(store, 2, zerolog.Nop())
	n := seedNotice(t, repo)
	store.races = 100
	store.casCalls = 0
	store.onRace = func(ctx context.Context, key string) {
		rec, _ := store.Get(ctx, key)
		_, _ = store.MemoryStore.Put(ctx, key, rec.Value)
	}

	_, err := repo.Update(context.Background(), n.ID, func(current *notice.Notice) error {
		current.Location = "Suburbs"
		return nil
	})
	require.True(t, common.Is(err, common.CodeConflict), "got %v", err)
	require.Equal(t, 3, store.casCalls)
}

func TestNoticeRepositoryUpdateSkipsUnchangedWrite(t *testing.T) {
	ctx := context.Background()
	store := &racingStore{MemoryStore: kv.NewMemoryStore()}
	repo := NewNoticeRepository(store, 0, zerolog.Nop())
	n := seedNotice(t, repo)
	before, err := store.Get(ctx, notice.Key(n.ID))
	require.NoError(t, err)

	_, err = repo.Update(ctx, n.ID, func(*notice.Notice) error { return nil })
	require.NoError(t, err)

	after, err := store.Get(ctx, notice.Key(n.ID))
	require.NoError(t, err)
	require.Equal(t, before.Version, after.Version)
	require.Equal(t, 1, store.casCalls)
}

func TestNoticeRepositoryUpdateErrorWritesNothing(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	repo := NewNoticeRepository(store, 0, zerolog.Nop())
	n := seedNotice(t, repo)

	boom := common.NewError(common.CodeForbidden, "nope", nil)
	_, err := repo.Update(ctx, n.ID, func(current *notice.Notice) error {
		current.Title = "mutated"
		return boom
	})
	require.ErrorIs(t, err, boom)

	stored, err := repo.GetByID(ctx, n.ID)
	require.NoError(t, err)
	require.Equal(t, "Evening", stored.Title)
}

func TestNoticeRepositoryStorageFailure(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemoryStore()
	seeded := NewNoticeRepository(mem, 0, zerolog.Nop())
	n := seedNotice(t, seeded)

	repo := NewNoticeRepository(failingStore{mem}, 0, zerolog.Nop())
	_, err := repo.Update(ctx, n.ID, func(current *notice.Notice) error {
		current.Title = "lost"
		return nil
	})
	require.True(t, common.Is(err, common.CodeStorage), "got %v", err)

	stored, err := seeded.GetByID(ctx, n.ID)
	require.NoError(t, err)
	require.Equal(t, "Evening", stored.Title)
}

func TestKeyLocksReleaseEntries(t *testing.T) {
	locks := newKeyLocks()
	unlock := locks.Lock("a")
	require.Equal(t, 1, locks.size())
	unlock()
	require.Equal(t, 0, locks.size())
}

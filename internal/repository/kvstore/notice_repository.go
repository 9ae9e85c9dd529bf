package kvstore

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"sitterboard/internal/common"
	"sitterboard/internal/domain/notice"
	"sitterboard/internal/kv"
)

const DefaultMaxRetries = 5

// NoticeRepository stores each notice, applications included, as one record.
// Update serializes writers of the same notice inside this process and uses
// compare-and-swap against writers in other processes.
type NoticeRepository struct {
	store      kv.Store
	locks      *keyLocks
	maxRetries uint64
	logger     zerolog.Logger
}

func NewNoticeRepository(store kv.Store, maxRetries int, logger zerolog.Logger) *NoticeRepository {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	return &NoticeRepository{
		store:      store,
		locks:      newKeyLocks(),
		maxRetries: uint64(maxRetries),
		logger:     logger.With().Str("component", "notice_repository").Logger(),
	}
}

func (r *NoticeRepository) Create(ctx context.Context, n notice.Notice) (*notice.Notice, error) {
	value, err := encode(n)
	if err != nil {
		return nil, common.NewStorageError("failed to encode notice", err)
	}
	if _, err := r.store.CompareAndSwap(ctx, notice.Key(n.ID), 0, value); err != nil {
		if errors.Is(err, kv.ErrVersionConflict) {
			return nil, common.NewError(common.CodeConflict, "notice already exists", err)
		}
		return nil, common.NewStorageError("failed to create notice", err)
	}
	return &n, nil
}

func (r *NoticeRepository) GetByID(ctx context.Context, id common.UUID) (*notice.Notice, error) {
	rec, err := r.store.Get(ctx, notice.Key(id))
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, common.NewError(common.CodeNotFound, "notice not found", err)
		}
		return nil, common.NewStorageError("failed to load notice", err)
	}
	var n notice.Notice
	if err := decode(rec.Value, &n); err != nil {
		return nil, common.NewStorageError("failed to decode notice", err)
	}
	return &n, nil
}

func (r *NoticeRepository) List(ctx context.Context) ([]notice.Notice, error) {
	records, err := r.store.ScanPrefix(ctx, notice.KeyPrefix)
	if err != nil {
		return nil, common.NewStorageError("failed to list notices", err)
	}
	items := make([]notice.Notice, 0, len(records))
	for _, rec := range records {
		var n notice.Notice
		if err := decode(rec.Value, &n); err != nil {
			return nil, common.NewStorageError("failed to decode notice "+rec.Key, err)
		}
		items = append(items, n)
	}
	return items, nil
}

// Update runs fn against the latest stored notice and writes the result with
// compare-and-swap. On a version conflict the whole read, fn, write cycle is
// repeated. When fn leaves the notice unchanged nothing is written.
func (r *NoticeRepository) Update(ctx context.Context, id common.UUID, fn notice.UpdateFunc) (*notice.Notice, error) {
	key := notice.Key(id)
	unlock := r.locks.Lock(key)
	defer unlock()

	var result *notice.Notice
	attempt := 0
	op := func() error {
		attempt++
		rec, err := r.store.Get(ctx, key)
		if err != nil {
			if errors.Is(err, kv.ErrNotFound) {
				return backoff.Permanent(common.NewError(common.CodeNotFound, "notice not found", err))
			}
			return backoff.Permanent(common.NewStorageError("failed to load notice", err))
		}
		var n notice.Notice
		if err := decode(rec.Value, &n); err != nil {
			return backoff.Permanent(common.NewStorageError("failed to decode notice", err))
		}
		before, err := encode(n)
		if err != nil {
			return backoff.Permanent(common.NewStorageError("failed to encode notice", err))
		}
		if err := fn(&n); err != nil {
			return backoff.Permanent(err)
		}
		after, err := encode(n)
		if err != nil {
			return backoff.Permanent(common.NewStorageError("failed to encode notice", err))
		}
		if bytes.Equal(before, after) {
			result = &n
			return nil
		}
		if _, err := r.store.CompareAndSwap(ctx, key, rec.Version, after); err != nil {
			if errors.Is(err, kv.ErrVersionConflict) {
				r.logger.Debug().Str("notice_id", id.String()).Int("attempt", attempt).Msg("notice version conflict, retrying")
				return err
			}
			return backoff.Permanent(common.NewStorageError("failed to save notice", err))
		}
		result = &n
		return nil
	}

	if err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(newCASBackoff(), r.maxRetries), ctx)); err != nil {
		if errors.Is(err, kv.ErrVersionConflict) {
			return nil, common.NewError(common.CodeConflict, "notice was modified concurrently, retry the request", err)
		}
		var appErr *common.Error
		if !errors.As(err, &appErr) {
			return nil, common.NewStorageError("failed to update notice", err)
		}
		return nil, err
	}
	return result, nil
}

func newCASBackoff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 10 * time.Millisecond
	bo.MaxInterval = 200 * time.Millisecond
	bo.MaxElapsedTime = 2 * time.Second
	return bo
}

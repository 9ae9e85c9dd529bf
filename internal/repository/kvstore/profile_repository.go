package kvstore

import (
	"context"
	"errors"

	"sitterboard/internal/common"
	"sitterboard/internal/domain/user"
	"sitterboard/internal/kv"
)

const profileKeyPrefix = "profile:"

type ProfileRepository struct {
	store kv.Store
}

func NewProfileRepository(store kv.Store) *ProfileRepository {
	return &ProfileRepository{store: store}
}

func (r *ProfileRepository) GetByID(ctx context.Context, id common.UUID) (*user.Profile, error) {
	rec, err := r.store.Get(ctx, profileKeyPrefix+id.String())
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, common.NewError(common.CodeNotFound, "profile not found", err)
		}
		return nil, common.NewStorageError("failed to load profile", err)
	}
	var profile user.Profile
	if err := decode(rec.Value, &profile); err != nil {
		return nil, common.NewStorageError("failed to decode profile", err)
	}
	return &profile, nil
}

func (r *ProfileRepository) Upsert(ctx context.Context, profile user.Profile) (*user.Profile, error) {
	value, err := encode(profile)
	if err != nil {
		return nil, common.NewStorageError("failed to encode profile", err)
	}
	if _, err := r.store.Put(ctx, profileKeyPrefix+profile.ID.String(), value); err != nil {
		return nil, common.NewStorageError("failed to save profile", err)
	}
	return &profile, nil
}

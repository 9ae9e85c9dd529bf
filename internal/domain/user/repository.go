package user

import (
	"context"

	"sitterboard/internal/common"
)

type Repository interface {
	GetByID(ctx context.Context, id common.UUID) (*Profile, error)
	Upsert(ctx context.Context, profile Profile) (*Profile, error)
}

package notice

import (
	"context"

	"sitterboard/internal/common"
)

// UpdateFunc mutates a freshly loaded notice. Returning an error aborts the
// update without writing anything. It may run more than once when a
// concurrent writer wins the race, so it must not have side effects.
type UpdateFunc func(n *Notice) error

type Repository interface {
	Create(ctx context.Context, n Notice) (*Notice, error)
	GetByID(ctx context.Context, id common.UUID) (*Notice, error)
	List(ctx context.Context) ([]Notice, error)
	Update(ctx context.Context, id common.UUID, fn UpdateFunc) (*Notice, error)
}

package app

import (
	"context"
	"strings"

	"sitterboard/internal/common"
	"sitterboard/internal/domain/user"
)

// ProfileService reads and seeds identity-provider profiles. Editing belongs to
// the provider; Put exists for operators and local setups.
type ProfileService struct {
	users user.Repository
	clock Clock
}

func NewProfileService(users user.Repository) *ProfileService {
	return &ProfileService{users: users, clock: systemClock}
}

func (s *ProfileService) Get(ctx context.Context, id common.UUID) (*user.Profile, error) {
	return s.users.GetByID(ctx, id)
}

func (s *ProfileService) Put(ctx context.Context, id common.UUID, name, email, role string) (*user.Profile, error) {
	normalized, err := user.ParseRole(role)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, common.NewValidationError("invalid profile", map[string]string{"name": "name is required"})
	}
	now := s.clock()
	profile := user.Profile{
		ID:        id,
		Email:     strings.TrimSpace(email),
		Name:      name,
		Role:      normalized,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if existing, err := s.users.GetByID(ctx, id); err == nil {
		profile.CreatedAt = existing.CreatedAt
	} else if !common.Is(err, common.CodeNotFound) {
		return nil, err
	}
	return s.users.Upsert(ctx, profile)
}

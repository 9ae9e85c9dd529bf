package security

import (
	"context"

	"sitterboard/internal/common"
	"sitterboard/internal/domain/user"
)

// Identity turns a bearer credential into the request's Caller.
type Identity struct {
	tokens *JWTProvider
	users  user.Repository
}

func NewIdentity(tokens *JWTProvider, users user.Repository) *Identity {
	return &Identity{tokens: tokens, users: users}
}

// Resolve fails with an unauthorized error for a bad credential. A valid token
// whose profile is missing resolves to a Caller without a role, which every
// role-gated operation refuses.
func (i *Identity) Resolve(ctx context.Context, credential string) (user.Caller, error) {
	claims, err := i.tokens.Parse(credential)
	if err != nil {
		return user.Caller{}, common.NewError(common.CodeUnauthorized, "invalid token", err)
	}
	id, err := common.ParseUUID(claims.Subject)
	if err != nil {
		return user.Caller{}, common.NewError(common.CodeUnauthorized, "invalid user id", err)
	}
	caller := user.Caller{ID: id}
	profile, err := i.users.GetByID(ctx, id)
	if err != nil {
		if common.Is(err, common.CodeNotFound) {
			return caller, nil
		}
		return user.Caller{}, err
	}
	caller.Name = profile.Name
	caller.Role = profile.Role
	return caller, nil
}

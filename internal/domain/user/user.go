package user

import (
	"strings"
	"time"

	"sitterboard/internal/common"
)

type Role string

const (
	RoleParent  Role = "parent"
	RoleStudent Role = "student"
)

// Profile is the identity provider's view of a user. Registration and editing
// happen outside this service; only reads are needed at request time.
type Profile struct {
	ID        common.UUID `json:"id"`
	Email     string      `json:"email,omitempty"`
	Name      string      `json:"name"`
	Role      Role        `json:"userType"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt,omitempty"`
}

// Caller is the authenticated principal of one request. It is resolved once
// at the transport boundary and passed explicitly into every service call.
type Caller struct {
	ID   common.UUID
	Name string
	Role Role
}

func (c Caller) Is(role Role) bool {
	return c.Role != "" && c.Role == role
}

func ParseRole(value string) (Role, error) {
	normalized := Role(strings.ToLower(strings.TrimSpace(value)))
	switch normalized {
	case RoleParent, RoleStudent:
		return normalized, nil
	default:
		return "", common.NewValidationError("invalid role", map[string]string{"role": "role must be parent or student"})
	}
}

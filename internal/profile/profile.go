package profile

import "time"

// Role represents the authorization role of a profile.
// It is the single authorization dimension of the portal.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleCoordinator Role = "coordinator"
	RoleUser        Role = "user"
)

// ParseRole maps a raw role string to one of the known roles.
// Unknown or malformed values fall back to RoleUser so that a corrupted
// profile row can never grant elevated access.
func ParseRole(raw string) Role {
	switch Role(raw) {
	case RoleAdmin, RoleCoordinator, RoleUser:
		return Role(raw)
	default:
		return RoleUser
	}
}

// Valid returns whether the role is one of the known roles
func (role Role) Valid() bool {
	return role == RoleAdmin || role == RoleCoordinator || role == RoleUser
}

// Profile represents a user profile registered to the portal
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	GroupID   *string   `json:"group_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

package profile

import "context"

// Repository defines the profile repository API
type Repository interface {
	// Get retrieves multiple profiles, ordered by creation date (newest first)
	Get(ctx context.Context, offset, limit uint64) ([]*Profile, uint64, error)

	// GetByID retrieves a profile by its ID
	GetByID(ctx context.Context, id string) (*Profile, error)

	// GetByEmail retrieves a profile by its email address
	GetByEmail(ctx context.Context, email string) (*Profile, error)

	// Create creates a new profile
	Create(ctx context.Context, create *Create) (*Profile, error)

	// Update updates an existing profile
	Update(ctx context.Context, id string, update *Update) (*Profile, error)

	// Delete deletes a profile by its ID
	Delete(ctx context.Context, id string) error
}

// Create is used to create a new profile
type Create struct {
	ID    string
	Email string
	Name  string
	Role  Role
}

// Update is used to update an existing profile.
// Nil fields are left untouched.
type Update struct {
	Name    *string
	Role    *Role
	GroupID *string
}

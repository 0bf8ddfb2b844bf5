package group

import "context"

// Repository defines the group repository API
type Repository interface {
	// Get retrieves multiple groups, ordered by creation date (newest first)
	Get(ctx context.Context, offset, limit uint64) ([]*Group, uint64, error)

	// GetByID retrieves a group by its ID
	GetByID(ctx context.Context, id string) (*Group, error)

	// Create creates a new group
	Create(ctx context.Context, create *Create) (*Group, error)

	// Update updates an existing group
	Update(ctx context.Context, id string, update *Update) (*Group, error)

	// Delete deletes a group by its ID.
	// Profiles referencing the group keep their group_id; references are left
	// dangling rather than cascaded.
	Delete(ctx context.Context, id string) error
}

// Create is used to create a new group
type Create struct {
	Name          string
	CoordinatorID *string
	PowerBILink   *string
	FormLink      *string
}

// Update is used to update an existing group.
// Nil fields are left untouched.
type Update struct {
	Name          *string
	CoordinatorID *string
	PowerBILink   *string
	FormLink      *string
}

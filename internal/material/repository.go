package material

import "context"

// Repository defines the material repository API
type Repository interface {
	// Get retrieves multiple materials, ordered by creation date (newest first).
	// If activeOnly is set, inactive materials are filtered out.
	Get(ctx context.Context, offset, limit uint64, activeOnly bool) ([]*Material, uint64, error)

	// GetByID retrieves a material by its ID
	GetByID(ctx context.Context, id string) (*Material, error)

	// Create creates a new material
	Create(ctx context.Context, create *Create) (*Material, error)

	// Update updates an existing material
	Update(ctx context.Context, id string, update *Update) (*Material, error)

	// Delete deletes a material by its ID
	Delete(ctx context.Context, id string) error
}

// Create is used to create a new material
type Create struct {
	Title       string
	Description *string
	FileURL     *string
	FileType    *string
	Category    *string
	Active      bool
	CreatedBy   string
}

// Update is used to update an existing material.
// Nil fields are left untouched.
type Update struct {
	Title       *string
	Description *string
	FileURL     *string
	FileType    *string
	Category    *string
	Active      *bool
}

package news

import "context"

// Repository defines the news repository API
type Repository interface {
	// Get retrieves multiple news entries, ordered by creation date (newest first).
	// If activeOnly is set, inactive entries are filtered out.
	Get(ctx context.Context, offset, limit uint64, activeOnly bool) ([]*News, uint64, error)

	// GetByID retrieves a news entry by its ID
	GetByID(ctx context.Context, id string) (*News, error)

	// Create creates a new news entry
	Create(ctx context.Context, create *Create) (*News, error)

	// Update updates an existing news entry
	Update(ctx context.Context, id string, update *Update) (*News, error)

	// Delete deletes a news entry by its ID
	Delete(ctx context.Context, id string) error
}

// Create is used to create a new news entry
type Create struct {
	Title     string
	Content   string
	Category  *string
	ImageURL  *string
	Urgent    bool
	Active    bool
	CreatedBy string
}

// Update is used to update an existing news entry.
// Nil fields are left untouched.
type Update struct {
	Title    *string
	Content  *string
	Category *string
	ImageURL *string
	Urgent   *bool
	Active   *bool
}

package credential

import "context"

// Repository defines the credential repository API
type Repository interface {
	// GetByProfileID retrieves the credential of a profile
	GetByProfileID(ctx context.Context, profileID string) (*Credential, error)

	// Set creates or replaces the credential of a profile
	Set(ctx context.Context, credential *Credential) error

	// Delete deletes the credential of a profile
	Delete(ctx context.Context, profileID string) error
}

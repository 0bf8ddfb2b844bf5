package cache

import (
	"context"

	"github.com/partnerhub/portal-server/internal/hashmap"
	"github.com/partnerhub/portal-server/internal/profile"
)

// ProfileRepository implements the profile.Repository interface in order to implement caching
type ProfileRepository struct {
	repo  profile.Repository
	cache *hashmap.ExpiringMap[string, *profile.Profile]
}

var _ profile.Repository = (*ProfileRepository)(nil)

// Get retrieves multiple profiles, ordered by creation date (newest first)
func (repo *ProfileRepository) Get(ctx context.Context, offset, limit uint64) ([]*profile.Profile, uint64, error) {
	profiles, n, err := repo.repo.Get(ctx, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	for _, obj := range profiles {
		repo.cache.Set(obj.ID, obj)
	}
	return profiles, n, nil
}

// GetByID retrieves a profile by its ID
func (repo *ProfileRepository) GetByID(ctx context.Context, id string) (*profile.Profile, error) {
	cached, ok := repo.cache.Lookup(id)
	if ok {
		return cached, nil
	}
	obj, err := repo.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if obj != nil {
		repo.cache.Set(obj.ID, obj)
	}
	return obj, nil
}

// GetByEmail retrieves a profile by its email address.
// Email lookups always hit the underlying repository; the cache is keyed by ID only.
func (repo *ProfileRepository) GetByEmail(ctx context.Context, email string) (*profile.Profile, error) {
	obj, err := repo.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if obj != nil {
		repo.cache.Set(obj.ID, obj)
	}
	return obj, nil
}

// Create creates a new profile
func (repo *ProfileRepository) Create(ctx context.Context, create *profile.Create) (*profile.Profile, error) {
	obj, err := repo.repo.Create(ctx, create)
	if err != nil {
		return nil, err
	}
	repo.cache.Set(obj.ID, obj)
	return obj, nil
}

// Update updates an existing profile
func (repo *ProfileRepository) Update(ctx context.Context, id string, update *profile.Update) (*profile.Profile, error) {
	obj, err := repo.repo.Update(ctx, id, update)
	if err != nil {
		return nil, err
	}
	repo.cache.Set(obj.ID, obj)
	return obj, nil
}

// Delete deletes a profile by its ID
func (repo *ProfileRepository) Delete(ctx context.Context, id string) error {
	err := repo.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	repo.cache.Unset(id)
	return nil
}

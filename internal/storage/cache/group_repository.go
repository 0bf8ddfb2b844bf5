package cache

import (
	"context"

	"github.com/partnerhub/portal-server/internal/group"
	"github.com/partnerhub/portal-server/internal/hashmap"
)

// GroupRepository implements the group.Repository interface in order to implement caching
type GroupRepository struct {
	repo  group.Repository
	cache *hashmap.ExpiringMap[string, *group.Group]
}

var _ group.Repository = (*GroupRepository)(nil)

// Get retrieves multiple groups, ordered by creation date (newest first)
func (repo *GroupRepository) Get(ctx context.Context, offset, limit uint64) ([]*group.Group, uint64, error) {
	groups, n, err := repo.repo.Get(ctx, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	for _, obj := range groups {
		repo.cache.Set(obj.ID, obj)
	}
	return groups, n, nil
}

// GetByID retrieves a group by its ID
func (repo *GroupRepository) GetByID(ctx context.Context, id string) (*group.Group, error) {
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

// Create creates a new group
func (repo *GroupRepository) Create(ctx context.Context, create *group.Create) (*group.Group, error) {
	obj, err := repo.repo.Create(ctx, create)
	if err != nil {
		return nil, err
	}
	repo.cache.Set(obj.ID, obj)
	return obj, nil
}

// Update updates an existing group
func (repo *GroupRepository) Update(ctx context.Context, id string, update *group.Update) (*group.Group, error) {
	obj, err := repo.repo.Update(ctx, id, update)
	if err != nil {
		return nil, err
	}
	repo.cache.Set(obj.ID, obj)
	return obj, nil
}

// Delete deletes a group by its ID
func (repo *GroupRepository) Delete(ctx context.Context, id string) error {
	err := repo.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	repo.cache.Unset(id)
	return nil
}

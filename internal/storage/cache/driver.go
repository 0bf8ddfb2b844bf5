package cache

import (
	"context"
	"time"

	"github.com/partnerhub/portal-server/internal/credential"
	"github.com/partnerhub/portal-server/internal/group"
	"github.com/partnerhub/portal-server/internal/hashmap"
	"github.com/partnerhub/portal-server/internal/material"
	"github.com/partnerhub/portal-server/internal/news"
	"github.com/partnerhub/portal-server/internal/profile"
	"github.com/partnerhub/portal-server/internal/storage"
)

// Driver represents a storage driver implementation that wraps another one in order to implement in-memory caching.
// Profile and group lookups are cached; credentials, news and materials always
// hit the underlying driver as they are either security-sensitive or list-heavy.
type Driver struct {
	underlying storage.Driver
	profiles   *ProfileRepository
	groups     *GroupRepository
}

var _ storage.Driver = (*Driver)(nil)

// New returns a new caching storage driver
func New(underlying storage.Driver) *Driver {
	return &Driver{
		underlying: underlying,
	}
}

// Initialize initializes the underlying driver and the caching repositories
func (driver *Driver) Initialize(ctx context.Context) error {
	if err := driver.underlying.Initialize(ctx); err != nil {
		return err
	}

	profileCache := hashmap.NewExpiring[string, *profile.Profile](5 * time.Minute)
	profileCache.ScheduleCleanupTask(10 * time.Second)
	driver.profiles = &ProfileRepository{
		repo:  driver.underlying.Profiles(),
		cache: profileCache,
	}

	groupCache := hashmap.NewExpiring[string, *group.Group](5 * time.Minute)
	groupCache.ScheduleCleanupTask(10 * time.Second)
	driver.groups = &GroupRepository{
		repo:  driver.underlying.Groups(),
		cache: groupCache,
	}

	return nil
}

// Profiles provides the caching profile repository implementation
func (driver *Driver) Profiles() profile.Repository {
	return driver.profiles
}

// Credentials provides the credential repository implementation of the underlying driver
func (driver *Driver) Credentials() credential.Repository {
	return driver.underlying.Credentials()
}

// Groups provides the caching group repository implementation
func (driver *Driver) Groups() group.Repository {
	return driver.groups
}

// News provides the news repository implementation of the underlying driver
func (driver *Driver) News() news.Repository {
	return driver.underlying.News()
}

// Materials provides the material repository implementation of the underlying driver
func (driver *Driver) Materials() material.Repository {
	return driver.underlying.Materials()
}

// Close closes the caching repositories and the underlying driver
func (driver *Driver) Close() {
	driver.profiles.cache.StopCleanupTask()
	driver.profiles = nil
	driver.groups.cache.StopCleanupTask()
	driver.groups = nil
	driver.underlying.Close()
}

package storage

import (
	"context"

	"github.com/partnerhub/portal-server/internal/credential"
	"github.com/partnerhub/portal-server/internal/group"
	"github.com/partnerhub/portal-server/internal/material"
	"github.com/partnerhub/portal-server/internal/news"
	"github.com/partnerhub/portal-server/internal/profile"
)

// Driver represents a storage driver
type Driver interface {
	// Initialize initializes the storage driver (i.e. opens a database connection)
	Initialize(ctx context.Context) error

	// Profiles provides a profile repository implementation
	Profiles() profile.Repository

	// Credentials provides a credential repository implementation
	Credentials() credential.Repository

	// Groups provides a group repository implementation
	Groups() group.Repository

	// News provides a news repository implementation
	News() news.Repository

	// Materials provides a material repository implementation
	Materials() material.Repository

	// Close closes the storage driver (i.e. closes a database connection)
	Close()
}

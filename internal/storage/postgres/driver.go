package postgres

import (
	"context"
	"embed"
	"errors"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/partnerhub/portal-server/internal/credential"
	"github.com/partnerhub/portal-server/internal/group"
	"github.com/partnerhub/portal-server/internal/material"
	"github.com/partnerhub/portal-server/internal/news"
	"github.com/partnerhub/portal-server/internal/profile"
	"github.com/partnerhub/portal-server/internal/storage"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Driver represents the PostgreSQL storage driver implementation
type Driver struct {
	dsn         string
	db          *pgxpool.Pool
	profiles    *ProfileRepository
	credentials *CredentialRepository
	groups      *GroupRepository
	news        *NewsRepository
	materials   *MaterialRepository
}

var _ storage.Driver = (*Driver)(nil)

// New creates a new empty PostgreSQL storage driver.
// Use Initialize to open the database connection and initialize the repository implementations.
func New(dsn string) *Driver {
	return &Driver{
		dsn: dsn,
	}
}

// Initialize opens the database connection, migrates the database and initializes the repository implementations
func (driver *Driver) Initialize(ctx context.Context) error {
	// Perform SQL migrations
	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return err
	}
	migrator, err := migrate.NewWithSourceInstance("iofs", source, driver.dsn)
	if err != nil {
		return err
	}
	defer migrator.Close()
	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	// Initialize the database connection pool
	pool, err := pgxpool.Connect(ctx, driver.dsn)
	if err != nil {
		return err
	}
	driver.db = pool

	// Initialize the repository implementations
	driver.profiles = &ProfileRepository{db: pool}
	driver.credentials = &CredentialRepository{db: pool}
	driver.groups = &GroupRepository{db: pool}
	driver.news = &NewsRepository{db: pool}
	driver.materials = &MaterialRepository{db: pool}

	return nil
}

// Profiles provides the PostgreSQL profile repository implementation
func (driver *Driver) Profiles() profile.Repository {
	return driver.profiles
}

// Credentials provides the PostgreSQL credential repository implementation
func (driver *Driver) Credentials() credential.Repository {
	return driver.credentials
}

// Groups provides the PostgreSQL group repository implementation
func (driver *Driver) Groups() group.Repository {
	return driver.groups
}

// News provides the PostgreSQL news repository implementation
func (driver *Driver) News() news.Repository {
	return driver.news
}

// Materials provides the PostgreSQL material repository implementation
func (driver *Driver) Materials() material.Repository {
	return driver.materials
}

// Close discards the repository implementations and closes the database connection
func (driver *Driver) Close() {
	driver.profiles = nil
	driver.credentials = nil
	driver.groups = nil
	driver.news = nil
	driver.materials = nil

	driver.db.Close()
	driver.db = nil
}

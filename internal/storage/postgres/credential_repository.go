package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/partnerhub/portal-server/internal/credential"
)

// CredentialRepository implements the credential.Repository interface using PostgreSQL
type CredentialRepository struct {
	db *pgxpool.Pool
}

var _ credential.Repository = (*CredentialRepository)(nil)

// GetByProfileID retrieves the credential of a profile
func (repo *CredentialRepository) GetByProfileID(ctx context.Context, profileID string) (*credential.Credential, error) {
	obj := new(credential.Credential)
	row := repo.db.QueryRow(ctx, "SELECT profile_id, hash FROM credentials WHERE profile_id = $1", profileID)
	if err := row.Scan(&obj.ProfileID, &obj.Hash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return obj, nil
}

// Set creates or replaces the credential of a profile
func (repo *CredentialRepository) Set(ctx context.Context, obj *credential.Credential) error {
	_, err := repo.db.Exec(
		ctx,
		"INSERT INTO credentials (profile_id, hash) VALUES ($1, $2) ON CONFLICT (profile_id) DO UPDATE SET hash = $2",
		obj.ProfileID,
		obj.Hash,
	)
	return err
}

// Delete deletes the credential of a profile
func (repo *CredentialRepository) Delete(ctx context.Context, profileID string) error {
	_, err := repo.db.Exec(ctx, "DELETE FROM credentials WHERE profile_id = $1", profileID)
	return err
}

package postgres

import (
	"context"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/partnerhub/portal-server/internal/profile"
)

// ProfileRepository implements the profile.Repository interface using PostgreSQL
type ProfileRepository struct {
	db *pgxpool.Pool
}

var _ profile.Repository = (*ProfileRepository)(nil)

// Get retrieves multiple profiles, ordered by creation date (newest first)
func (repo *ProfileRepository) Get(ctx context.Context, offset, limit uint64) ([]*profile.Profile, uint64, error) {
	query := squirrel.Select(
		"profile_id",
		"email",
		"name",
		"role",
		"group_id",
		"created_at",
		"updated_at",
	).From("profiles").OrderBy("created_at DESC")
	if offset > 0 {
		query = query.Offset(offset)
	}
	if limit > 0 {
		query = query.Limit(limit)
	} else {
		query = query.Limit(10)
	}
	sql, vals, err := query.ToSql()
	if err != nil {
		return nil, 0, err
	}

	var n uint64
	if err := repo.db.QueryRow(ctx, "SELECT COUNT(*) FROM profiles").Scan(&n); err != nil {
		return nil, 0, err
	}
	if n == 0 {
		return []*profile.Profile{}, 0, nil
	}

	rows, err := repo.db.Query(ctx, sql, vals...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []*profile.Profile{}, n, nil
		}
		return nil, 0, err
	}
	defer rows.Close()

	profiles := []*profile.Profile{}
	for rows.Next() {
		obj, err := scanProfile(rows)
		if err != nil {
			return nil, 0, err
		}
		profiles = append(profiles, obj)
	}

	return profiles, n, nil
}

// GetByID retrieves a profile by its ID
func (repo *ProfileRepository) GetByID(ctx context.Context, id string) (*profile.Profile, error) {
	row := repo.db.QueryRow(ctx, "SELECT profile_id, email, name, role, group_id, created_at, updated_at FROM profiles WHERE profile_id = $1", id)
	obj, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return obj, nil
}

// GetByEmail retrieves a profile by its email address
func (repo *ProfileRepository) GetByEmail(ctx context.Context, email string) (*profile.Profile, error) {
	row := repo.db.QueryRow(ctx, "SELECT profile_id, email, name, role, group_id, created_at, updated_at FROM profiles WHERE email = $1", email)
	obj, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return obj, nil
}

// Create creates a new profile
func (repo *ProfileRepository) Create(ctx context.Context, create *profile.Create) (*profile.Profile, error) {
	_, err := repo.db.Exec(
		ctx,
		"INSERT INTO profiles (profile_id, email, name, role) VALUES ($1, $2, $3, $4)",
		create.ID,
		create.Email,
		create.Name,
		string(create.Role),
	)
	if err != nil {
		return nil, err
	}
	return repo.GetByID(ctx, create.ID)
}

// Update updates an existing profile
func (repo *ProfileRepository) Update(ctx context.Context, id string, update *profile.Update) (*profile.Profile, error) {
	if update.Name != nil || update.Role != nil || update.GroupID != nil {
		query := squirrel.Update("profiles").Where(squirrel.Eq{"profile_id": id}).Set("updated_at", squirrel.Expr("now()"))
		if update.Name != nil {
			query = query.Set("name", *update.Name)
		}
		if update.Role != nil {
			query = query.Set("role", string(*update.Role))
		}
		if update.GroupID != nil {
			query = query.Set("group_id", *update.GroupID)
		}

		sql, values, err := query.PlaceholderFormat(squirrel.Dollar).ToSql()
		if err != nil {
			return nil, err
		}
		if _, err := repo.db.Exec(ctx, sql, values...); err != nil {
			return nil, err
		}
	}

	return repo.GetByID(ctx, id)
}

// Delete deletes a profile by its ID
func (repo *ProfileRepository) Delete(ctx context.Context, id string) error {
	_, err := repo.db.Exec(ctx, "DELETE FROM profiles WHERE profile_id = $1", id)
	return err
}

func scanProfile(row pgx.Row) (*profile.Profile, error) {
	obj := new(profile.Profile)
	var role string
	if err := row.Scan(&obj.ID, &obj.Email, &obj.Name, &role, &obj.GroupID, &obj.CreatedAt, &obj.UpdatedAt); err != nil {
		return nil, err
	}
	obj.Role = profile.Role(role)
	return obj, nil
}

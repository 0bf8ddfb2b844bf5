package postgres

import (
	"context"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/partnerhub/portal-server/internal/material"
)

// MaterialRepository implements the material.Repository interface using PostgreSQL
type MaterialRepository struct {
	db *pgxpool.Pool
}

var _ material.Repository = (*MaterialRepository)(nil)

// Get retrieves multiple materials, ordered by creation date (newest first)
func (repo *MaterialRepository) Get(ctx context.Context, offset, limit uint64, activeOnly bool) ([]*material.Material, uint64, error) {
	query := squirrel.Select(
		"material_id",
		"title",
		"description",
		"file_url",
		"file_type",
		"category",
		"is_active",
		"created_by",
		"created_at",
		"updated_at",
	).From("materials").OrderBy("created_at DESC")
	countQuery := squirrel.Select("COUNT(*)").From("materials")
	if activeOnly {
		query = query.Where(squirrel.Eq{"is_active": true})
		countQuery = countQuery.Where(squirrel.Eq{"is_active": true})
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if limit > 0 {
		query = query.Limit(limit)
	} else {
		query = query.Limit(10)
	}
	sql, vals, err := query.PlaceholderFormat(squirrel.Dollar).ToSql()
	if err != nil {
		return nil, 0, err
	}
	countSQL, countVals, err := countQuery.PlaceholderFormat(squirrel.Dollar).ToSql()
	if err != nil {
		return nil, 0, err
	}

	var n uint64
	if err := repo.db.QueryRow(ctx, countSQL, countVals...).Scan(&n); err != nil {
		return nil, 0, err
	}
	if n == 0 {
		return []*material.Material{}, 0, nil
	}

	rows, err := repo.db.Query(ctx, sql, vals...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []*material.Material{}, n, nil
		}
		return nil, 0, err
	}
	defer rows.Close()

	materials := []*material.Material{}
	for rows.Next() {
		obj, err := scanMaterial(rows)
		if err != nil {
			return nil, 0, err
		}
		materials = append(materials, obj)
	}

	return materials, n, nil
}

// GetByID retrieves a material by its ID
func (repo *MaterialRepository) GetByID(ctx context.Context, id string) (*material.Material, error) {
	row := repo.db.QueryRow(ctx, "SELECT material_id, title, description, file_url, file_type, category, is_active, created_by, created_at, updated_at FROM materials WHERE material_id = $1", id)
	obj, err := scanMaterial(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return obj, nil
}

// Create creates a new material
func (repo *MaterialRepository) Create(ctx context.Context, create *material.Create) (*material.Material, error) {
	id := uuid.NewString()
	_, err := repo.db.Exec(
		ctx,
		"INSERT INTO materials (material_id, title, description, file_url, file_type, category, is_active, created_by) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)",
		id,
		create.Title,
		create.Description,
		create.FileURL,
		create.FileType,
		create.Category,
		create.Active,
		create.CreatedBy,
	)
	if err != nil {
		return nil, err
	}
	return repo.GetByID(ctx, id)
}

// Update updates an existing material
func (repo *MaterialRepository) Update(ctx context.Context, id string, update *material.Update) (*material.Material, error) {
	if update.Title != nil || update.Description != nil || update.FileURL != nil || update.FileType != nil || update.Category != nil || update.Active != nil {
		query := squirrel.Update("materials").Where(squirrel.Eq{"material_id": id}).Set("updated_at", squirrel.Expr("now()"))
		if update.Title != nil {
			query = query.Set("title", *update.Title)
		}
		if update.Description != nil {
			query = query.Set("description", *update.Description)
		}
		if update.FileURL != nil {
			query = query.Set("file_url", *update.FileURL)
		}
		if update.FileType != nil {
			query = query.Set("file_type", *update.FileType)
		}
		if update.Category != nil {
			query = query.Set("category", *update.Category)
		}
		if update.Active != nil {
			query = query.Set("is_active", *update.Active)
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

// Delete deletes a material by its ID
func (repo *MaterialRepository) Delete(ctx context.Context, id string) error {
	_, err := repo.db.Exec(ctx, "DELETE FROM materials WHERE material_id = $1", id)
	return err
}

func scanMaterial(row pgx.Row) (*material.Material, error) {
	obj := new(material.Material)
	if err := row.Scan(&obj.ID, &obj.Title, &obj.Description, &obj.FileURL, &obj.FileType, &obj.Category, &obj.Active, &obj.CreatedBy, &obj.CreatedAt, &obj.UpdatedAt); err != nil {
		return nil, err
	}
	return obj, nil
}

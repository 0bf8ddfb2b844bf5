package postgres

import (
	"context"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/partnerhub/portal-server/internal/group"
)

// GroupRepository implements the group.Repository interface using PostgreSQL
type GroupRepository struct {
	db *pgxpool.Pool
}

var _ group.Repository = (*GroupRepository)(nil)

// Get retrieves multiple groups, ordered by creation date (newest first)
func (repo *GroupRepository) Get(ctx context.Context, offset, limit uint64) ([]*group.Group, uint64, error) {
	query := squirrel.Select(
		"group_id",
		"name",
		"coordinator_id",
		"powerbi_link",
		"form_link",
		"created_at",
		"updated_at",
	).From("groups").OrderBy("created_at DESC")
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
	if err := repo.db.QueryRow(ctx, "SELECT COUNT(*) FROM groups").Scan(&n); err != nil {
		return nil, 0, err
	}
	if n == 0 {
		return []*group.Group{}, 0, nil
	}

	rows, err := repo.db.Query(ctx, sql, vals...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []*group.Group{}, n, nil
		}
		return nil, 0, err
	}
	defer rows.Close()

	groups := []*group.Group{}
	for rows.Next() {
		obj, err := scanGroup(rows)
		if err != nil {
			return nil, 0, err
		}
		groups = append(groups, obj)
	}

	return groups, n, nil
}

// GetByID retrieves a group by its ID
func (repo *GroupRepository) GetByID(ctx context.Context, id string) (*group.Group, error) {
	row := repo.db.QueryRow(ctx, "SELECT group_id, name, coordinator_id, powerbi_link, form_link, created_at, updated_at FROM groups WHERE group_id = $1", id)
	obj, err := scanGroup(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return obj, nil
}

// Create creates a new group
func (repo *GroupRepository) Create(ctx context.Context, create *group.Create) (*group.Group, error) {
	id := uuid.NewString()
	_, err := repo.db.Exec(
		ctx,
		"INSERT INTO groups (group_id, name, coordinator_id, powerbi_link, form_link) VALUES ($1, $2, $3, $4, $5)",
		id,
		create.Name,
		create.CoordinatorID,
		create.PowerBILink,
		create.FormLink,
	)
	if err != nil {
		return nil, err
	}
	return repo.GetByID(ctx, id)
}

// Update updates an existing group
func (repo *GroupRepository) Update(ctx context.Context, id string, update *group.Update) (*group.Group, error) {
	if update.Name != nil || update.CoordinatorID != nil || update.PowerBILink != nil || update.FormLink != nil {
		query := squirrel.Update("groups").Where(squirrel.Eq{"group_id": id}).Set("updated_at", squirrel.Expr("now()"))
		if update.Name != nil {
			query = query.Set("name", *update.Name)
		}
		if update.CoordinatorID != nil {
			query = query.Set("coordinator_id", *update.CoordinatorID)
		}
		if update.PowerBILink != nil {
			query = query.Set("powerbi_link", *update.PowerBILink)
		}
		if update.FormLink != nil {
			query = query.Set("form_link", *update.FormLink)
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

// Delete deletes a group by its ID.
// Profiles referencing the group are not touched; their group_id is left dangling.
func (repo *GroupRepository) Delete(ctx context.Context, id string) error {
	_, err := repo.db.Exec(ctx, "DELETE FROM groups WHERE group_id = $1", id)
	return err
}

func scanGroup(row pgx.Row) (*group.Group, error) {
	obj := new(group.Group)
	if err := row.Scan(&obj.ID, &obj.Name, &obj.CoordinatorID, &obj.PowerBILink, &obj.FormLink, &obj.CreatedAt, &obj.UpdatedAt); err != nil {
		return nil, err
	}
	return obj, nil
}

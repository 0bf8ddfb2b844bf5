package postgres

import (
	"context"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/partnerhub/portal-server/internal/news"
)

// NewsRepository implements the news.Repository interface using PostgreSQL
type NewsRepository struct {
	db *pgxpool.Pool
}

var _ news.Repository = (*NewsRepository)(nil)

// Get retrieves multiple news entries, ordered by creation date (newest first)
func (repo *NewsRepository) Get(ctx context.Context, offset, limit uint64, activeOnly bool) ([]*news.News, uint64, error) {
	query := squirrel.Select(
		"news_id",
		"title",
		"content",
		"category",
		"image_url",
		"is_urgent",
		"is_active",
		"created_by",
		"created_at",
		"updated_at",
	).From("news").OrderBy("created_at DESC")
	countQuery := squirrel.Select("COUNT(*)").From("news")
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
		return []*news.News{}, 0, nil
	}

	rows, err := repo.db.Query(ctx, sql, vals...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []*news.News{}, n, nil
		}
		return nil, 0, err
	}
	defer rows.Close()

	entries := []*news.News{}
	for rows.Next() {
		obj, err := scanNews(rows)
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, obj)
	}

	return entries, n, nil
}

// GetByID retrieves a news entry by its ID
func (repo *NewsRepository) GetByID(ctx context.Context, id string) (*news.News, error) {
	row := repo.db.QueryRow(ctx, "SELECT news_id, title, content, category, image_url, is_urgent, is_active, created_by, created_at, updated_at FROM news WHERE news_id = $1", id)
	obj, err := scanNews(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return obj, nil
}

// Create creates a new news entry
func (repo *NewsRepository) Create(ctx context.Context, create *news.Create) (*news.News, error) {
	id := uuid.NewString()
	_, err := repo.db.Exec(
		ctx,
		"INSERT INTO news (news_id, title, content, category, image_url, is_urgent, is_active, created_by) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)",
		id,
		create.Title,
		create.Content,
		create.Category,
		create.ImageURL,
		create.Urgent,
		create.Active,
		create.CreatedBy,
	)
	if err != nil {
		return nil, err
	}
	return repo.GetByID(ctx, id)
}

// Update updates an existing news entry
func (repo *NewsRepository) Update(ctx context.Context, id string, update *news.Update) (*news.News, error) {
	if update.Title != nil || update.Content != nil || update.Category != nil || update.ImageURL != nil || update.Urgent != nil || update.Active != nil {
		query := squirrel.Update("news").Where(squirrel.Eq{"news_id": id}).Set("updated_at", squirrel.Expr("now()"))
		if update.Title != nil {
			query = query.Set("title", *update.Title)
		}
		if update.Content != nil {
			query = query.Set("content", *update.Content)
		}
		if update.Category != nil {
			query = query.Set("category", *update.Category)
		}
		if update.ImageURL != nil {
			query = query.Set("image_url", *update.ImageURL)
		}
		if update.Urgent != nil {
			query = query.Set("is_urgent", *update.Urgent)
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

// Delete deletes a news entry by its ID
func (repo *NewsRepository) Delete(ctx context.Context, id string) error {
	_, err := repo.db.Exec(ctx, "DELETE FROM news WHERE news_id = $1", id)
	return err
}

func scanNews(row pgx.Row) (*news.News, error) {
	obj := new(news.News)
	if err := row.Scan(&obj.ID, &obj.Title, &obj.Content, &obj.Category, &obj.ImageURL, &obj.Urgent, &obj.Active, &obj.CreatedBy, &obj.CreatedAt, &obj.UpdatedAt); err != nil {
		return nil, err
	}
	return obj, nil
}

package category

import (
	"context"
	"database/sql"
)

// PostgresRepository implements Repository using Postgres.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// List returns category rows ordered by `ord` then id.
func (r *PostgresRepository) List(ctx context.Context, limit int) ([]Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT category_id, name, slug, image_url, ord FROM categories ORDER BY ord DESC, category_id LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Category, 0)
	for rows.Next() {
		var (
			item Category
			img  sql.NullString
		)
		if err := rows.Scan(&item.ID, &item.Name, &item.Slug, &img, &item.Ord); err != nil {
			return nil, err
		}
		if img.Valid {
			item.ImageURL = &img.String
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

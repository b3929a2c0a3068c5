package enquiry

import (
	"context"
	"database/sql"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const (
	insertEnquiryQuery = `
		INSERT INTO bulk_enquiries (name, email, mobile, product_type, quantity, message, created_at)
		VALUES ($1,$2,$3,NULLIF($4, ''),$5,NULLIF($6, ''),$7)
		RETURNING enquiry_id
	`
	listEnquiriesQuery = `
		SELECT enquiry_id, name, email, mobile, COALESCE(product_type, ''), quantity, COALESCE(message, ''), created_at
		FROM bulk_enquiries
		ORDER BY created_at DESC, enquiry_id DESC
	`
)

func (r *PostgresRepository) Create(ctx context.Context, e Enquiry) (Enquiry, error) {
	err := r.db.QueryRowContext(ctx, insertEnquiryQuery,
		e.Name, e.Email, e.Mobile, e.ProductType, e.Quantity, e.Message, e.CreatedAt,
	).Scan(&e.ID)
	if err != nil {
		return Enquiry{}, err
	}
	return e, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]Enquiry, error) {
	rows, err := r.db.QueryContext(ctx, listEnquiriesQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Enquiry, 0)
	for rows.Next() {
		var e Enquiry
		if err := rows.Scan(&e.ID, &e.Name, &e.Email, &e.Mobile, &e.ProductType, &e.Quantity, &e.Message, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

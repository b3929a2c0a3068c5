package product

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/wichananm65/apparel-shop-backend/internal/database"
	"github.com/wichananm65/apparel-shop-backend/internal/upload"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	productColumns = `product_id, name, description, price, COALESCE(category, ''), COALESCE(image_url, ''),
		image_data IS NOT NULL, is_active, created_at, updated_at`

	listProductsQuery = `
		SELECT ` + productColumns + `
		FROM products
		WHERE ($1::text = '' OR lower(category) = lower($1::text))
		  AND ($2::boolean OR is_active)
		ORDER BY product_id
	`
	getProductByIDQuery = `
		SELECT ` + productColumns + `
		FROM products
		WHERE product_id = $1
	`
	listVariantsQuery = `
		SELECT variant_id, product_id, color, size, stock, is_available
		FROM product_variants
		WHERE product_id = ANY($1::int[])
		ORDER BY product_id, variant_id
	`
	findVariantQuery = `
		SELECT variant_id, product_id, color, size, stock, is_available
		FROM product_variants
		WHERE product_id = $1 AND color = $2 AND size = $3
	`
	updateProductQuery = `
		UPDATE products
		SET name = COALESCE($1, name),
			description = COALESCE($2, description),
			price = COALESCE($3, price),
			category = COALESCE($4, category),
			is_active = COALESCE($5, is_active),
			updated_at = $6
		WHERE product_id = $7
	`
	setVariantStockQuery = `
		UPDATE product_variants
		SET stock = $1, is_available = $1 > 0, updated_at = $2
		WHERE variant_id = $3
		RETURNING variant_id, product_id, color, size, stock, is_available
	`
	getImageQuery = `SELECT image_data, COALESCE(image_type, '') FROM products WHERE product_id = $1`
	setImageQuery = `
		UPDATE products
		SET image_data = $1, image_type = $2, image_url = $3, updated_at = $4
		WHERE product_id = $5
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(scanner rowScanner) (Product, error) {
	var (
		p        Product
		hasImage bool
	)
	if err := scanner.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Category, &p.ImageURL,
		&hasImage, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return Product{}, err
	}
	if hasImage && p.ImageURL == "" {
		p.ImageURL = ImagePath(p.ID)
	}
	p.Variants = []Variant{}
	return p, nil
}

func scanVariant(scanner rowScanner) (Variant, error) {
	var v Variant
	err := scanner.Scan(&v.ID, &v.ProductID, &v.Color, &v.Size, &v.Stock, &v.IsAvailable)
	return v, err
}

func (r *PostgresRepository) List(ctx context.Context, f ListFilter) ([]Product, error) {
	rows, err := r.db.QueryContext(ctx, listProductsQuery, f.Category, f.IncludeInactive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachVariants(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// attachVariants loads the variants of every product in one query.
func (r *PostgresRepository) attachVariants(ctx context.Context, products []Product) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]int, len(products))
	index := make(map[int]int, len(products))
	for i, p := range products {
		ids[i] = p.ID
		index[p.ID] = i
	}

	rows, err := r.db.QueryContext(ctx, listVariantsQuery, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		v, err := scanVariant(rows)
		if err != nil {
			return err
		}
		if i, ok := index[v.ProductID]; ok {
			products[i].Variants = append(products[i].Variants, v)
		}
	}
	return rows.Err()
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int) (Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, getProductByIDQuery, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, err
	}
	one := []Product{p}
	if err := r.attachVariants(ctx, one); err != nil {
		return Product{}, err
	}
	return one[0], nil
}

func (r *PostgresRepository) Update(ctx context.Context, id int, u Update) (Product, error) {
	res, err := r.db.ExecContext(ctx, updateProductQuery,
		u.Name, u.Description, u.Price, u.Category, u.IsActive, time.Now().UTC(), id)
	if err != nil {
		return Product{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Product{}, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *PostgresRepository) FindVariant(ctx context.Context, productID int, color, size string) (Variant, error) {
	v, err := scanVariant(r.db.QueryRowContext(ctx, findVariantQuery, productID, color, size))
	if errors.Is(err, sql.ErrNoRows) {
		return Variant{}, ErrVariantNotFound
	}
	return v, err
}

func (r *PostgresRepository) SetVariantStock(ctx context.Context, variantID, stock int) (Variant, error) {
	if stock < 0 {
		return Variant{}, ErrInvalidStock
	}
	v, err := scanVariant(r.db.QueryRowContext(ctx, setVariantStockQuery, stock, time.Now().UTC(), variantID))
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return Variant{}, ErrVariantNotFound
	case database.IsCheckViolation(err):
		return Variant{}, ErrInvalidStock
	}
	return v, err
}

func (r *PostgresRepository) GetImage(ctx context.Context, id int) (upload.Image, error) {
	var img upload.Image
	if err := r.db.QueryRowContext(ctx, getImageQuery, id).Scan(&img.Data, &img.ContentType); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return upload.Image{}, ErrNotFound
		}
		return upload.Image{}, err
	}
	if len(img.Data) == 0 {
		return upload.Image{}, ErrNoImage
	}
	return img, nil
}

func (r *PostgresRepository) SetImage(ctx context.Context, id int, img upload.Image) error {
	res, err := r.db.ExecContext(ctx, setImageQuery, img.Data, img.ContentType, ImagePath(id), time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

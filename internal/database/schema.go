package database

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS categories (
		category_id SERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		slug TEXT NOT NULL UNIQUE,
		image_url TEXT,
		ord INT NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		product_id SERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		price INT NOT NULL CHECK (price >= 0),
		category TEXT,
		image_url TEXT,
		image_data BYTEA,
		image_type TEXT,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS product_variants (
		variant_id SERIAL PRIMARY KEY,
		product_id INT NOT NULL REFERENCES products(product_id) ON DELETE CASCADE,
		color TEXT NOT NULL,
		size TEXT NOT NULL,
		stock INT NOT NULL DEFAULT 0 CHECK (stock >= 0),
		is_available BOOLEAN NOT NULL DEFAULT FALSE,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (product_id, color, size)
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		order_id BIGSERIAL PRIMARY KEY,
		order_code TEXT NOT NULL UNIQUE,
		customer_name TEXT NOT NULL,
		customer_email TEXT NOT NULL,
		customer_mobile TEXT NOT NULL,
		subtotal INT NOT NULL,
		shipping_fee INT NOT NULL,
		total_amount INT NOT NULL,
		payment_method TEXT NOT NULL CHECK (payment_method IN ('COD','UPI')),
		payment_status TEXT NOT NULL CHECK (payment_status IN ('pending','verified','failed')),
		order_status TEXT NOT NULL CHECK (order_status IN ('pending','processing','completed','cancelled')),
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_created ON orders (created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_status ON orders (order_status)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		item_id BIGSERIAL PRIMARY KEY,
		order_id BIGINT NOT NULL REFERENCES orders(order_id) ON DELETE CASCADE,
		product_id INT NOT NULL,
		variant_id INT,
		name TEXT NOT NULL,
		color TEXT NOT NULL,
		size TEXT NOT NULL,
		quantity INT NOT NULL CHECK (quantity > 0),
		unit_price INT NOT NULL,
		line_total INT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items (order_id)`,
	`CREATE TABLE IF NOT EXISTS order_addresses (
		order_id BIGINT PRIMARY KEY REFERENCES orders(order_id) ON DELETE CASCADE,
		pincode TEXT NOT NULL,
		state TEXT NOT NULL,
		district TEXT NOT NULL,
		city TEXT NOT NULL,
		building_line TEXT NOT NULL,
		landmark TEXT,
		address_type TEXT NOT NULL DEFAULT 'home'
	)`,
	`CREATE TABLE IF NOT EXISTS order_customizations (
		order_id BIGINT PRIMARY KEY REFERENCES orders(order_id) ON DELETE CASCADE,
		logo_name TEXT,
		logo_type TEXT,
		logo_data BYTEA
	)`,
	`CREATE TABLE IF NOT EXISTS payment_proofs (
		proof_id BIGSERIAL PRIMARY KEY,
		order_id BIGINT NOT NULL REFERENCES orders(order_id) ON DELETE CASCADE,
		content_type TEXT NOT NULL,
		data BYTEA NOT NULL,
		note TEXT,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS bulk_enquiries (
		enquiry_id SERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		mobile TEXT NOT NULL,
		product_type TEXT,
		quantity INT NOT NULL,
		message TEXT,
		created_at TIMESTAMPTZ NOT NULL
	)`,
}

var categorySeed = []struct{ name, slug string }{
	{"T-Shirts", "t-shirts"},
	{"Hoodies", "hoodies"},
	{"Sweatshirts", "sweatshirts"},
	{"Polos", "polos"},
	{"Caps", "caps"},
}

// EnsureSchema creates every table the storefront needs and seeds the
// category list when it is empty. All statements are idempotent.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}

	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&count); err != nil {
		return fmt.Errorf("count categories: %w", err)
	}
	if count > 0 {
		return nil
	}
	for i, s := range categorySeed {
		if _, err := db.ExecContext(ctx, `INSERT INTO categories (name, slug, ord) VALUES ($1,$2,$3) ON CONFLICT DO NOTHING`,
			s.name, s.slug, len(categorySeed)-i); err != nil {
			return fmt.Errorf("seed categories: %w", err)
		}
	}
	return nil
}

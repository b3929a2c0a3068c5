package product

import (
	"strconv"
	"time"
)

// Product is a catalog item. Each product is sold in one or more
// color/size variants that carry their own stock.
type Product struct {
	ID          int       `json:"productId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       int       `json:"price"`
	Category    string    `json:"category,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	IsActive    bool      `json:"isActive"`
	Variants    []Variant `json:"variants"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Variant maps to a product_variants row. IsAvailable is kept equal to
// Stock > 0 by every stock write.
type Variant struct {
	ID          int    `json:"variantId"`
	ProductID   int    `json:"productId"`
	Color       string `json:"color"`
	Size        string `json:"size"`
	Stock       int    `json:"stock"`
	IsAvailable bool   `json:"isAvailable"`
}

// Update is a partial product edit; nil fields are left unchanged.
type Update struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Price       *int    `json:"price"`
	Category    *string `json:"category"`
	IsActive    *bool   `json:"isActive"`
}

// StockLine asks for Quantity units of one variant. VariantID is filled in
// once the variant has been reserved; it stays 0 for untracked variants.
type StockLine struct {
	ProductID int
	Color     string
	Size      string
	Quantity  int
	VariantID int
}

// ImagePath is the public URL of a product image stored in the database.
func ImagePath(id int) string {
	return "/api/v1/product/" + strconv.Itoa(id) + "/image"
}

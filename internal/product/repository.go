package product

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/wichananm65/apparel-shop-backend/internal/upload"
)

var (
	ErrNotFound          = errors.New("product not found")
	ErrVariantNotFound   = errors.New("variant not found")
	ErrNoImage           = errors.New("product image not available")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidStock      = errors.New("stock must be >= 0")
)

// ListFilter narrows a product listing. An empty Category matches all.
type ListFilter struct {
	Category        string
	IncludeInactive bool
}

type Repository interface {
	List(ctx context.Context, f ListFilter) ([]Product, error)
	GetByID(ctx context.Context, id int) (Product, error)
	Update(ctx context.Context, id int, u Update) (Product, error)
	FindVariant(ctx context.Context, productID int, color, size string) (Variant, error)
	SetVariantStock(ctx context.Context, variantID, stock int) (Variant, error)
	GetImage(ctx context.Context, id int) (upload.Image, error)
	SetImage(ctx context.Context, id int, img upload.Image) error
}

// InMemoryRepository is a simple in-memory implementation useful for tests and
// local runs without Postgres. It also reserves stock for the in-memory order
// repository so both stay consistent.
type InMemoryRepository struct {
	mu      sync.RWMutex
	storage []Product
	images  map[int]upload.Image
	nextVar int
}

func NewInMemoryRepository(seed []Product) *InMemoryRepository {
	r := &InMemoryRepository{
		storage: make([]Product, 0, len(seed)),
		images:  make(map[int]upload.Image),
		nextVar: 1,
	}
	for _, p := range seed {
		p = cloneProduct(p)
		for i := range p.Variants {
			v := &p.Variants[i]
			v.ProductID = p.ID
			v.IsAvailable = v.Stock > 0
			if v.ID >= r.nextVar {
				r.nextVar = v.ID + 1
			}
		}
		r.storage = append(r.storage, p)
	}
	for i := range r.storage {
		for j := range r.storage[i].Variants {
			if r.storage[i].Variants[j].ID == 0 {
				r.storage[i].Variants[j].ID = r.nextVar
				r.nextVar++
			}
		}
	}
	return r
}

func cloneProduct(p Product) Product {
	vs := make([]Variant, len(p.Variants))
	copy(vs, p.Variants)
	p.Variants = vs
	return p
}

func (r *InMemoryRepository) List(_ context.Context, f ListFilter) ([]Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Product, 0, len(r.storage))
	for _, p := range r.storage {
		if !p.IsActive && !f.IncludeInactive {
			continue
		}
		if f.Category != "" && !strings.EqualFold(p.Category, f.Category) {
			continue
		}
		out = append(out, cloneProduct(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id int) (Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.storage {
		if p.ID == id {
			return cloneProduct(p), nil
		}
	}
	return Product{}, ErrNotFound
}

func (r *InMemoryRepository) Update(_ context.Context, id int, u Update) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.storage {
		if r.storage[i].ID == id {
			applyUpdate(&r.storage[i], u)
			r.storage[i].UpdatedAt = time.Now().UTC()
			return cloneProduct(r.storage[i]), nil
		}
	}
	return Product{}, ErrNotFound
}

func applyUpdate(p *Product, u Update) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.Category != nil {
		p.Category = *u.Category
	}
	if u.IsActive != nil {
		p.IsActive = *u.IsActive
	}
}

func (r *InMemoryRepository) FindVariant(_ context.Context, productID int, color, size string) (Variant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if v := r.variant(productID, color, size); v != nil {
		return *v, nil
	}
	return Variant{}, ErrVariantNotFound
}

func (r *InMemoryRepository) variant(productID int, color, size string) *Variant {
	for i := range r.storage {
		if r.storage[i].ID != productID {
			continue
		}
		for j := range r.storage[i].Variants {
			v := &r.storage[i].Variants[j]
			if v.Color == color && v.Size == size {
				return v
			}
		}
	}
	return nil
}

func (r *InMemoryRepository) SetVariantStock(_ context.Context, variantID, stock int) (Variant, error) {
	if stock < 0 {
		return Variant{}, ErrInvalidStock
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.storage {
		for j := range r.storage[i].Variants {
			v := &r.storage[i].Variants[j]
			if v.ID == variantID {
				v.Stock = stock
				v.IsAvailable = stock > 0
				return *v, nil
			}
		}
	}
	return Variant{}, ErrVariantNotFound
}

// Reserve decrements stock for every tracked line, or for none of them when
// any tracked line asks for more than is in stock. Lines for unknown variants
// are returned with VariantID 0 and do not affect stock.
func (r *InMemoryRepository) Reserve(_ context.Context, lines []StockLine) ([]StockLine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	need := map[*Variant]int{}
	out := make([]StockLine, len(lines))
	for i, l := range lines {
		out[i] = l
		v := r.variant(l.ProductID, l.Color, l.Size)
		if v == nil {
			continue
		}
		need[v] += l.Quantity
		if need[v] > v.Stock {
			return nil, ErrInsufficientStock
		}
		out[i].VariantID = v.ID
	}
	for v, q := range need {
		v.Stock -= q
		v.IsAvailable = v.Stock > 0
	}
	return out, nil
}

func (r *InMemoryRepository) GetImage(_ context.Context, id int) (upload.Image, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	img, ok := r.images[id]
	if !ok {
		return upload.Image{}, ErrNoImage
	}
	return img, nil
}

func (r *InMemoryRepository) SetImage(_ context.Context, id int, img upload.Image) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.storage {
		if r.storage[i].ID == id {
			r.images[id] = img
			r.storage[i].ImageURL = ImagePath(id)
			return nil
		}
	}
	return ErrNotFound
}

package category

import (
	"context"
	"sort"
	"sync"
)

// Repository provides access to category rows.
type Repository interface {
	List(ctx context.Context, limit int) ([]Category, error)
}

// InMemoryRepository serves a fixed category list.
type InMemoryRepository struct {
	mu    sync.RWMutex
	items []Category
}

func NewInMemoryRepository(seed []Category) *InMemoryRepository {
	items := make([]Category, len(seed))
	copy(items, seed)
	return &InMemoryRepository{items: items}
}

// List returns categories ordered by ord descending, then id.
func (r *InMemoryRepository) List(_ context.Context, limit int) ([]Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Category, len(r.items))
	copy(out, r.items)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Ord != out[j].Ord {
			return out[i].Ord > out[j].Ord
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Defaults mirrors the categories seeded into an empty database.
func Defaults() []Category {
	return []Category{
		{ID: 1, Name: "T-Shirts", Slug: "t-shirts", Ord: 5},
		{ID: 2, Name: "Hoodies", Slug: "hoodies", Ord: 4},
		{ID: 3, Name: "Sweatshirts", Slug: "sweatshirts", Ord: 3},
		{ID: 4, Name: "Polos", Slug: "polos", Ord: 2},
		{ID: 5, Name: "Caps", Slug: "caps", Ord: 1},
	}
}

package enquiry

import (
	"context"
	"sort"
	"sync"
)

type Repository interface {
	Create(ctx context.Context, e Enquiry) (Enquiry, error)
	// List returns enquiries newest first.
	List(ctx context.Context) ([]Enquiry, error)
}

type InMemoryRepository struct {
	mu     sync.RWMutex
	items  []Enquiry
	nextID int
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{nextID: 1}
}

func (r *InMemoryRepository) Create(_ context.Context, e Enquiry) (Enquiry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.ID = r.nextID
	r.nextID++
	r.items = append(r.items, e)
	return e, nil
}

func (r *InMemoryRepository) List(_ context.Context) ([]Enquiry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Enquiry, len(r.items))
	copy(out, r.items)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

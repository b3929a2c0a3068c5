package order

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/wichananm65/apparel-shop-backend/internal/product"
	"go.uber.org/zap"
)

var (
	ErrOrderNotFound       = errors.New("order not found")
	ErrOrderCreationFailed = errors.New("order creation failed")
	ErrInvalidOrder        = errors.New("invalid order")
	ErrInvalidStatus       = errors.New("invalid status")
	ErrIllegalTransition   = errors.New("illegal status transition")
	ErrStatusConflict      = errors.New("order status changed concurrently")
	ErrDuplicateOrder      = errors.New("order code already exists")
	ErrNoProof             = errors.New("no payment proof uploaded")
	ErrProofNotAllowed     = errors.New("payment proof is only accepted for UPI orders")

	// ErrInsufficientStock rejects an order when a tracked variant cannot
	// cover the ordered quantity.
	ErrInsufficientStock = product.ErrInsufficientStock
)

// ListFilter narrows an order listing. An empty Status matches all.
type ListFilter struct {
	Status Status
}

// StatusPair is the combined status of an order on both axes.
type StatusPair struct {
	Order   Status
	Payment PaymentStatus
}

// Repository defines persistence operations for orders.
type Repository interface {
	// Create stores the order with its items, address and logo, and takes the
	// ordered quantities out of stock, all or nothing. Items come back with
	// VariantID set for tracked variants.
	Create(ctx context.Context, ord Order) (Order, error)
	GetByCode(ctx context.Context, code string) (Order, error)
	// List returns orders newest first.
	List(ctx context.Context, f ListFilter) ([]Order, error)
	// UpdateStatus applies to only when the stored statuses still equal from.
	UpdateStatus(ctx context.Context, code string, from, to StatusPair, at time.Time) error
	AddProof(ctx context.Context, code string, p Proof) error
	LatestProof(ctx context.Context, code string) (Proof, error)
}

// StockReserver takes stock for in-memory orders. product.InMemoryRepository
// implements it.
type StockReserver interface {
	Reserve(ctx context.Context, lines []product.StockLine) ([]product.StockLine, error)
}

// InMemoryRepository for tests and database-less runs.
type InMemoryRepository struct {
	mu     sync.RWMutex
	orders map[string]Order
	proofs map[string][]Proof
	stock  StockReserver
	log    *zap.Logger
	nextID int64
}

func NewInMemoryRepository(stock StockReserver, log *zap.Logger) *InMemoryRepository {
	if log == nil {
		log = zap.NewNop()
	}
	return &InMemoryRepository{
		orders: make(map[string]Order),
		proofs: make(map[string][]Proof),
		stock:  stock,
		log:    log,
		nextID: 1,
	}
}

func cloneOrder(o Order) Order {
	items := make([]Item, len(o.Items))
	copy(items, o.Items)
	o.Items = items
	if o.Logo != nil {
		logo := *o.Logo
		o.Logo = &logo
	}
	return o
}

func stockLines(items []Item) []product.StockLine {
	lines := make([]product.StockLine, len(items))
	for i, it := range items {
		lines[i] = product.StockLine{ProductID: it.ProductID, Color: it.Color, Size: it.Size, Quantity: it.Quantity}
	}
	return lines
}

func (r *InMemoryRepository) Create(ctx context.Context, ord Order) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[ord.OrderCode]; ok {
		return Order{}, ErrDuplicateOrder
	}
	ord = cloneOrder(ord)
	if r.stock != nil {
		reserved, err := r.stock.Reserve(ctx, stockLines(ord.Items))
		if err != nil {
			return Order{}, err
		}
		for i, l := range reserved {
			ord.Items[i].VariantID = l.VariantID
			if l.VariantID == 0 {
				r.log.Info("untracked variant, stock not decremented",
					zap.String("order", ord.OrderCode),
					zap.Int("product", l.ProductID),
					zap.String("color", l.Color),
					zap.String("size", l.Size),
				)
			}
		}
	}
	ord.ID = r.nextID
	r.nextID++
	r.orders[ord.OrderCode] = ord
	return cloneOrder(ord), nil
}

func (r *InMemoryRepository) GetByCode(_ context.Context, code string) (Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[code]
	if !ok {
		return Order{}, ErrOrderNotFound
	}
	return cloneOrder(o), nil
}

func (r *InMemoryRepository) List(_ context.Context, f ListFilter) ([]Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Order, 0, len(r.orders))
	for _, o := range r.orders {
		if f.Status != "" && o.OrderStatus != f.Status {
			continue
		}
		out = append(out, cloneOrder(o))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *InMemoryRepository) UpdateStatus(_ context.Context, code string, from, to StatusPair, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[code]
	if !ok {
		return ErrOrderNotFound
	}
	if o.OrderStatus != from.Order || o.PaymentStatus != from.Payment {
		return ErrStatusConflict
	}
	o.OrderStatus = to.Order
	o.PaymentStatus = to.Payment
	o.UpdatedAt = at
	r.orders[code] = o
	return nil
}

func (r *InMemoryRepository) AddProof(_ context.Context, code string, p Proof) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[code]; !ok {
		return ErrOrderNotFound
	}
	r.proofs[code] = append(r.proofs[code], p)
	return nil
}

func (r *InMemoryRepository) LatestProof(_ context.Context, code string) (Proof, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.orders[code]; !ok {
		return Proof{}, ErrOrderNotFound
	}
	ps := r.proofs[code]
	if len(ps) == 0 {
		return Proof{}, ErrNoProof
	}
	return ps[len(ps)-1], nil
}

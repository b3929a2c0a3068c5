package cart

import (
	"context"
	"errors"

	"github.com/wichananm65/apparel-shop-backend/internal/storage"
)

var (
	ErrUnavailable    = errors.New("variant is out of stock")
	ErrNoSession      = errors.New("missing session id")
	ErrUnknownProduct = errors.New("product not found")
)

// Catalog prices cart lines and reports whether a variant can be added.
// Untracked variants should report available. product.Service implements it.
type Catalog interface {
	Price(ctx context.Context, productID int) (price int, ok bool, err error)
	Available(ctx context.Context, productID int, color, size string) (bool, error)
}

// Service orchestrates cart operations for storefront sessions. Calls for
// the same session are serialized so load-modify-save cycles do not race.
type Service struct {
	kv      Storage
	catalog Catalog
	locks   *storage.Locks
}

// NewService builds the cart service. A nil catalog keeps client prices and
// skips the availability check.
func NewService(kv Storage, catalog Catalog) *Service {
	return &Service{kv: kv, catalog: catalog, locks: storage.NewLocks()}
}

// With opens the session cart and runs fn while holding the session lock.
func (s *Service) With(ctx context.Context, sessionID string, fn func(*Store) error) error {
	if sessionID == "" {
		return ErrNoSession
	}
	defer s.locks.Lock(sessionID)()

	store, err := Open(ctx, s.kv, sessionID)
	if err != nil {
		return err
	}
	return fn(store)
}

// GetCart returns the current session cart.
func (s *Service) GetCart(ctx context.Context, sessionID string) (*Store, error) {
	var out *Store
	err := s.With(ctx, sessionID, func(st *Store) error {
		out = st
		return nil
	})
	return out, err
}

// AddToCart prices item from the catalog, checks the variant is available
// and merges it into the cart.
func (s *Service) AddToCart(ctx context.Context, sessionID string, item Item) (*Store, error) {
	if s.catalog != nil {
		price, found, err := s.catalog.Price(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, ErrUnknownProduct
		}
		item.UnitPrice = price

		ok, err := s.catalog.Available(ctx, item.ProductID, item.Color, item.Size)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrUnavailable
		}
	}
	var out *Store
	err := s.With(ctx, sessionID, func(st *Store) error {
		if _, err := st.AddItem(ctx, item); err != nil {
			return err
		}
		out = st
		return nil
	})
	return out, err
}

func (s *Service) UpdateQuantity(ctx context.Context, sessionID, lineID string, quantity int) (*Store, error) {
	var out *Store
	err := s.With(ctx, sessionID, func(st *Store) error {
		if err := st.UpdateQuantity(ctx, lineID, quantity); err != nil {
			return err
		}
		out = st
		return nil
	})
	return out, err
}

func (s *Service) RemoveItem(ctx context.Context, sessionID, lineID string) (*Store, error) {
	var out *Store
	err := s.With(ctx, sessionID, func(st *Store) error {
		if err := st.RemoveItem(ctx, lineID); err != nil {
			return err
		}
		out = st
		return nil
	})
	return out, err
}

// ClearCart empties the session cart.
func (s *Service) ClearCart(ctx context.Context, sessionID string) error {
	return s.With(ctx, sessionID, func(st *Store) error {
		return st.Clear(ctx)
	})
}

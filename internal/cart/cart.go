package cart

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/wichananm65/apparel-shop-backend/internal/storage"
)

// Item is one cart line. ID identifies the line; the merge identity is the
// (ProductID, Size, Color) tuple.
type Item struct {
	ID        string `json:"id"`
	ProductID int    `json:"productId"`
	Name      string `json:"name"`
	UnitPrice int    `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	ImageRef  string `json:"imageRef,omitempty"`
	LogoRef   string `json:"logoRef,omitempty"`
}

// LineTotal is UnitPrice * Quantity.
func (i Item) LineTotal() int {
	return i.UnitPrice * i.Quantity
}

func (i Item) sameVariant(o Item) bool {
	return i.ProductID == o.ProductID && i.Size == o.Size && i.Color == o.Color
}

// Storage is the key/value slot a Store persists into.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Store is a session cart. Every mutation is written to the backing slot
// before the in-memory state changes, so a failed write leaves the cart as
// it was.
type Store struct {
	kv    Storage
	key   string
	items []Item
}

type persisted struct {
	Items []Item `json:"items"`
}

func storageKey(sessionID string) string {
	return "cart:" + sessionID
}

// Open loads the cart persisted for sessionID. A missing or unreadable slot
// yields an empty cart.
func Open(ctx context.Context, kv Storage, sessionID string) (*Store, error) {
	s := &Store{kv: kv, key: storageKey(sessionID), items: []Item{}}
	raw, err := kv.Get(ctx, s.key)
	if errors.Is(err, storage.ErrNotFound) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}
	var p persisted
	if err := json.Unmarshal(raw, &p); err != nil {
		return s, nil
	}
	for _, it := range p.Items {
		if it.Quantity >= 1 {
			s.items = append(s.items, it)
		}
	}
	return s, nil
}

func (s *Store) commit(ctx context.Context, next []Item) error {
	b, err := json.Marshal(persisted{Items: next})
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, s.key, b); err != nil {
		return err
	}
	s.items = next
	return nil
}

func (s *Store) clone() []Item {
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// AddItem merges item into an existing line with the same product, size and
// color, or appends a new line. Quantities below 1 count as 1.
func (s *Store) AddItem(ctx context.Context, item Item) (Item, error) {
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	next := s.clone()
	for i := range next {
		if next[i].sameVariant(item) {
			next[i].Quantity += item.Quantity
			merged := next[i]
			if err := s.commit(ctx, next); err != nil {
				return Item{}, err
			}
			return merged, nil
		}
	}
	item.ID = uuid.NewString()
	next = append(next, item)
	if err := s.commit(ctx, next); err != nil {
		return Item{}, err
	}
	return item, nil
}

// RemoveItem deletes the line with lineID. Unknown ids are a no-op.
func (s *Store) RemoveItem(ctx context.Context, lineID string) error {
	idx := s.indexOf(lineID)
	if idx < 0 {
		return nil
	}
	next := s.clone()
	next = append(next[:idx], next[idx+1:]...)
	return s.commit(ctx, next)
}

// UpdateQuantity replaces a line's quantity; quantity <= 0 removes the line.
func (s *Store) UpdateQuantity(ctx context.Context, lineID string, quantity int) error {
	if quantity <= 0 {
		return s.RemoveItem(ctx, lineID)
	}
	idx := s.indexOf(lineID)
	if idx < 0 {
		return nil
	}
	next := s.clone()
	next[idx].Quantity = quantity
	return s.commit(ctx, next)
}

// Clear empties the cart and persists the empty state.
func (s *Store) Clear(ctx context.Context) error {
	return s.commit(ctx, []Item{})
}

// TotalPrice sums UnitPrice * Quantity over every line. Shipping is not included.
func (s *Store) TotalPrice() int {
	total := 0
	for _, it := range s.items {
		total += it.LineTotal()
	}
	return total
}

// Count is the total number of units in the cart.
func (s *Store) Count() int {
	n := 0
	for _, it := range s.items {
		n += it.Quantity
	}
	return n
}

func (s *Store) IsEmpty() bool {
	return len(s.items) == 0
}

// Items returns a copy of the lines in insertion order.
func (s *Store) Items() []Item {
	return s.clone()
}

func (s *Store) indexOf(lineID string) int {
	for i, it := range s.items {
		if it.ID == lineID {
			return i
		}
	}
	return -1
}

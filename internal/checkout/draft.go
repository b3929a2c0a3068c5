package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/wichananm65/apparel-shop-backend/internal/address"
	"github.com/wichananm65/apparel-shop-backend/internal/cart"
	"github.com/wichananm65/apparel-shop-backend/internal/storage"
	"github.com/wichananm65/apparel-shop-backend/internal/upload"
)

// Registry loads and saves one controller per session in the slot store.
// Calls for the same session are serialized.
type Registry struct {
	kv    Storage
	locks *storage.Locks
}

func NewRegistry(kv Storage) *Registry {
	return &Registry{kv: kv, locks: storage.NewLocks()}
}

// With runs fn on the session controller while holding its lock. The
// controller is saved only when fn succeeds. A controller back at its
// initial state is dropped from the store rather than written.
func (r *Registry) With(ctx context.Context, sessionID string, fn func(*Controller) error) error {
	if sessionID == "" {
		return cart.ErrNoSession
	}
	defer r.locks.Lock(sessionID)()

	c, stored, err := loadDraft(ctx, r.kv, sessionID)
	if err != nil {
		return err
	}
	if err := fn(c); err != nil {
		return err
	}
	if c.pristine() {
		if stored {
			return r.kv.Delete(ctx, draftKey(sessionID))
		}
		return nil
	}
	return saveDraft(ctx, r.kv, sessionID, c)
}

// savedDraft is the stored form of a controller. The logo bytes are kept
// beside the draft because upload.Image leaves them out of its JSON.
type savedDraft struct {
	Step     Step             `json:"step"`
	Draft    Draft            `json:"draft"`
	Logo     *pendingLogo     `json:"logo,omitempty"`
	Autofill address.Autofill `json:"autofill"`
}

func draftKey(sessionID string) string {
	return "checkout:draft:" + sessionID
}

func saveDraft(ctx context.Context, kv Storage, sessionID string, c *Controller) error {
	saved := savedDraft{Step: c.step, Draft: c.draft, Autofill: c.autofill}
	if l := c.draft.Logo; l != nil {
		saved.Logo = &pendingLogo{Name: l.Name, ContentType: l.ContentType, Data: l.Data}
		saved.Draft.Logo = nil
	}
	raw, err := json.Marshal(saved)
	if err != nil {
		return err
	}
	return kv.Set(ctx, draftKey(sessionID), raw)
}

// loadDraft returns the stored controller, or a fresh one with stored false.
func loadDraft(ctx context.Context, kv Storage, sessionID string) (*Controller, bool, error) {
	raw, err := kv.Get(ctx, draftKey(sessionID))
	if errors.Is(err, storage.ErrNotFound) {
		return NewController(), false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var saved savedDraft
	if err := json.Unmarshal(raw, &saved); err != nil {
		return nil, false, fmt.Errorf("decode checkout draft: %w", err)
	}
	c := &Controller{step: saved.Step, draft: saved.Draft, autofill: saved.Autofill}
	if l := saved.Logo; l != nil {
		c.draft.Logo = &upload.Image{Name: l.Name, ContentType: l.ContentType, Data: l.Data}
	}
	return c, true, nil
}

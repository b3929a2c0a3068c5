package checkout

import (
	"context"

	"github.com/wichananm65/apparel-shop-backend/internal/address"
	"github.com/wichananm65/apparel-shop-backend/internal/cart"
	"github.com/wichananm65/apparel-shop-backend/internal/notification"
	"github.com/wichananm65/apparel-shop-backend/internal/order"
	"github.com/wichananm65/apparel-shop-backend/internal/upload"
	"go.uber.org/zap"
)

// Storage is the key/value slot store checkout drafts and pending UPI
// payments are kept in.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// OrderSubmitter places orders. *order.Service implements it.
type OrderSubmitter interface {
	Submit(ctx context.Context, req order.SubmitRequest) (order.Order, error)
}

// Merchant identifies the shop in UPI and WhatsApp hand-offs.
type Merchant struct {
	Name     string
	UPIID    string
	WhatsApp string
}

// State is the checkout snapshot returned to the storefront.
type State struct {
	Step     Step             `json:"step"`
	Draft    Draft            `json:"draft"`
	Autofill address.Autofill `json:"autofill"`
	Summary  Summary          `json:"summary"`
}

// Result tells the storefront where to go after submission.
type Result struct {
	OrderCode     string              `json:"orderCode"`
	PaymentMethod order.PaymentMethod `json:"paymentMethod"`
	Total         int                 `json:"total"`
	UPILink       string              `json:"upiLink,omitempty"`
	WhatsAppLink  string              `json:"whatsAppLink,omitempty"`
}

type Service struct {
	reg      *Registry
	carts    *cart.Service
	orders   OrderSubmitter
	kv       Storage
	lookup   address.Lookup
	merchant Merchant
	log      *zap.Logger
}

func NewService(reg *Registry, carts *cart.Service, orders OrderSubmitter, kv Storage,
	lookup address.Lookup, merchant Merchant, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if reg == nil {
		reg = NewRegistry(kv)
	}
	s := &Service{reg: reg, carts: carts, orders: orders, kv: kv, merchant: merchant, log: log}
	if lookup != nil {
		s.lookup = loggedLookup{next: lookup, log: log}
	}
	return s
}

// loggedLookup records lookup failures, which auto-fill otherwise absorbs.
type loggedLookup struct {
	next address.Lookup
	log  *zap.Logger
}

func (l loggedLookup) Lookup(ctx context.Context, pincode string) ([]address.Locality, error) {
	found, err := l.next.Lookup(ctx, pincode)
	if err != nil {
		l.log.Warn("pincode lookup failed", zap.String("pincode", pincode), zap.Error(err))
	}
	return found, err
}

func (s *Service) snapshot(ctx context.Context, sessionID string, c *Controller) (State, error) {
	st, err := s.carts.GetCart(ctx, sessionID)
	if err != nil {
		return State{}, err
	}
	return State{
		Step:     c.Step(),
		Draft:    c.Draft(),
		Autofill: c.Autofill(),
		Summary:  c.Summary(st.Items()),
	}, nil
}

// do applies fn to the session controller and returns the resulting state.
func (s *Service) do(ctx context.Context, sessionID string, fn func(*Controller) error) (State, error) {
	var out State
	err := s.reg.With(ctx, sessionID, func(c *Controller) error {
		if err := fn(c); err != nil {
			return err
		}
		var err error
		out, err = s.snapshot(ctx, sessionID, c)
		return err
	})
	return out, err
}

func (s *Service) State(ctx context.Context, sessionID string) (State, error) {
	return s.do(ctx, sessionID, func(*Controller) error { return nil })
}

func (s *Service) SetCustomer(ctx context.Context, sessionID string, cu address.Customer) (State, error) {
	return s.do(ctx, sessionID, func(c *Controller) error {
		c.SetCustomer(cu)
		return nil
	})
}

func (s *Service) SetAddress(ctx context.Context, sessionID string, a address.Address) (State, error) {
	return s.do(ctx, sessionID, func(c *Controller) error {
		c.SetAddress(a)
		return nil
	})
}

func (s *Service) SetPincode(ctx context.Context, sessionID, pincode string) (State, error) {
	return s.do(ctx, sessionID, func(c *Controller) error {
		c.SetPincode(ctx, s.lookup, pincode)
		return nil
	})
}

func (s *Service) SelectLocality(ctx context.Context, sessionID, name string) (State, error) {
	return s.do(ctx, sessionID, func(c *Controller) error {
		return c.SelectLocality(name)
	})
}

func (s *Service) AttachLogo(ctx context.Context, sessionID string, img upload.Image) (State, error) {
	return s.do(ctx, sessionID, func(c *Controller) error {
		return c.AttachLogo(img)
	})
}

func (s *Service) RemoveLogo(ctx context.Context, sessionID string) (State, error) {
	return s.do(ctx, sessionID, func(c *Controller) error {
		c.RemoveLogo()
		return nil
	})
}

func (s *Service) Next(ctx context.Context, sessionID string) (State, error) {
	return s.do(ctx, sessionID, func(c *Controller) error {
		return c.Next()
	})
}

func (s *Service) Back(ctx context.Context, sessionID string) (State, error) {
	return s.do(ctx, sessionID, func(c *Controller) error {
		c.Back()
		return nil
	})
}

func (s *Service) SetPaymentMethod(ctx context.Context, sessionID string, m order.PaymentMethod) (State, error) {
	return s.do(ctx, sessionID, func(c *Controller) error {
		return c.SetPaymentMethod(m)
	})
}

// Submit places a COD order and clears the cart, or stashes a UPI checkout
// and returns the payment deep link with the cart left intact.
func (s *Service) Submit(ctx context.Context, sessionID string) (Result, error) {
	var res Result
	err := s.reg.With(ctx, sessionID, func(c *Controller) error {
		return s.carts.With(ctx, sessionID, func(st *cart.Store) error {
			items := st.Items()
			req, err := c.request(items)
			if err != nil {
				return err
			}

			if req.PaymentMethod == order.MethodUPI {
				sum := c.Summary(items)
				req.OrderCode = order.NewCode()
				if err := savePending(ctx, s.kv, sessionID, newPending(req, sum)); err != nil {
					return err
				}
				s.log.Info("upi checkout stashed", zap.String("order", req.OrderCode), zap.Int("total", sum.Total))
				res = Result{
					OrderCode:     req.OrderCode,
					PaymentMethod: order.MethodUPI,
					Total:         sum.Total,
					UPILink:       UPILink(s.merchant.UPIID, s.merchant.Name, sum.Total, req.OrderCode),
					WhatsAppLink: notification.WhatsAppLink(s.merchant.WhatsApp,
						notification.PaymentScreenshotMessage(req.OrderCode, sum.Total)),
				}
				return nil
			}

			o, err := s.orders.Submit(ctx, req)
			if err != nil {
				return err
			}
			s.finish(ctx, sessionID, c, st)
			res = Result{
				OrderCode:     o.OrderCode,
				PaymentMethod: o.PaymentMethod,
				Total:         o.TotalAmount,
				WhatsAppLink:  notification.WhatsAppLink(s.merchant.WhatsApp, notification.OrderMessage(o.OrderCode)),
			}
			return nil
		})
	})
	return res, err
}

// ConfirmUPI places the stashed UPI order under the code it was given at
// submission.
func (s *Service) ConfirmUPI(ctx context.Context, sessionID string) (Result, error) {
	var res Result
	err := s.reg.With(ctx, sessionID, func(c *Controller) error {
		return s.carts.With(ctx, sessionID, func(st *cart.Store) error {
			p, err := loadPending(ctx, s.kv, sessionID)
			if err != nil {
				return err
			}
			o, err := s.orders.Submit(ctx, p.request())
			if err != nil {
				return err
			}
			if err := s.kv.Delete(ctx, pendingKey(sessionID)); err != nil {
				s.log.Warn("drop pending payment", zap.String("order", o.OrderCode), zap.Error(err))
			}
			s.finish(ctx, sessionID, c, st)
			res = Result{
				OrderCode:     o.OrderCode,
				PaymentMethod: o.PaymentMethod,
				Total:         o.TotalAmount,
				WhatsAppLink: notification.WhatsAppLink(s.merchant.WhatsApp,
					notification.PaymentScreenshotMessage(o.OrderCode, o.TotalAmount)),
			}
			return nil
		})
	})
	return res, err
}

// finish clears the cart and restarts checkout after an order is placed.
// The order is already committed, so a failed clear is only logged.
func (s *Service) finish(ctx context.Context, sessionID string, c *Controller, st *cart.Store) {
	if err := st.Clear(ctx); err != nil {
		s.log.Warn("clear cart after order", zap.String("session", sessionID), zap.Error(err))
	}
	c.Reset()
}

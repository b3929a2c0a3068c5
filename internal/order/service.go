package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wichananm65/apparel-shop-backend/internal/address"
	"github.com/wichananm65/apparel-shop-backend/internal/notification"
	"github.com/wichananm65/apparel-shop-backend/internal/shipping"
	"github.com/wichananm65/apparel-shop-backend/internal/upload"
	"go.uber.org/zap"
)

// SubmitRequest is everything needed to place an order. OrderCode may be
// preset, as it is when a stashed UPI checkout is confirmed. ClientTotal is
// what the browser displayed; it is compared against but never trusted.
type SubmitRequest struct {
	OrderCode     string
	Items         []Item
	Customer      address.Customer
	Address       address.Address
	PaymentMethod PaymentMethod
	Logo          *Customization
	ClientTotal   *int
}

// StatusUpdate asks for new statuses. Empty fields are left unchanged.
// Force bypasses the transition graph for admin corrections.
type StatusUpdate struct {
	OrderStatus   Status        `json:"orderStatus"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	Force         bool          `json:"force"`
}

// Service provides business logic for orders.
type Service struct {
	repo     Repository
	notifier notification.Notifier
	log      *zap.Logger
	now      func() time.Time
}

func NewService(r Repository, n notification.Notifier, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: r, notifier: n, log: log, now: func() time.Time { return time.Now().UTC() }}
}

func validateRequest(req SubmitRequest) error {
	if len(req.Items) == 0 {
		return fmt.Errorf("%w: no items", ErrInvalidOrder)
	}
	for i, it := range req.Items {
		if it.ProductID <= 0 {
			return fmt.Errorf("%w: item %d has no product", ErrInvalidOrder, i)
		}
		if it.Quantity < 1 {
			return fmt.Errorf("%w: item %d quantity must be >= 1", ErrInvalidOrder, i)
		}
		if it.UnitPrice < 0 {
			return fmt.Errorf("%w: item %d unit price must be >= 0", ErrInvalidOrder, i)
		}
	}
	if !req.PaymentMethod.Valid() {
		return fmt.Errorf("%w: unknown payment method %q", ErrInvalidOrder, req.PaymentMethod)
	}
	if errs := address.Validate(req.Customer, req.Address); errs != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOrder, errs)
	}
	return nil
}

// Submit prices, persists and announces an order. Totals are recomputed from
// unit prices and quantities. Notification failures are logged and do not
// fail the order.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (Order, error) {
	if err := validateRequest(req); err != nil {
		return Order{}, err
	}

	now := s.now()
	ord := Order{
		OrderCode:     strings.TrimSpace(req.OrderCode),
		Customer:      req.Customer.Normalize(),
		Address:       req.Address.Normalize(),
		Items:         make([]Item, len(req.Items)),
		Logo:          req.Logo,
		PaymentMethod: req.PaymentMethod,
		PaymentStatus: req.PaymentMethod.InitialPaymentStatus(),
		OrderStatus:   StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if ord.OrderCode == "" {
		ord.OrderCode = NewCode()
	}
	for i, it := range req.Items {
		it.LineTotal = it.UnitPrice * it.Quantity
		it.VariantID = 0
		ord.Items[i] = it
		ord.Subtotal += it.LineTotal
	}
	ord.ShippingFee = shipping.Fee(ord.Subtotal, ord.Address.State)
	ord.TotalAmount = ord.Subtotal + ord.ShippingFee

	if req.ClientTotal != nil && *req.ClientTotal != ord.TotalAmount {
		s.log.Warn("client total differs from computed total",
			zap.String("order", ord.OrderCode),
			zap.Int("client", *req.ClientTotal),
			zap.Int("computed", ord.TotalAmount),
		)
	}

	created, err := s.repo.Create(ctx, ord)
	if err != nil {
		if errors.Is(err, ErrInsufficientStock) || errors.Is(err, ErrDuplicateOrder) {
			return Order{}, err
		}
		s.log.Error("create order", zap.String("order", ord.OrderCode), zap.Error(err))
		return Order{}, fmt.Errorf("%w: %v", ErrOrderCreationFailed, err)
	}
	s.log.Info("order created",
		zap.String("order", created.OrderCode),
		zap.String("payment", string(created.PaymentMethod)),
		zap.Int("total", created.TotalAmount),
	)

	s.notify(ctx, created)
	return created, nil
}

func (s *Service) notify(ctx context.Context, o Order) {
	if s.notifier == nil {
		return
	}
	snap := o.Snapshot()
	if err := s.notifier.CustomerConfirmation(ctx, snap); err != nil {
		s.log.Warn("customer confirmation failed", zap.String("order", o.OrderCode), zap.Error(err))
	}
	if err := s.notifier.AdminAlert(ctx, snap); err != nil {
		s.log.Warn("admin alert failed", zap.String("order", o.OrderCode), zap.Error(err))
	}
}

func (s *Service) Get(ctx context.Context, code string) (Order, error) {
	return s.repo.GetByCode(ctx, strings.TrimSpace(code))
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Order, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, f.Status)
	}
	return s.repo.List(ctx, f)
}

// SetStatus moves an order along the order and payment graphs. A request
// that changes nothing returns the order untouched.
func (s *Service) SetStatus(ctx context.Context, code string, u StatusUpdate) (Order, error) {
	if u.OrderStatus == "" && u.PaymentStatus == "" {
		return Order{}, fmt.Errorf("%w: nothing to update", ErrInvalidStatus)
	}
	if u.OrderStatus != "" && !u.OrderStatus.Valid() {
		return Order{}, fmt.Errorf("%w: order status %q", ErrInvalidStatus, u.OrderStatus)
	}
	if u.PaymentStatus != "" && !u.PaymentStatus.Valid() {
		return Order{}, fmt.Errorf("%w: payment status %q", ErrInvalidStatus, u.PaymentStatus)
	}

	cur, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return Order{}, err
	}
	from := StatusPair{Order: cur.OrderStatus, Payment: cur.PaymentStatus}
	to := from
	if u.OrderStatus != "" {
		to.Order = u.OrderStatus
	}
	if u.PaymentStatus != "" {
		to.Payment = u.PaymentStatus
	}
	if to == from {
		return cur, nil
	}

	legal := CanTransition(from.Order, to.Order) && CanTransitionPayment(from.Payment, to.Payment)
	if !legal {
		if !u.Force {
			return Order{}, fmt.Errorf("%w: %s/%s -> %s/%s", ErrIllegalTransition,
				from.Order, from.Payment, to.Order, to.Payment)
		}
		s.log.Warn("forced status correction",
			zap.String("order", code),
			zap.String("from_status", string(from.Order)),
			zap.String("to_status", string(to.Order)),
			zap.String("from_payment", string(from.Payment)),
			zap.String("to_payment", string(to.Payment)),
		)
	}

	at := s.now()
	if err := s.repo.UpdateStatus(ctx, code, from, to, at); err != nil {
		return Order{}, err
	}
	cur.OrderStatus = to.Order
	cur.PaymentStatus = to.Payment
	cur.UpdatedAt = at
	return cur, nil
}

// AttachPaymentProof stores a UPI payment screenshot against the order.
func (s *Service) AttachPaymentProof(ctx context.Context, code string, p Proof) error {
	if err := upload.CheckImage(p.ContentType, int64(len(p.Data))); err != nil {
		return err
	}
	o, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return err
	}
	if o.PaymentMethod != MethodUPI {
		return ErrProofNotAllowed
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now()
	}
	if err := s.repo.AddProof(ctx, code, p); err != nil {
		return err
	}
	s.log.Info("payment proof uploaded", zap.String("order", code), zap.Int("bytes", len(p.Data)))
	return nil
}

func (s *Service) LatestProof(ctx context.Context, code string) (Proof, error) {
	return s.repo.LatestProof(ctx, code)
}

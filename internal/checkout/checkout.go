// Package checkout drives the two-step storefront checkout: address entry,
// then payment selection and submission.
package checkout

import (
	"context"
	"errors"
	"strings"

	"github.com/wichananm65/apparel-shop-backend/internal/address"
	"github.com/wichananm65/apparel-shop-backend/internal/cart"
	"github.com/wichananm65/apparel-shop-backend/internal/order"
	"github.com/wichananm65/apparel-shop-backend/internal/shipping"
	"github.com/wichananm65/apparel-shop-backend/internal/upload"
)

// Step is the position of a session in the checkout flow.
type Step string

const (
	StepAddressEntry     Step = "ADDRESS_ENTRY"
	StepPaymentSelection Step = "PAYMENT_SELECTION"
)

var (
	ErrWrongStep       = errors.New("action not allowed at this checkout step")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrNoPaymentMethod = errors.New("choose a payment method")
)

// Draft is what the customer has entered so far. It lives in the session
// slot store until an order is submitted.
type Draft struct {
	Customer      address.Customer    `json:"customer"`
	Address       address.Address     `json:"address"`
	PaymentMethod order.PaymentMethod `json:"paymentMethod,omitempty"`
	Logo          *upload.Image       `json:"logo,omitempty"`
}

// Summary is the price breakdown shown before payment.
type Summary struct {
	Subtotal int `json:"subtotal"`
	Shipping int `json:"shipping"`
	Total    int `json:"total"`
}

// Controller is the checkout state of one session. It is not safe for
// concurrent use; Registry serializes access and persists it between calls.
type Controller struct {
	step     Step
	draft    Draft
	autofill address.Autofill
}

func NewController() *Controller {
	return &Controller{
		step:     StepAddressEntry,
		draft:    Draft{Address: address.Address{Type: address.TypeHome}},
		autofill: address.NewAutofill(),
	}
}

func (c *Controller) Step() Step { return c.step }

func (c *Controller) Draft() Draft { return c.draft }

func (c *Controller) Autofill() address.Autofill { return c.autofill }

func (c *Controller) SetCustomer(cu address.Customer) {
	c.draft.Customer = cu
}

// SetAddress replaces the typed address fields. The pincode only changes
// through SetPincode, and locked fields keep their looked-up values.
func (c *Controller) SetAddress(a address.Address) {
	a.Pincode = c.draft.Address.Pincode
	if a.Type == "" {
		a.Type = c.draft.Address.Type
	}
	c.draft.Address = c.autofill.Protect(c.draft.Address, a)
}

// SetPincode records a new pincode and re-runs auto-fill. A nil lookup
// leaves the derived fields for manual entry.
func (c *Controller) SetPincode(ctx context.Context, lookup address.Lookup, pincode string) address.Autofill {
	c.autofill.ApplyPincode(ctx, lookup, &c.draft.Address, pincode)
	return c.autofill
}

func (c *Controller) SelectLocality(name string) error {
	return c.autofill.SelectLocality(&c.draft.Address, name)
}

// AttachLogo sets the optional print logo. Invalid files are reported under
// the "logo" key.
func (c *Controller) AttachLogo(img upload.Image) error {
	if err := upload.CheckImage(img.ContentType, int64(img.Size())); err != nil {
		return address.ValidationErrors{"logo": err.Error()}
	}
	c.draft.Logo = &img
	return nil
}

func (c *Controller) RemoveLogo() {
	c.draft.Logo = nil
}

// Next validates the draft and moves to payment selection. On failure the
// step is unchanged and one message per invalid field is returned.
func (c *Controller) Next() error {
	if c.step != StepAddressEntry {
		return nil
	}
	if errs := address.Validate(c.draft.Customer, c.draft.Address); errs != nil {
		return errs
	}
	c.draft.Customer = c.draft.Customer.Normalize()
	c.draft.Address = c.draft.Address.Normalize()
	c.step = StepPaymentSelection
	return nil
}

// Back returns to address entry keeping everything entered.
func (c *Controller) Back() {
	c.step = StepAddressEntry
}

func (c *Controller) SetPaymentMethod(m order.PaymentMethod) error {
	if c.step != StepPaymentSelection {
		return ErrWrongStep
	}
	m = order.PaymentMethod(strings.ToUpper(strings.TrimSpace(string(m))))
	if !m.Valid() {
		return address.ValidationErrors{"paymentMethod": "payment method must be COD or UPI"}
	}
	c.draft.PaymentMethod = m
	return nil
}

// Summary prices items for the current destination state. An empty cart
// has nothing to ship and sums to zero.
func (c *Controller) Summary(items []cart.Item) Summary {
	if len(items) == 0 {
		return Summary{}
	}
	sub := 0
	for _, it := range items {
		sub += it.LineTotal()
	}
	fee := shipping.Fee(sub, c.draft.Address.State)
	return Summary{Subtotal: sub, Shipping: fee, Total: sub + fee}
}

// Reset starts a fresh checkout.
func (c *Controller) Reset() {
	*c = *NewController()
}

// pristine reports whether nothing has been entered since NewController.
func (c *Controller) pristine() bool {
	fresh := NewController()
	return c.step == fresh.step && c.draft == fresh.draft && c.autofill.Status == fresh.autofill.Status
}

// request assembles the order request for items. It fails unless the
// session is at payment selection with a method chosen and a non-empty cart.
func (c *Controller) request(items []cart.Item) (order.SubmitRequest, error) {
	if c.step != StepPaymentSelection {
		return order.SubmitRequest{}, ErrWrongStep
	}
	if c.draft.PaymentMethod == "" {
		return order.SubmitRequest{}, ErrNoPaymentMethod
	}
	if len(items) == 0 {
		return order.SubmitRequest{}, ErrEmptyCart
	}

	lines := make([]order.Item, len(items))
	for i, it := range items {
		lines[i] = order.Item{
			ProductID: it.ProductID,
			Name:      it.Name,
			Color:     it.Color,
			Size:      it.Size,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		}
	}
	total := c.Summary(items).Total
	req := order.SubmitRequest{
		Items:         lines,
		Customer:      c.draft.Customer,
		Address:       c.draft.Address,
		PaymentMethod: c.draft.PaymentMethod,
		ClientTotal:   &total,
	}
	if l := c.draft.Logo; l != nil {
		req.Logo = &order.Customization{Name: l.Name, ContentType: l.ContentType, Size: l.Size(), Data: l.Data}
	}
	return req, nil
}

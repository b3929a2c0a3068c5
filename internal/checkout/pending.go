package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/wichananm65/apparel-shop-backend/internal/address"
	"github.com/wichananm65/apparel-shop-backend/internal/order"
	"github.com/wichananm65/apparel-shop-backend/internal/storage"
)

// ErrNoPendingPayment means the session has no UPI checkout waiting for
// confirmation.
var ErrNoPendingPayment = errors.New("no pending UPI payment for this session")

// PendingPayment is a UPI checkout stashed until the customer confirms they
// have paid.
type PendingPayment struct {
	OrderCode string           `json:"orderCode"`
	Items     []order.Item     `json:"items"`
	Customer  address.Customer `json:"customer"`
	Address   address.Address  `json:"address"`
	Logo      *pendingLogo     `json:"logo,omitempty"`
	Subtotal  int              `json:"subtotal"`
	Shipping  int              `json:"shipping"`
	Total     int              `json:"total"`
}

type pendingLogo struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Data        []byte `json:"data"`
}

func pendingKey(sessionID string) string {
	return "checkout:pending:" + sessionID
}

func newPending(req order.SubmitRequest, s Summary) PendingPayment {
	p := PendingPayment{
		OrderCode: req.OrderCode,
		Items:     req.Items,
		Customer:  req.Customer,
		Address:   req.Address,
		Subtotal:  s.Subtotal,
		Shipping:  s.Shipping,
		Total:     s.Total,
	}
	if req.Logo != nil {
		p.Logo = &pendingLogo{Name: req.Logo.Name, ContentType: req.Logo.ContentType, Data: req.Logo.Data}
	}
	return p
}

// request rebuilds the order request with the stashed code.
func (p PendingPayment) request() order.SubmitRequest {
	total := p.Total
	req := order.SubmitRequest{
		OrderCode:     p.OrderCode,
		Items:         p.Items,
		Customer:      p.Customer,
		Address:       p.Address,
		PaymentMethod: order.MethodUPI,
		ClientTotal:   &total,
	}
	if p.Logo != nil {
		req.Logo = &order.Customization{
			Name: p.Logo.Name, ContentType: p.Logo.ContentType, Size: len(p.Logo.Data), Data: p.Logo.Data,
		}
	}
	return req
}

func savePending(ctx context.Context, kv Storage, sessionID string, p PendingPayment) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return kv.Set(ctx, pendingKey(sessionID), raw)
}

func loadPending(ctx context.Context, kv Storage, sessionID string) (PendingPayment, error) {
	raw, err := kv.Get(ctx, pendingKey(sessionID))
	if errors.Is(err, storage.ErrNotFound) {
		return PendingPayment{}, ErrNoPendingPayment
	}
	if err != nil {
		return PendingPayment{}, err
	}
	var p PendingPayment
	if err := json.Unmarshal(raw, &p); err != nil {
		return PendingPayment{}, fmt.Errorf("decode pending payment: %w", err)
	}
	return p, nil
}

// upiEscape query-escapes a link parameter. Spaces become %20, which UPI
// apps expect, and the @ of a VPA stays readable.
var upiEscape = strings.NewReplacer("+", "%20", "%40", "@")

// UPILink builds the upi://pay deep link a UPI app opens to collect amount.
func UPILink(vpa, merchant string, amount int, orderCode string) string {
	return "upi://pay?pa=" + upiEscape.Replace(url.QueryEscape(vpa)) +
		"&pn=" + upiEscape.Replace(url.QueryEscape(merchant)) +
		"&am=" + strconv.Itoa(amount) +
		"&cu=INR" +
		"&tn=" + upiEscape.Replace(url.QueryEscape("Order "+orderCode))
}

package order

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wichananm65/apparel-shop-backend/internal/address"
	"github.com/wichananm65/apparel-shop-backend/internal/notification"
)

// Status is the fulfilment state of an order.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// PaymentStatus is tracked independently of Status.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentVerified PaymentStatus = "verified"
	PaymentFailed   PaymentStatus = "failed"
)

type PaymentMethod string

const (
	MethodCOD PaymentMethod = "COD"
	MethodUPI PaymentMethod = "UPI"
)

// Valid reports whether m is a supported payment method.
func (m PaymentMethod) Valid() bool {
	return m == MethodCOD || m == MethodUPI
}

// InitialPaymentStatus is verified for cash on delivery and pending for UPI,
// which waits for a screenshot to be checked by hand.
func (m PaymentMethod) InitialPaymentStatus() PaymentStatus {
	if m == MethodCOD {
		return PaymentVerified
	}
	return PaymentPending
}

// Item is a line item snapshot. VariantID is 0 when the variant is not
// tracked by the catalog.
type Item struct {
	ProductID int    `json:"productId"`
	VariantID int    `json:"variantId,omitempty"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
	UnitPrice int    `json:"unitPrice"`
	LineTotal int    `json:"lineTotal"`
}

// Customization is the optional logo printed on the order.
type Customization struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Size        int    `json:"size"`
	Data        []byte `json:"-"`
}

type Order struct {
	ID            int64            `json:"-"`
	OrderCode     string           `json:"orderCode"`
	Customer      address.Customer `json:"customer"`
	Address       address.Address  `json:"address"`
	Items         []Item           `json:"items"`
	Logo          *Customization   `json:"logo,omitempty"`
	Subtotal      int              `json:"subtotal"`
	ShippingFee   int              `json:"shippingFee"`
	TotalAmount   int              `json:"totalAmount"`
	PaymentMethod PaymentMethod    `json:"paymentMethod"`
	PaymentStatus PaymentStatus    `json:"paymentStatus"`
	OrderStatus   Status           `json:"orderStatus"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

// Proof is a customer-uploaded UPI payment screenshot.
type Proof struct {
	ContentType string    `json:"contentType"`
	Data        []byte    `json:"-"`
	Note        string    `json:"note,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewCode returns an order code: "FP", the creation time in base36
// milliseconds, then twelve random hex characters. The code is the only key
// to the public order page, so the random part must not be guessable.
func NewCode() string {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return "FP" + strings.ToUpper(ts+random)
}

// Snapshot is the notification view of the order.
func (o Order) Snapshot() notification.Snapshot {
	items := make([]notification.SnapshotItem, len(o.Items))
	for i, it := range o.Items {
		items[i] = notification.SnapshotItem{
			Name:      it.Name,
			Color:     it.Color,
			Size:      it.Size,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			LineTotal: it.LineTotal,
		}
	}
	a := o.Address
	lines := []string{a.BuildingLine}
	if a.Landmark != "" {
		lines = append(lines, "Near "+a.Landmark)
	}
	lines = append(lines, a.City+", "+a.District, a.State+" "+a.Pincode)

	return notification.Snapshot{
		OrderCode:      o.OrderCode,
		CustomerName:   o.Customer.Name,
		CustomerEmail:  o.Customer.Email,
		CustomerMobile: o.Customer.Mobile,
		AddressLines:   lines,
		Items:          items,
		Subtotal:       o.Subtotal,
		ShippingFee:    o.ShippingFee,
		TotalAmount:    o.TotalAmount,
		PaymentMethod:  string(o.PaymentMethod),
		PaymentStatus:  string(o.PaymentStatus),
		HasLogo:        o.Logo != nil,
	}
}

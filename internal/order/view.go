package order

import (
	"strings"
	"time"
)

// PublicView is the order as the confirmation page shows it to anyone who
// holds the code. Contact details are masked and the address is cut down to
// city and state.
type PublicView struct {
	OrderCode     string        `json:"orderCode"`
	CustomerName  string        `json:"customerName"`
	Email         string        `json:"email"`
	Mobile        string        `json:"mobile"`
	City          string        `json:"city"`
	State         string        `json:"state"`
	Items         []Item        `json:"items"`
	HasLogo       bool          `json:"hasLogo"`
	Subtotal      int           `json:"subtotal"`
	ShippingFee   int           `json:"shippingFee"`
	TotalAmount   int           `json:"totalAmount"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	OrderStatus   Status        `json:"orderStatus"`
	CreatedAt     time.Time     `json:"createdAt"`
}

func (o Order) Public() PublicView {
	return PublicView{
		OrderCode:     o.OrderCode,
		CustomerName:  firstName(o.Customer.Name),
		Email:         maskEmail(o.Customer.Email),
		Mobile:        maskTail(o.Customer.Mobile, 4),
		City:          o.Address.City,
		State:         o.Address.State,
		Items:         o.Items,
		HasLogo:       o.Logo != nil,
		Subtotal:      o.Subtotal,
		ShippingFee:   o.ShippingFee,
		TotalAmount:   o.TotalAmount,
		PaymentMethod: o.PaymentMethod,
		PaymentStatus: o.PaymentStatus,
		OrderStatus:   o.OrderStatus,
		CreatedAt:     o.CreatedAt,
	}
}

func firstName(name string) string {
	if f := strings.Fields(name); len(f) > 0 {
		return f[0]
	}
	return ""
}

// maskEmail keeps the first character of the local part and the domain.
func maskEmail(email string) string {
	at := strings.LastIndexByte(email, '@')
	if at < 1 {
		return maskTail(email, 0)
	}
	return email[:1] + strings.Repeat("*", at-1) + email[at:]
}

// maskTail stars everything but the last keep characters.
func maskTail(s string, keep int) string {
	if len(s) <= keep {
		return strings.Repeat("*", len(s))
	}
	return strings.Repeat("*", len(s)-keep) + s[len(s)-keep:]
}

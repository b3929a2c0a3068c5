// Package notification sends order emails and builds WhatsApp hand-off links.
package notification

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// Snapshot is the view of an order a notifier needs.
type Snapshot struct {
	OrderCode      string
	CustomerName   string
	CustomerEmail  string
	CustomerMobile string
	AddressLines   []string
	Items          []SnapshotItem
	Subtotal       int
	ShippingFee    int
	TotalAmount    int
	PaymentMethod  string
	PaymentStatus  string
	HasLogo        bool
}

type SnapshotItem struct {
	Name      string
	Color     string
	Size      string
	Quantity  int
	UnitPrice int
	LineTotal int
}

// Notifier delivers order notifications. Callers treat failures as non-fatal.
type Notifier interface {
	CustomerConfirmation(ctx context.Context, s Snapshot) error
	AdminAlert(ctx context.Context, s Snapshot) error
}

// LogNotifier writes notifications to the logger instead of sending them.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogNotifier{log: log}
}

func (n *LogNotifier) CustomerConfirmation(_ context.Context, s Snapshot) error {
	n.log.Info("customer confirmation",
		zap.String("order", s.OrderCode),
		zap.String("to", s.CustomerEmail),
		zap.Int("total", s.TotalAmount),
	)
	return nil
}

func (n *LogNotifier) AdminAlert(_ context.Context, s Snapshot) error {
	n.log.Info("admin alert",
		zap.String("order", s.OrderCode),
		zap.String("payment", s.PaymentMethod),
		zap.Int("items", len(s.Items)),
		zap.Int("total", s.TotalAmount),
	)
	return nil
}

// WhatsAppLink returns a wa.me deep link that opens a chat with number and
// text prefilled. Non-digits are stripped from number.
func WhatsAppLink(number, text string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, number)
	link := "https://wa.me/" + digits
	if text == "" {
		return link
	}
	return link + "?text=" + url.QueryEscape(text)
}

// PaymentScreenshotMessage is the text a customer sends with their UPI
// payment screenshot.
func PaymentScreenshotMessage(orderCode string, total int) string {
	return fmt.Sprintf("Hi! I have paid Rs. %d for order %s. Sharing the payment screenshot for verification.", total, orderCode)
}

// OrderMessage is the text for a COD order follow-up chat.
func OrderMessage(orderCode string) string {
	return fmt.Sprintf("Hi! I just placed order %s and would like to confirm the details.", orderCode)
}

package notification

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"text/template"
)

// ErrNotificationFailed wraps every delivery failure.
var ErrNotificationFailed = errors.New("notification failed")

// SendFunc matches smtp.SendMail.
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPConfig is the mail relay configuration.
type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	From        string
	AdminNotify string
}

// SMTPNotifier sends plain-text emails through an SMTP relay.
type SMTPNotifier struct {
	cfg  SMTPConfig
	send SendFunc
}

func NewSMTPNotifier(cfg SMTPConfig) *SMTPNotifier {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &SMTPNotifier{cfg: cfg, send: smtp.SendMail}
}

// WithSender replaces the delivery function. Used by tests.
func (n *SMTPNotifier) WithSender(send SendFunc) *SMTPNotifier {
	n.send = send
	return n
}

var funcs = template.FuncMap{"join": strings.Join}

var customerTmpl = template.Must(template.New("customer").Funcs(funcs).Parse(
	`Hi {{.CustomerName}},

Thanks for your order {{.OrderCode}}!

{{range .Items}}- {{.Name}} ({{.Color}} / {{.Size}}) x{{.Quantity}} @ Rs. {{.UnitPrice}} = Rs. {{.LineTotal}}
{{end}}
Subtotal: Rs. {{.Subtotal}}
Shipping: Rs. {{.ShippingFee}}
Total:    Rs. {{.TotalAmount}}

Payment: {{.PaymentMethod}} ({{.PaymentStatus}})
{{if eq .PaymentMethod "UPI"}}Please share your payment screenshot on WhatsApp so we can verify it.
{{end}}
Delivering to:
{{join .AddressLines "\n"}}
`))

var adminTmpl = template.Must(template.New("admin").Funcs(funcs).Parse(
	`New order {{.OrderCode}}

Customer: {{.CustomerName}} <{{.CustomerEmail}}> {{.CustomerMobile}}
Payment:  {{.PaymentMethod}} ({{.PaymentStatus}})
Total:    Rs. {{.TotalAmount}}{{if .HasLogo}}
Custom logo attached.{{end}}

{{range .Items}}- {{.Name}} ({{.Color}} / {{.Size}}) x{{.Quantity}}
{{end}}
{{join .AddressLines "\n"}}
`))

func (n *SMTPNotifier) CustomerConfirmation(ctx context.Context, s Snapshot) error {
	if s.CustomerEmail == "" {
		return fmt.Errorf("%w: order %s has no customer email", ErrNotificationFailed, s.OrderCode)
	}
	return n.deliver(ctx, s.CustomerEmail, "Order confirmed: "+s.OrderCode, customerTmpl, s)
}

func (n *SMTPNotifier) AdminAlert(ctx context.Context, s Snapshot) error {
	if n.cfg.AdminNotify == "" {
		return nil
	}
	return n.deliver(ctx, n.cfg.AdminNotify, "New order "+s.OrderCode, adminTmpl, s)
}

func (n *SMTPNotifier) deliver(ctx context.Context, to, subject string, tmpl *template.Template, s Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var body bytes.Buffer
	if err := tmpl.Execute(&body, s); err != nil {
		return fmt.Errorf("notification: render %s: %w", tmpl.Name(), err)
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", n.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	msg.Write(body.Bytes())

	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}
	addr := net.JoinHostPort(n.cfg.Host, strconv.Itoa(n.cfg.Port))
	if err := n.send(addr, auth, n.cfg.From, []string{to}, msg.Bytes()); err != nil {
		return fmt.Errorf("%w: send to %s: %v", ErrNotificationFailed, to, err)
	}
	return nil
}

// Package enquiry records bulk-order requests from teams, schools and
// businesses that want more than the storefront cart handles.
package enquiry

import (
	"strings"
	"time"

	"github.com/wichananm65/apparel-shop-backend/internal/address"
)

type Enquiry struct {
	ID          int       `json:"enquiryId"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Mobile      string    `json:"mobile"`
	ProductType string    `json:"productType,omitempty"`
	Quantity    int       `json:"quantity"`
	Message     string    `json:"message,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (e Enquiry) normalize() Enquiry {
	e.Name = strings.TrimSpace(e.Name)
	e.Email = strings.TrimSpace(e.Email)
	e.Mobile = strings.TrimSpace(e.Mobile)
	e.ProductType = strings.TrimSpace(e.ProductType)
	e.Message = strings.TrimSpace(e.Message)
	return e
}

// Validate returns one message per invalid field, or nil.
func Validate(e Enquiry) address.ValidationErrors {
	e = e.normalize()
	errs := address.ValidationErrors{}
	if e.Name == "" {
		errs["name"] = "name is required"
	}
	if !address.ValidEmail(e.Email) {
		errs["email"] = "enter a valid email address"
	}
	if !address.ValidMobile(e.Mobile) {
		errs["mobile"] = "mobile number must be 10 digits"
	}
	if e.Quantity < 1 {
		errs["quantity"] = "quantity must be at least 1"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

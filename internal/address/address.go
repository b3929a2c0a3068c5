package address

import (
	"regexp"
	"strings"
)

// Type is the kind of delivery address.
type Type string

const (
	TypeHome Type = "home"
	TypeWork Type = "work"
)

// Address is a delivery address. State, District and City are usually
// derived from the pincode via a postal lookup.
type Address struct {
	Pincode      string `json:"pincode"`
	State        string `json:"state"`
	District     string `json:"district"`
	City         string `json:"city"`
	BuildingLine string `json:"buildingLine"`
	Landmark     string `json:"landmark,omitempty"`
	Type         Type   `json:"type"`
}

// Customer is the contact part of a checkout.
type Customer struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Mobile string `json:"mobile"`
}

// ValidationErrors maps a field key to one human-readable message.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for k, msg := range v {
		parts = append(parts, k+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

var (
	emailPattern   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	mobilePattern  = regexp.MustCompile(`^[0-9]{10}$`)
	pincodePattern = regexp.MustCompile(`^[0-9]{6}$`)
)

// ValidEmail reports whether s has a local@domain.tld shape.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(strings.TrimSpace(s))
}

// ValidMobile reports whether s is exactly ten digits.
func ValidMobile(s string) bool {
	return mobilePattern.MatchString(strings.TrimSpace(s))
}

// ValidPincode reports whether s is exactly six digits.
func ValidPincode(s string) bool {
	return pincodePattern.MatchString(strings.TrimSpace(s))
}

// Normalize trims every field and defaults Type to home.
func (a Address) Normalize() Address {
	a.Pincode = strings.TrimSpace(a.Pincode)
	a.State = strings.TrimSpace(a.State)
	a.District = strings.TrimSpace(a.District)
	a.City = strings.TrimSpace(a.City)
	a.BuildingLine = strings.TrimSpace(a.BuildingLine)
	a.Landmark = strings.TrimSpace(a.Landmark)
	if a.Type == "" {
		a.Type = TypeHome
	}
	return a
}

func (c Customer) Normalize() Customer {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Mobile = strings.TrimSpace(c.Mobile)
	return c
}

// Validate checks the customer and address fields needed before payment
// selection. It returns nil when everything is valid.
func Validate(c Customer, a Address) ValidationErrors {
	c = c.Normalize()
	a = a.Normalize()
	errs := ValidationErrors{}

	if c.Name == "" {
		errs["name"] = "name is required"
	}
	switch {
	case c.Email == "":
		errs["email"] = "email is required"
	case !ValidEmail(c.Email):
		errs["email"] = "enter a valid email address"
	}
	switch {
	case c.Mobile == "":
		errs["mobile"] = "mobile number is required"
	case !ValidMobile(c.Mobile):
		errs["mobile"] = "mobile number must be 10 digits"
	}
	switch {
	case a.Pincode == "":
		errs["pincode"] = "pincode is required"
	case !ValidPincode(a.Pincode):
		errs["pincode"] = "pincode must be 6 digits"
	}
	if a.State == "" {
		errs["state"] = "state is required"
	}
	if a.District == "" {
		errs["district"] = "district is required"
	}
	if a.City == "" {
		errs["city"] = "city/area is required"
	}
	if a.BuildingLine == "" {
		errs["buildingLine"] = "house/building is required"
	}
	if a.Type != TypeHome && a.Type != TypeWork {
		errs["type"] = "address type must be home or work"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

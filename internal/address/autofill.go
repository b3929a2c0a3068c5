package address

import (
	"context"
	"errors"
	"strings"
)

// ErrLookupUnavailable is returned by a Lookup when the postal service could
// not be reached or answered with something unusable.
var ErrLookupUnavailable = errors.New("postal lookup unavailable")

// ErrUnknownLocality is returned by SelectLocality for names not on offer.
var ErrUnknownLocality = errors.New("locality is not one of the lookup candidates")

// Locality is one candidate returned by a postal lookup.
type Locality struct {
	Name     string `json:"name"`
	District string `json:"district"`
	State    string `json:"state"`
}

// Lookup resolves a six-digit pincode into candidate localities.
type Lookup interface {
	Lookup(ctx context.Context, pincode string) ([]Locality, error)
}

// Status is the outcome of the last pincode lookup.
type Status string

const (
	StatusIdle   Status = "idle"
	StatusFilled Status = "filled"
	StatusChoose Status = "choose"
	StatusFailed Status = "failed"
)

// Autofill tracks what the postal lookup derived for the current pincode.
// When Locked is set, state, district and city came from a single trusted
// candidate and must not be edited by hand.
type Autofill struct {
	Status     Status     `json:"status"`
	Localities []string   `json:"localities,omitempty"`
	Locked     bool       `json:"locked"`
	Candidates []Locality `json:"candidates,omitempty"`
}

// NewAutofill returns an idle autofill state.
func NewAutofill() Autofill {
	return Autofill{Status: StatusIdle}
}

// ApplyPincode sets addr.Pincode and re-derives state, district and city.
// Previously derived values are always cleared. An incomplete pincode stops
// there without calling lookup. A lookup error or zero candidates marks the
// state failed and leaves the fields empty for manual entry.
func (f *Autofill) ApplyPincode(ctx context.Context, lookup Lookup, addr *Address, pincode string) {
	pincode = strings.TrimSpace(pincode)
	addr.Pincode = pincode
	addr.State, addr.District, addr.City = "", "", ""
	*f = NewAutofill()

	if !ValidPincode(pincode) || lookup == nil {
		return
	}

	found, err := lookup.Lookup(ctx, pincode)
	if err != nil || len(found) == 0 {
		f.Status = StatusFailed
		return
	}

	addr.State = found[0].State
	addr.District = found[0].District
	if len(found) == 1 {
		addr.City = found[0].Name
		f.Status = StatusFilled
		f.Locked = true
		f.Candidates = found
		return
	}

	f.Status = StatusChoose
	f.Candidates = found
	seen := make(map[string]bool, len(found))
	for _, l := range found {
		if l.Name == "" || seen[l.Name] {
			continue
		}
		seen[l.Name] = true
		f.Localities = append(f.Localities, l.Name)
	}
}

// SelectLocality fills addr.City with one of the offered localities.
func (f *Autofill) SelectLocality(addr *Address, name string) error {
	if f.Status != StatusChoose {
		return ErrUnknownLocality
	}
	name = strings.TrimSpace(name)
	for _, l := range f.Candidates {
		if strings.EqualFold(l.Name, name) {
			addr.City = l.Name
			addr.State = l.State
			addr.District = l.District
			return nil
		}
	}
	return ErrUnknownLocality
}

// Protect copies the derived fields of trusted over next while they belong
// to the lookup: a locked result, or candidates still awaiting a choice. In
// the latter case city only changes through SelectLocality.
func (f Autofill) Protect(trusted Address, next Address) Address {
	if !f.Locked && f.Status != StatusChoose {
		return next
	}
	next.State = trusted.State
	next.District = trusted.District
	next.City = trusted.City
	return next
}

package address

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCustomer() Customer {
	return Customer{Name: "Priya", Email: "priya@example.in", Mobile: "9876543210"}
}

func validAddress() Address {
	return Address{Pincode: "600001", State: "Tamil Nadu", District: "Chennai", City: "Parrys", BuildingLine: "12 Anna Salai"}
}

func TestValidate_Accepts(t *testing.T) {
	assert.Nil(t, Validate(validCustomer(), validAddress()))
}

func TestValidate_FieldRules(t *testing.T) {
	cases := []struct {
		name  string
		mut   func(*Customer, *Address)
		field string
	}{
		{"empty name", func(c *Customer, _ *Address) { c.Name = "  " }, "name"},
		{"bad email", func(c *Customer, _ *Address) { c.Email = "not-an-email" }, "email"},
		{"empty email", func(c *Customer, _ *Address) { c.Email = "" }, "email"},
		{"short mobile", func(c *Customer, _ *Address) { c.Mobile = "98765" }, "mobile"},
		{"letters in mobile", func(c *Customer, _ *Address) { c.Mobile = "98765abcde" }, "mobile"},
		{"five digit pincode", func(_ *Customer, a *Address) { a.Pincode = "12345" }, "pincode"},
		{"no state", func(_ *Customer, a *Address) { a.State = "" }, "state"},
		{"no district", func(_ *Customer, a *Address) { a.District = "" }, "district"},
		{"no city", func(_ *Customer, a *Address) { a.City = "" }, "city"},
		{"no building", func(_ *Customer, a *Address) { a.BuildingLine = "" }, "buildingLine"},
		{"odd type", func(_ *Customer, a *Address) { a.Type = "office" }, "type"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, a := validCustomer(), validAddress()
			tc.mut(&c, &a)
			errs := Validate(c, a)
			require.Len(t, errs, 1)
			assert.Contains(t, errs, tc.field)
		})
	}
}

func TestValidate_OneMessagePerField(t *testing.T) {
	errs := Validate(Customer{}, Address{})
	for _, k := range []string{"name", "email", "mobile", "pincode", "state", "district", "city", "buildingLine"} {
		assert.Contains(t, errs, k)
	}
	assert.NotContains(t, errs, "type", "empty type defaults to home")
}

func TestValidEmail(t *testing.T) {
	assert.True(t, ValidEmail("a@b.co"))
	assert.False(t, ValidEmail("not-an-email"))
	assert.False(t, ValidEmail("a@b"))
}

type fakeLookup struct {
	result []Locality
	err    error
	calls  int
}

func (f *fakeLookup) Lookup(context.Context, string) ([]Locality, error) {
	f.calls++
	return f.result, f.err
}

func TestApplyPincode_SingleCandidateLocks(t *testing.T) {
	lk := &fakeLookup{result: []Locality{{Name: "Parrys", District: "Chennai", State: "Tamil Nadu"}}}
	f := NewAutofill()
	var a Address

	f.ApplyPincode(context.Background(), lk, &a, "600001")

	assert.Equal(t, StatusFilled, f.Status)
	assert.True(t, f.Locked)
	assert.Equal(t, "Tamil Nadu", a.State)
	assert.Equal(t, "Chennai", a.District)
	assert.Equal(t, "Parrys", a.City)

	edited := f.Protect(a, Address{Pincode: "600001", State: "Kerala", City: "Elsewhere", BuildingLine: "1"})
	assert.Equal(t, "Tamil Nadu", edited.State)
	assert.Equal(t, "Parrys", edited.City)
	assert.Equal(t, "1", edited.BuildingLine)
}

func TestApplyPincode_ManyCandidatesLeaveCityUnset(t *testing.T) {
	lk := &fakeLookup{result: []Locality{
		{Name: "Mylapore", District: "Chennai", State: "Tamil Nadu"},
		{Name: "Mandaveli", District: "Chennai", State: "Tamil Nadu"},
		{Name: "Raja Annamalaipuram", District: "Chennai", State: "Tamil Nadu"},
	}}
	f := NewAutofill()
	var a Address

	f.ApplyPincode(context.Background(), lk, &a, "600028")

	assert.Equal(t, StatusChoose, f.Status)
	assert.False(t, f.Locked)
	assert.Equal(t, "Tamil Nadu", a.State)
	assert.Equal(t, "Chennai", a.District)
	assert.Empty(t, a.City)
	assert.Equal(t, []string{"Mylapore", "Mandaveli", "Raja Annamalaipuram"}, f.Localities)

	edited := f.Protect(a, Address{Pincode: "600028", State: "Kerala", District: "Ernakulam", City: "Kochi"})
	assert.Equal(t, "Tamil Nadu", edited.State)
	assert.Equal(t, "Chennai", edited.District)
	assert.Empty(t, edited.City, "city is chosen from the candidates, not typed")

	require.ErrorIs(t, f.SelectLocality(&a, "Adyar"), ErrUnknownLocality)
	assert.Empty(t, a.City)

	require.NoError(t, f.SelectLocality(&a, "mandaveli"))
	assert.Equal(t, "Mandaveli", a.City)
}

func TestApplyPincode_FailureDegradesToManual(t *testing.T) {
	for name, lk := range map[string]*fakeLookup{
		"error": {err: ErrLookupUnavailable},
		"empty": {},
	} {
		t.Run(name, func(t *testing.T) {
			f := NewAutofill()
			a := Address{State: "stale", District: "stale", City: "stale"}
			f.ApplyPincode(context.Background(), lk, &a, "110001")

			assert.Equal(t, StatusFailed, f.Status)
			assert.False(t, f.Locked)
			assert.Empty(t, a.State)
			assert.Empty(t, a.City)
		})
	}
}

func TestApplyPincode_IncompleteClearsWithoutLookup(t *testing.T) {
	lk := &fakeLookup{result: []Locality{{Name: "Parrys", District: "Chennai", State: "Tamil Nadu"}}}
	f := NewAutofill()
	var a Address
	f.ApplyPincode(context.Background(), lk, &a, "600001")
	require.Equal(t, 1, lk.calls)

	f.ApplyPincode(context.Background(), lk, &a, "6000")

	assert.Equal(t, 1, lk.calls)
	assert.Equal(t, StatusIdle, f.Status)
	assert.False(t, f.Locked)
	assert.Equal(t, "6000", a.Pincode)
	assert.Empty(t, a.State)
	assert.Empty(t, a.District)
	assert.Empty(t, a.City)
}

func TestValidationErrors_Error(t *testing.T) {
	var err error = ValidationErrors{"pincode": "pincode must be 6 digits"}
	var ve ValidationErrors
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, err.Error(), "pincode")
}

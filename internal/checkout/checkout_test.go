package checkout

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wichananm65/apparel-shop-backend/internal/address"
	"github.com/wichananm65/apparel-shop-backend/internal/cart"
	"github.com/wichananm65/apparel-shop-backend/internal/order"
	"github.com/wichananm65/apparel-shop-backend/internal/upload"
)

type fakeLookup struct {
	byPin map[string][]address.Locality
	err   error
	calls int
}

func (f *fakeLookup) Lookup(_ context.Context, pin string) ([]address.Locality, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.byPin[pin], nil
}

func chennai() *fakeLookup {
	return &fakeLookup{byPin: map[string][]address.Locality{
		"600001": {{Name: "Parrys", District: "Chennai", State: "Tamil Nadu"}},
		"600028": {
			{Name: "R A Puram", District: "Chennai", State: "Tamil Nadu"},
			{Name: "Mandaveli", District: "Chennai", State: "Tamil Nadu"},
			{Name: "Raja Annamalaipuram", District: "Chennai", State: "Tamil Nadu"},
		},
	}}
}

func fillValid(t *testing.T, c *Controller, lookup address.Lookup) {
	t.Helper()
	c.SetCustomer(address.Customer{Name: "Priya", Email: "priya@example.in", Mobile: "9876543210"})
	c.SetPincode(context.Background(), lookup, "600001")
	c.SetAddress(address.Address{BuildingLine: "12 Anna Salai"})
}

func TestNext_BlocksOnValidation(t *testing.T) {
	lookup := chennai()
	c := NewController()
	c.SetCustomer(address.Customer{Name: "Priya", Email: "not-an-email", Mobile: "98765"})
	before := lookup.calls

	err := c.Next()
	var ves address.ValidationErrors
	require.True(t, errors.As(err, &ves))
	assert.Contains(t, ves, "email")
	assert.Contains(t, ves, "mobile")
	assert.Contains(t, ves, "pincode")
	assert.Equal(t, StepAddressEntry, c.Step())
	assert.Equal(t, before, lookup.calls, "validation must not call the lookup")
}

func TestNext_AdvancesAndBackKeepsData(t *testing.T) {
	c := NewController()
	fillValid(t, c, chennai())

	require.NoError(t, c.Next())
	assert.Equal(t, StepPaymentSelection, c.Step())

	c.Back()
	assert.Equal(t, StepAddressEntry, c.Step())
	assert.Equal(t, "Priya", c.Draft().Customer.Name)
	assert.Equal(t, "Parrys", c.Draft().Address.City)
	assert.Equal(t, "12 Anna Salai", c.Draft().Address.BuildingLine)
}

func TestSetAddress_LockedFieldsKeepLookupValues(t *testing.T) {
	c := NewController()
	c.SetPincode(context.Background(), chennai(), "600001")
	require.True(t, c.Autofill().Locked)

	c.SetAddress(address.Address{State: "Kerala", District: "Ernakulam", City: "Kochi", BuildingLine: "1 Main Rd", Pincode: "999999"})
	a := c.Draft().Address
	assert.Equal(t, "Tamil Nadu", a.State)
	assert.Equal(t, "Chennai", a.District)
	assert.Equal(t, "Parrys", a.City)
	assert.Equal(t, "1 Main Rd", a.BuildingLine)
	assert.Equal(t, "600001", a.Pincode, "pincode only changes through SetPincode")
}

func TestSetPincode_ManyCandidatesThenSelect(t *testing.T) {
	c := NewController()
	af := c.SetPincode(context.Background(), chennai(), "600028")
	assert.Equal(t, address.StatusChoose, af.Status)
	assert.Len(t, af.Localities, 3)
	assert.Equal(t, "Tamil Nadu", c.Draft().Address.State)
	assert.Empty(t, c.Draft().Address.City)

	assert.ErrorIs(t, c.SelectLocality("Adyar"), address.ErrUnknownLocality)
	require.NoError(t, c.SelectLocality("mandaveli"))
	assert.Equal(t, "Mandaveli", c.Draft().Address.City)
}

func TestSetPincode_FailureLeavesFieldsEditable(t *testing.T) {
	c := NewController()
	af := c.SetPincode(context.Background(), &fakeLookup{err: address.ErrLookupUnavailable}, "600001")
	assert.Equal(t, address.StatusFailed, af.Status)
	assert.False(t, af.Locked)

	c.SetAddress(address.Address{State: "Tamil Nadu", District: "Chennai", City: "Parrys", BuildingLine: "12"})
	assert.Equal(t, "Parrys", c.Draft().Address.City)
}

func TestSetPincode_IncompleteClearsDerived(t *testing.T) {
	lookup := chennai()
	c := NewController()
	c.SetPincode(context.Background(), lookup, "600001")
	calls := lookup.calls

	af := c.SetPincode(context.Background(), lookup, "6000")
	assert.Equal(t, address.StatusIdle, af.Status)
	assert.Empty(t, c.Draft().Address.State)
	assert.Empty(t, c.Draft().Address.City)
	assert.Equal(t, calls, lookup.calls)
}

func TestAttachLogo(t *testing.T) {
	c := NewController()

	err := c.AttachLogo(upload.Image{Name: "brief.pdf", ContentType: "application/pdf", Data: []byte("%PDF")})
	var ves address.ValidationErrors
	require.True(t, errors.As(err, &ves))
	assert.Contains(t, ves, "logo")

	big := make([]byte, upload.MaxImageBytes+1)
	assert.Error(t, c.AttachLogo(upload.Image{Name: "huge.png", ContentType: "image/png", Data: big}))
	assert.Nil(t, c.Draft().Logo)

	require.NoError(t, c.AttachLogo(upload.Image{Name: "logo.png", ContentType: "image/png", Data: []byte("\x89PNG")}))
	require.NotNil(t, c.Draft().Logo)
	c.RemoveLogo()
	assert.Nil(t, c.Draft().Logo)
}

func TestSetPaymentMethod_OnlyAtPaymentStep(t *testing.T) {
	c := NewController()
	assert.ErrorIs(t, c.SetPaymentMethod(order.MethodCOD), ErrWrongStep)

	fillValid(t, c, chennai())
	require.NoError(t, c.Next())
	assert.Error(t, c.SetPaymentMethod("CARD"))
	require.NoError(t, c.SetPaymentMethod("upi"))
	assert.Equal(t, order.MethodUPI, c.Draft().PaymentMethod)
}

func TestSummary_UsesDestinationState(t *testing.T) {
	c := NewController()
	fillValid(t, c, chennai())
	items := []cart.Item{{ProductID: 1, UnitPrice: 450, Quantity: 2}}

	assert.Equal(t, Summary{Subtotal: 900, Shipping: 60, Total: 960}, c.Summary(items))

	items = append(items, cart.Item{ProductID: 2, UnitPrice: 100, Quantity: 1})
	assert.Equal(t, Summary{Subtotal: 1000, Shipping: 0, Total: 1000}, c.Summary(items))

	assert.Equal(t, Summary{}, c.Summary(nil), "no shipping without items")
}

func TestUPILink(t *testing.T) {
	assert.Equal(t,
		"upi://pay?pa=shop@okaxis&pn=Fab%20Prints&am=960&cu=INR&tn=Order%20FP1",
		UPILink("shop@okaxis", "Fab Prints", 960, "FP1"))

	link, err := url.Parse(UPILink("shop@okaxis", "Fun & Prints", 510, "FP1"))
	require.NoError(t, err)
	q := link.Query()
	assert.Equal(t, "Fun & Prints", q.Get("pn"))
	assert.Equal(t, "510", q.Get("am"))
	assert.Equal(t, "INR", q.Get("cu"))
	assert.Equal(t, "Order FP1", q.Get("tn"))
}

func TestSetAddress_CityWaitsForLocalityChoice(t *testing.T) {
	c := NewController()
	c.SetPincode(context.Background(), chennai(), "600028")
	require.Equal(t, address.StatusChoose, c.Autofill().Status)

	c.SetAddress(address.Address{State: "Kerala", District: "Ernakulam", City: "Kochi", BuildingLine: "4 Beach Rd"})
	a := c.Draft().Address
	assert.Equal(t, "Tamil Nadu", a.State)
	assert.Equal(t, "Chennai", a.District)
	assert.Empty(t, a.City)
	assert.Equal(t, "4 Beach Rd", a.BuildingLine)

	require.NoError(t, c.SelectLocality("Mandaveli"))
	c.SetAddress(address.Address{City: "Kochi", BuildingLine: "4 Beach Rd"})
	assert.Equal(t, "Mandaveli", c.Draft().Address.City)
}

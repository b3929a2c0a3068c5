package checkout_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/cucumber/godog"
	"github.com/wichananm65/apparel-shop-backend/internal/address"
	"github.com/wichananm65/apparel-shop-backend/internal/cart"
	"github.com/wichananm65/apparel-shop-backend/internal/checkout"
	"github.com/wichananm65/apparel-shop-backend/internal/order"
	"github.com/wichananm65/apparel-shop-backend/internal/product"
	"github.com/wichananm65/apparel-shop-backend/internal/shipping"
	"github.com/wichananm65/apparel-shop-backend/internal/storage"
)

const featureSession = "feature-session"

type staticLookup map[string][]address.Locality

func (l staticLookup) Lookup(_ context.Context, pin string) ([]address.Locality, error) {
	return l[pin], nil
}

type checkoutTestContext struct {
	ctx      context.Context
	carts    *cart.Service
	orders   *order.Service
	checkout *checkout.Service

	stepErr   error
	submitErr error
	statusErr error
	orderCode string
}

func (c *checkoutTestContext) reset() {
	kv := storage.NewMemoryStore()
	catalog := product.NewInMemoryRepository([]product.Product{
		{ID: 1, Name: "Crew Tee", Price: 450, IsActive: true, Variants: []product.Variant{
			{ID: 10, Color: "Black", Size: "M", Stock: 5},
			{ID: 11, Color: "Black", Size: "L", Stock: 5},
		}},
	})
	lookup := staticLookup{"600001": {{Name: "Parrys", District: "Chennai", State: "Tamil Nadu"}}}

	c.ctx = context.Background()
	c.carts = cart.NewService(kv, product.NewService(catalog))
	c.orders = order.NewService(order.NewInMemoryRepository(catalog, nil), nil, nil)
	c.checkout = checkout.NewService(nil, c.carts, c.orders, kv, lookup,
		checkout.Merchant{Name: "Fab Prints", UPIID: "shop@okaxis", WhatsApp: "919876543210"}, nil)
	c.stepErr, c.submitErr, c.statusErr = nil, nil, nil
	c.orderCode = ""
}

func (c *checkoutTestContext) anEmptyCart() error {
	return c.carts.ClearCart(c.ctx, featureSession)
}

func (c *checkoutTestContext) iAdd(qty, productID int, name, color, size string, price int) error {
	_, err := c.carts.AddToCart(c.ctx, featureSession, cart.Item{
		ProductID: productID, Name: name, Color: color, Size: size, Quantity: qty, UnitPrice: price,
	})
	return err
}

func (c *checkoutTestContext) theCartHasLines(n int) error {
	st, err := c.carts.GetCart(c.ctx, featureSession)
	if err != nil {
		return err
	}
	if got := len(st.Items()); got != n {
		return fmt.Errorf("expected %d cart lines, got %d", n, got)
	}
	return nil
}

func (c *checkoutTestContext) theCartTotalIs(total int) error {
	st, err := c.carts.GetCart(c.ctx, featureSession)
	if err != nil {
		return err
	}
	if st.TotalPrice() != total {
		return fmt.Errorf("expected cart total %d, got %d", total, st.TotalPrice())
	}
	return nil
}

func (c *checkoutTestContext) theCartIsEmpty() error {
	return c.theCartHasLines(0)
}

func (c *checkoutTestContext) shippingIs(subtotal int, state string, fee int) error {
	if got := shipping.Fee(subtotal, state); got != fee {
		return fmt.Errorf("expected fee %d for %d to %q, got %d", fee, subtotal, state, got)
	}
	return nil
}

func (c *checkoutTestContext) customerWith(name, email, mobile string) error {
	_, err := c.checkout.SetCustomer(c.ctx, featureSession, address.Customer{Name: name, Email: email, Mobile: mobile})
	return err
}

func (c *checkoutTestContext) aValidDeliveryAddress(pincode string) error {
	if err := c.customerWith("Priya", "priya@example.in", "9876543210"); err != nil {
		return err
	}
	if _, err := c.checkout.SetPincode(c.ctx, featureSession, pincode); err != nil {
		return err
	}
	_, err := c.checkout.SetAddress(c.ctx, featureSession, address.Address{BuildingLine: "12 Anna Salai"})
	return err
}

func (c *checkoutTestContext) iContinueToPayment() error {
	_, c.stepErr = c.checkout.Next(c.ctx, featureSession)
	return nil
}

func (c *checkoutTestContext) checkoutStaysAt(step string) error {
	st, err := c.checkout.State(c.ctx, featureSession)
	if err != nil {
		return err
	}
	if string(st.Step) != step {
		return fmt.Errorf("expected step %s, got %s", step, st.Step)
	}
	return nil
}

func (c *checkoutTestContext) fieldIsReportedInvalid(field string) error {
	var ves address.ValidationErrors
	if !errors.As(c.stepErr, &ves) {
		return fmt.Errorf("expected validation errors, got %v", c.stepErr)
	}
	if _, ok := ves[field]; !ok {
		return fmt.Errorf("expected %q to be reported, got %v", field, ves)
	}
	return nil
}

func (c *checkoutTestContext) iPayWith(method string) error {
	_, err := c.checkout.SetPaymentMethod(c.ctx, featureSession, order.PaymentMethod(method))
	return err
}

func (c *checkoutTestContext) iSubmitTheOrder() error {
	res, err := c.checkout.Submit(c.ctx, featureSession)
	c.submitErr = err
	if err == nil {
		c.orderCode = res.OrderCode
	}
	return nil
}

func (c *checkoutTestContext) iConfirmTheUPIPayment() error {
	res, err := c.checkout.ConfirmUPI(c.ctx, featureSession)
	if err != nil {
		return err
	}
	if res.OrderCode != c.orderCode {
		return fmt.Errorf("confirmed code %s differs from stashed %s", res.OrderCode, c.orderCode)
	}
	return nil
}

func (c *checkoutTestContext) placedOrder() (order.Order, error) {
	if c.submitErr != nil {
		return order.Order{}, c.submitErr
	}
	return c.orders.Get(c.ctx, c.orderCode)
}

func (c *checkoutTestContext) theOrderPaymentStatusIs(status string) error {
	o, err := c.placedOrder()
	if err != nil {
		return err
	}
	if string(o.PaymentStatus) != status {
		return fmt.Errorf("expected payment status %s, got %s", status, o.PaymentStatus)
	}
	return nil
}

func (c *checkoutTestContext) theOrderStatusIs(status string) error {
	o, err := c.placedOrder()
	if err != nil {
		return err
	}
	if string(o.OrderStatus) != status {
		return fmt.Errorf("expected order status %s, got %s", status, o.OrderStatus)
	}
	return nil
}

func (c *checkoutTestContext) theOrderTotalIs(total int) error {
	o, err := c.placedOrder()
	if err != nil {
		return err
	}
	if o.TotalAmount != total {
		return fmt.Errorf("expected total %d, got %d", total, o.TotalAmount)
	}
	return nil
}

func (c *checkoutTestContext) theSubmissionIsRejectedForStock() error {
	if !errors.Is(c.submitErr, order.ErrInsufficientStock) {
		return fmt.Errorf("expected insufficient stock, got %v", c.submitErr)
	}
	return nil
}

func (c *checkoutTestContext) aPlacedOrder(method string) error {
	steps := []func() error{
		func() error { return c.iAdd(1, 1, "Crew Tee", "Black", "M", 450) },
		func() error { return c.aValidDeliveryAddress("600001") },
		c.iContinueToPayment,
		func() error { return c.iPayWith(method) },
		c.iSubmitTheOrder,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return c.submitErr
}

func (c *checkoutTestContext) theAdminMovesTheOrderTo(status string) error {
	_, c.statusErr = c.orders.SetStatus(c.ctx, c.orderCode, order.StatusUpdate{OrderStatus: order.Status(status)})
	return nil
}

func (c *checkoutTestContext) theAdminForcesTheOrderTo(status string) error {
	_, err := c.orders.SetStatus(c.ctx, c.orderCode, order.StatusUpdate{OrderStatus: order.Status(status), Force: true})
	return err
}

func (c *checkoutTestContext) theLastStatusChangeIsRejected() error {
	if !errors.Is(c.statusErr, order.ErrIllegalTransition) {
		return fmt.Errorf("expected illegal transition, got %v", c.statusErr)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &checkoutTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^an empty cart$`, tc.anEmptyCart)
	ctx.Step(`^customer "([^"]*)" with email "([^"]*)" and mobile "([^"]*)"$`, tc.customerWith)
	ctx.Step(`^a valid delivery address for pincode "([^"]*)"$`, tc.aValidDeliveryAddress)
	ctx.Step(`^a placed "([^"]*)" order$`, tc.aPlacedOrder)

	// When steps
	ctx.Step(`^I add (\d+) of product (\d+) "([^"]*)" in "([^"]*)" size "([^"]*)" at (\d+)$`, tc.iAdd)
	ctx.Step(`^I continue to payment$`, tc.iContinueToPayment)
	ctx.Step(`^I pay with "([^"]*)"$`, tc.iPayWith)
	ctx.Step(`^I submit the order$`, tc.iSubmitTheOrder)
	ctx.Step(`^I confirm the UPI payment$`, tc.iConfirmTheUPIPayment)
	ctx.Step(`^the admin moves the order to "([^"]*)"$`, tc.theAdminMovesTheOrderTo)
	ctx.Step(`^the admin forces the order to "([^"]*)"$`, tc.theAdminForcesTheOrderTo)

	// Then steps
	ctx.Step(`^the cart has (\d+) lines?$`, tc.theCartHasLines)
	ctx.Step(`^the cart total is (\d+)$`, tc.theCartTotalIs)
	ctx.Step(`^the cart is empty$`, tc.theCartIsEmpty)
	ctx.Step(`^shipping for subtotal (\d+) to "([^"]*)" is (\d+)$`, tc.shippingIs)
	ctx.Step(`^checkout stays at "([^"]*)"$`, tc.checkoutStaysAt)
	ctx.Step(`^field "([^"]*)" is reported invalid$`, tc.fieldIsReportedInvalid)
	ctx.Step(`^the order payment status is "([^"]*)"$`, tc.theOrderPaymentStatusIs)
	ctx.Step(`^the order status is "([^"]*)"$`, tc.theOrderStatusIs)
	ctx.Step(`^the order total is (\d+)$`, tc.theOrderTotalIs)
	ctx.Step(`^the submission is rejected for stock$`, tc.theSubmissionIsRejectedForStock)
	ctx.Step(`^the last status change is rejected$`, tc.theLastStatusChangeIsRejected)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"../../features/checkout.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}

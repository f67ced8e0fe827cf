package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/cucumber/godog"

	"github.com/junaidrashid-git/canteen-api/apperror"
	"github.com/junaidrashid-git/canteen-api/auth"
	"github.com/junaidrashid-git/canteen-api/cart"
	"github.com/junaidrashid-git/canteen-api/models"
	"github.com/junaidrashid-git/canteen-api/money"
)

type lifecycleTestContext struct {
	f       *fixture
	byName  map[string]string
	orderID string
	err     error
}

func (c *lifecycleTestContext) reset() {
	c.f = newFixture()
	c.f.catalog = memCatalog{}
	c.rebuild(cart.DefaultTaxRateBps)
	c.byName = map[string]string{}
	c.orderID = ""
	c.err = nil
}

func (c *lifecycleTestContext) rebuild(taxBps int64) {
	c.f.svc = NewService(c.f.repo, c.f.carts, c.f.catalog, c.f.pub, nil, Config{
		TaxRateBps:        taxBps,
		RequestTimeout:    c.f.svc.cfg.RequestTimeout,
		CartClearAttempts: c.f.svc.cfg.CartClearAttempts,
		ClearRetryDelay:   c.f.svc.cfg.ClearRetryDelay,
	})
}

func (c *lifecycleTestContext) theMenuHas(nameA, priceA, nameB, priceB string) error {
	for i, p := range [][2]string{{nameA, priceA}, {nameB, priceB}} {
		price, err := money.Parse(p[1])
		if err != nil {
			return err
		}
		id := fmt.Sprintf("item-%d", i)
		c.f.catalog[id] = models.MenuItem{ID: id, Name: p[0], Price: price, Available: true}
		c.byName[p[0]] = id
	}
	return nil
}

func (c *lifecycleTestContext) aTaxRateOf(bps int) error {
	c.rebuild(int64(bps))
	return nil
}

func (c *lifecycleTestContext) customerHasInTheCart(user string, qtyA int, nameA string, qtyB int, nameB string) error {
	var lines []models.CartLine
	for _, l := range []struct {
		qty  int
		name string
	}{{qtyA, nameA}, {qtyB, nameB}} {
		item, ok := c.f.catalog[c.byName[l.name]]
		if !ok {
			return fmt.Errorf("unknown menu item %q", l.name)
		}
		lines = append(lines, models.CartLine{MenuItemID: item.ID, Name: item.Name, UnitPrice: item.Price, Quantity: l.qty})
	}
	c.f.carts.put(user, lines...)
	return nil
}

func (c *lifecycleTestContext) customerChecksOut(user string, split int, token string) error {
	id := auth.Identity{ID: user, Role: auth.RoleCustomer}
	res, err := c.f.svc.Checkout(context.Background(), id, CheckoutRequest{SplitCount: int64(split), Token: token})
	c.err = err
	if err == nil {
		c.orderID = res.Order.ID
	}
	return nil
}

func (c *lifecycleTestContext) aPlacedOrderFor(user string) error {
	id := auth.Identity{ID: user, Role: auth.RoleCustomer}
	o, err := c.f.svc.CreateOrder(context.Background(), id, cart.Snapshot{Lines: twoLineCart()}, cart.SplitSpec{SplitCount: 1}, nil)
	if err != nil {
		return err
	}
	c.orderID = o.ID
	return nil
}

func (c *lifecycleTestContext) staffMovesTheOrderTo(target string) error {
	_, c.err = c.f.svc.AdvanceOrderStatus(context.Background(), c.orderID, models.OrderStatus(target), staff)
	return nil
}

func (c *lifecycleTestContext) customerMovesTheOrderTo(user, target string) error {
	id := auth.Identity{ID: user, Role: auth.RoleCustomer}
	_, c.err = c.f.svc.AdvanceOrderStatus(context.Background(), c.orderID, models.OrderStatus(target), id)
	return nil
}

func (c *lifecycleTestContext) thePaymentServiceReports(status string) error {
	_, c.err = c.f.svc.SetPaymentStatus(context.Background(), c.orderID, models.PaymentStatus(status), auth.PaymentActor)
	return nil
}

func (c *lifecycleTestContext) theRequestFailsWith(code string) error {
	if c.err == nil {
		return errors.New("expected request to fail but it succeeded")
	}
	if got := apperror.KindOf(c.err); string(got) != code {
		return fmt.Errorf("expected %s, got %s (%v)", code, got, c.err)
	}
	return nil
}

func (c *lifecycleTestContext) theRequestSucceeds() error {
	if c.err != nil {
		return fmt.Errorf("expected success, got %v", c.err)
	}
	return nil
}

func (c *lifecycleTestContext) order() (models.Order, error) {
	if c.orderID == "" {
		return models.Order{}, errors.New("no order in scenario")
	}
	return c.f.repo.Get(context.Background(), c.orderID)
}

func (c *lifecycleTestContext) amountStep(field func(models.Order) money.Money) func(string) error {
	return func(want string) error {
		o, err := c.order()
		if err != nil {
			return err
		}
		if got := field(o).String(); got != want {
			return fmt.Errorf("expected %s, got %s", want, got)
		}
		return nil
	}
}

func (c *lifecycleTestContext) theOrderSharesAre(want string) error {
	o, err := c.order()
	if err != nil {
		return err
	}
	got := make([]string, len(o.Shares))
	for i, s := range o.Shares {
		got[i] = s.String()
	}
	if strings.Join(got, ",") != want {
		return fmt.Errorf("expected shares %s, got %s", want, strings.Join(got, ","))
	}
	return nil
}

func (c *lifecycleTestContext) theOrderIsWithPayment(status, payment string) error {
	o, err := c.order()
	if err != nil {
		return err
	}
	if string(o.OrderStatus) != status || string(o.PaymentStatus) != payment {
		return fmt.Errorf("expected %s/%s, got %s/%s", status, payment, o.OrderStatus, o.PaymentStatus)
	}
	return nil
}

func (c *lifecycleTestContext) theCartOfIsEmpty(user string) error {
	snap, err := c.f.carts.Snapshot(context.Background(), auth.Identity{ID: user, Role: auth.RoleCustomer})
	if err != nil {
		return err
	}
	if len(snap.Lines) != 0 {
		return fmt.Errorf("expected empty cart, got %d lines", len(snap.Lines))
	}
	return nil
}

func (c *lifecycleTestContext) customerHasOrders(user string, n int) error {
	orders, err := c.f.svc.ListOrders(context.Background(), auth.Identity{ID: user, Role: auth.RoleCustomer}, ScopeCustomer)
	if err != nil {
		return err
	}
	if len(orders) != n {
		return fmt.Errorf("expected %d orders, got %d", n, len(orders))
	}
	return nil
}

func InitializeLifecycleScenario(ctx *godog.ScenarioContext) {
	tc := &lifecycleTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^the menu has "([^"]*)" at ([\d.]+) and "([^"]*)" at ([\d.]+)$`, tc.theMenuHas)
	ctx.Step(`^a tax rate of (\d+) basis points$`, tc.aTaxRateOf)
	ctx.Step(`^customer "([^"]*)" has (\d+) "([^"]*)" and (\d+) "([^"]*)" in the cart$`, tc.customerHasInTheCart)
	ctx.Step(`^a placed order for customer "([^"]*)"$`, tc.aPlacedOrderFor)

	// When steps
	ctx.Step(`^customer "([^"]*)" checks out split (\d+) ways with token "([^"]*)"$`, tc.customerChecksOut)
	ctx.Step(`^staff moves the order to "([^"]*)"$`, tc.staffMovesTheOrderTo)
	ctx.Step(`^customer "([^"]*)" moves the order to "([^"]*)"$`, tc.customerMovesTheOrderTo)
	ctx.Step(`^the payment service reports "([^"]*)"$`, tc.thePaymentServiceReports)

	// Then steps
	ctx.Step(`^the request fails with "([^"]*)"$`, tc.theRequestFailsWith)
	ctx.Step(`^the request succeeds$`, tc.theRequestSucceeds)
	ctx.Step(`^the order subtotal is ([\d.]+)$`, tc.amountStep(func(o models.Order) money.Money { return o.Subtotal }))
	ctx.Step(`^the order tax is ([\d.]+)$`, tc.amountStep(func(o models.Order) money.Money { return o.Tax }))
	ctx.Step(`^the order total is ([\d.]+)$`, tc.amountStep(func(o models.Order) money.Money { return o.TotalAmount }))
	ctx.Step(`^the order shares are "([^"]*)"$`, tc.theOrderSharesAre)
	ctx.Step(`^the order is "([^"]*)" with payment "([^"]*)"$`, tc.theOrderIsWithPayment)
	ctx.Step(`^the cart of "([^"]*)" is empty$`, tc.theCartOfIsEmpty)
	ctx.Step(`^customer "([^"]*)" has (\d+) orders$`, tc.customerHasOrders)
}

func TestLifecycleFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeLifecycleScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"testdata/lifecycle.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}

package shop

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/cucumber/godog"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/menukart/internal/domain/cart"
	"github.com/xenking/menukart/internal/domain/catalog"
	"github.com/xenking/menukart/internal/domain/money"
	"github.com/xenking/menukart/internal/domain/order"
	"github.com/xenking/menukart/internal/domain/pricing"
)

type staticCatalog struct {
	catalog *catalog.Catalog
}

func (s staticCatalog) Load(_ context.Context) (*catalog.Catalog, error) {
	return s.catalog, nil
}

type cartTestContext struct {
	svc      *Service
	checkout *order.Checkout
	err      error
}

func (c *cartTestContext) reset() error {
	orders := order.NewService(order.Formatter{Money: money.New(money.DefaultSymbol)}, "https://wa.me", "5491122512344")
	svc, err := New(catalog.NewStore(), orders)
	if err != nil {
		return err
	}
	c.svc = svc
	c.checkout = nil
	c.err = nil
	return nil
}

func (c *cartTestContext) load(p catalog.Product) error {
	p.Category = "menu"
	p.Available = true
	return c.svc.Load(context.Background(), staticCatalog{catalog: &catalog.Catalog{
		Categories: []catalog.Category{{ID: "menu", Name: "Menu"}},
		Products:   []catalog.Product{p},
	}})
}

func (c *cartTestContext) aCatalogWithASimpleProduct(id string, price int64) error {
	return c.load(catalog.Product{ID: id, Name: "Producto " + id, Kind: catalog.KindSimple, BasePrice: decimal.NewFromInt(price)})
}

func (c *cartTestContext) aCatalogWithACounterProduct(id, name string, price int64, flavors string) error {
	p := catalog.Product{
		ID: id, Name: name, Kind: catalog.KindAddOns, Control: catalog.ControlCounter,
		BasePrice: decimal.NewFromInt(price),
	}
	for _, f := range strings.Split(flavors, ",") {
		p.AddOns = append(p.AddOns, catalog.Option{Name: strings.TrimSpace(f)})
	}
	return c.load(p)
}

func (c *cartTestContext) aCatalogWithAVariantProduct(id string, price int64, table *godog.Table) error {
	p := catalog.Product{ID: id, Name: "Producto " + id, Kind: catalog.KindVariant, BasePrice: decimal.NewFromInt(price)}
	for _, row := range table.Rows[1:] {
		v, err := decimal.NewFromString(row.Cells[1].Value)
		if err != nil {
			return err
		}
		p.Variants = append(p.Variants, catalog.Option{Name: row.Cells[0].Value, Price: v})
	}
	return c.load(p)
}

func (c *cartTestContext) iAddProductTimes(id string, n int) error {
	for range n {
		if _, err := c.svc.Add(context.Background(), id); err != nil {
			return err
		}
	}
	return nil
}

func (c *cartTestContext) iAddOfFlavor(n, i int) error {
	for range n {
		if _, err := c.svc.AdjustCounter(i, 1); err != nil {
			return err
		}
	}
	return nil
}

func (c *cartTestContext) iSelectVariant(i int) error {
	_, err := c.svc.SelectVariant(i)
	return err
}

func (c *cartTestContext) iConfirmTheSelection() error {
	_, c.err = c.svc.Confirm(context.Background())
	return nil
}

func (c *cartTestContext) iChangeTheQuantityOfBy(sig string, delta int) error {
	_, err := c.svc.ChangeQuantity(context.Background(), sig, delta)
	return err
}

func (c *cartTestContext) iCheckOut() error {
	c.checkout, c.err = c.svc.Checkout(context.Background())
	return nil
}

func (c *cartTestContext) theCartHasEntries(n int) error {
	if got := c.svc.Cart().Entries; got != n {
		return fmt.Errorf("expected %d entries, got %d", n, got)
	}
	return nil
}

func (c *cartTestContext) entry(sig string) (cart.LineItem, error) {
	for _, li := range c.svc.Cart().Items {
		if li.Signature == sig {
			return li, nil
		}
	}
	return cart.LineItem{}, fmt.Errorf("no entry %q", sig)
}

func (c *cartTestContext) entryHasQuantity(sig string, qty int) error {
	li, err := c.entry(sig)
	if err != nil {
		return err
	}
	if li.Quantity != qty {
		return fmt.Errorf("expected quantity %d, got %d", qty, li.Quantity)
	}
	return nil
}

func (c *cartTestContext) entryHasUnitPrice(sig string, price int64) error {
	if c.err != nil {
		return c.err
	}
	li, err := c.entry(sig)
	if err != nil {
		return err
	}
	if !li.UnitPrice.Equal(decimal.NewFromInt(price)) {
		return fmt.Errorf("expected unit price %d, got %s", price, li.UnitPrice)
	}
	return nil
}

func (c *cartTestContext) theCartTotalIs(total int64) error {
	if got := c.svc.Cart().Total; !got.Equal(decimal.NewFromInt(total)) {
		return fmt.Errorf("expected total %d, got %s", total, got)
	}
	return nil
}

func (c *cartTestContext) checkoutFailsBecauseTheCartIsEmpty() error {
	if !errors.Is(c.err, order.ErrEmptyCart) {
		return fmt.Errorf("expected empty cart error, got %v", c.err)
	}
	return nil
}

func (c *cartTestContext) noTranscriptIsGenerated() error {
	if c.checkout != nil {
		return fmt.Errorf("unexpected transcript %q", c.checkout.Transcript.Text)
	}
	return nil
}

func (c *cartTestContext) theSelectionIsRejectedWith(reason string) error {
	var vErr *pricing.ValidationError
	if !errors.As(c.err, &vErr) {
		return fmt.Errorf("expected validation error, got %v", c.err)
	}
	if vErr.Reason != reason {
		return fmt.Errorf("expected reason %q, got %q", reason, vErr.Reason)
	}
	return nil
}

func (c *cartTestContext) theSessionIsStillOpen() error {
	if _, ok := c.svc.Session(); !ok {
		return errors.New("session closed")
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &cartTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		return ctx, tc.reset()
	})

	ctx.Step(`^a catalog with a simple product "([^"]*)" priced (\d+)$`, tc.aCatalogWithASimpleProduct)
	ctx.Step(`^a catalog with a counter product "([^"]*)" named "([^"]*)" priced (\d+) with flavors "([^"]*)"$`, tc.aCatalogWithACounterProduct)
	ctx.Step(`^a catalog with a variant product "([^"]*)" priced (\d+) with variants:$`, tc.aCatalogWithAVariantProduct)

	ctx.Step(`^I add product "([^"]*)" (\d+) times$`, tc.iAddProductTimes)
	ctx.Step(`^I add (\d+) of flavor (\d+)$`, tc.iAddOfFlavor)
	ctx.Step(`^I select variant (\d+)$`, tc.iSelectVariant)
	ctx.Step(`^I confirm the selection$`, tc.iConfirmTheSelection)
	ctx.Step(`^I change the quantity of "([^"]*)" by (-?\d+)$`, tc.iChangeTheQuantityOfBy)
	ctx.Step(`^I check out$`, tc.iCheckOut)

	ctx.Step(`^the cart has (\d+) entr(?:y|ies)$`, tc.theCartHasEntries)
	ctx.Step(`^entry "([^"]*)" has quantity (\d+)$`, tc.entryHasQuantity)
	ctx.Step(`^entry "([^"]*)" has unit price (\d+)$`, tc.entryHasUnitPrice)
	ctx.Step(`^the cart total is (\d+)$`, tc.theCartTotalIs)
	ctx.Step(`^checkout fails because the cart is empty$`, tc.checkoutFailsBecauseTheCartIsEmpty)
	ctx.Step(`^no transcript is generated$`, tc.noTranscriptIsGenerated)
	ctx.Step(`^the selection is rejected with "([^"]*)"$`, tc.theSelectionIsRejectedWith)
	ctx.Step(`^the session is still open$`, tc.theSessionIsStillOpen)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"testdata/features"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}

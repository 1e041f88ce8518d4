package session_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/cucumber/godog"
	"github.com/fjod/go_pos/internal/catalog"
	"github.com/fjod/go_pos/internal/document"
	"github.com/fjod/go_pos/internal/domain"
	"github.com/fjod/go_pos/internal/printing"
	"github.com/fjod/go_pos/internal/session"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type saleTestContext struct {
	store   *catalog.MemoryStore
	sale    *session.Session
	err     error
	mu      sync.Mutex
	printed []printing.Job
}

func (c *saleTestContext) reset() {
	c.store = catalog.NewMemoryStore()
	c.sale = nil
	c.err = nil
	c.printed = nil
}

func (c *saleTestContext) Print(_ context.Context, job printing.Job) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.printed = append(c.printed, job)
	return nil
}

func (c *saleTestContext) aCatalogWithProduct(id, name string, price, commission, stock int) error {
	_, err := c.store.CreateProduct(context.Background(), domain.ProductRecord{
		ID:            id,
		Name:          name,
		UnitPrice:     decimal.NewFromInt(int64(price)),
		Commission:    decimal.NewFromInt(int64(commission)),
		StockQuantity: stock,
	})
	return err
}

func (c *saleTestContext) aNewSale() error {
	c.sale = session.New(
		catalog.NewLoader(c.store, zap.NewNop()),
		document.NewRenderer(),
		c,
		session.Options{Printer: "counter-1"},
		zap.NewNop(),
	)
	return c.sale.Load(context.Background())
}

func (c *saleTestContext) theCustomerAt(name, address string) error {
	return c.sale.SubmitCustomer(name, address)
}

func (c *saleTestContext) iSubmitTheCustomerAt(name, address string) error {
	c.err = c.sale.SubmitCustomer(name, address)
	return nil
}

func (c *saleTestContext) iScan(code string) error {
	_, c.err = c.sale.Scan(code)
	return nil
}

func (c *saleTestContext) iIncrementTimes(productID string, times int) error {
	for i := 0; i < times; i++ {
		if err := c.sale.Increment(productID); err != nil {
			return err
		}
	}
	return nil
}

func (c *saleTestContext) iDecrement(productID string) error {
	return c.sale.Decrement(productID)
}

func (c *saleTestContext) iPrintTheInvoice() error {
	_, err := c.sale.PrintInvoice(context.Background())
	return err
}

func (c *saleTestContext) iCancelTheSale() error {
	return c.sale.RequestCancel()
}

func (c *saleTestContext) iConfirmTheCancellation() error {
	return c.sale.ConfirmCancel()
}

func (c *saleTestContext) theCartHasUnitsOf(quantity int, productID string) error {
	for _, item := range c.sale.View().Items {
		if item.ProductID == productID {
			if item.Quantity != quantity {
				return fmt.Errorf("expected %d units of %s, got %d", quantity, productID, item.Quantity)
			}
			return nil
		}
	}
	return fmt.Errorf("product %s not in cart", productID)
}

func (c *saleTestContext) theCartIsEmpty() error {
	if n := len(c.sale.View().Items); n != 0 {
		return fmt.Errorf("expected empty cart, got %d lines", n)
	}
	return nil
}

func (c *saleTestContext) theTotalIs(total int) error {
	got := c.sale.View().Total
	if !got.Equal(decimal.NewFromInt(int64(total))) {
		return fmt.Errorf("expected total %d, got %s", total, got)
	}
	return nil
}

func (c *saleTestContext) theSaleStateIs(state string) error {
	if got := c.sale.View().State; string(got) != state {
		return fmt.Errorf("expected state %s, got %s", state, got)
	}
	return nil
}

func (c *saleTestContext) theSaleIsRejectedWithAValidationError() error {
	var vErr *domain.ValidationError
	if !errors.As(c.err, &vErr) {
		return fmt.Errorf("expected validation error, got %v", c.err)
	}
	return nil
}

func (c *saleTestContext) theSaleIsRejectedAsAnInvalidTransition() error {
	if !errors.Is(c.err, domain.ErrInvalidTransition) {
		return fmt.Errorf("expected invalid transition, got %v", c.err)
	}
	return nil
}

func (c *saleTestContext) theCodeIsReportedAsNotFound() error {
	var nf *domain.NotFoundError
	if !errors.As(c.err, &nf) {
		return fmt.Errorf("expected not found error, got %v", c.err)
	}
	return nil
}

func (c *saleTestContext) invoicesWerePrintedWithTotal(count, total int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.printed) != count {
		return fmt.Errorf("expected %d printed invoices, got %d", count, len(c.printed))
	}
	got := c.printed[len(c.printed)-1].Document.Total
	if !got.Equal(decimal.NewFromInt(int64(total))) {
		return fmt.Errorf("expected printed total %d, got %s", total, got)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &saleTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^a catalog with product "([^"]*)" named "([^"]*)" priced (\d+) with commission (\d+) and stock (\d+)$`, tc.aCatalogWithProduct)
	ctx.Step(`^a new sale$`, tc.aNewSale)
	ctx.Step(`^the customer "([^"]*)" at "([^"]*)"$`, tc.theCustomerAt)

	// When steps
	ctx.Step(`^I submit the customer "([^"]*)" at "([^"]*)"$`, tc.iSubmitTheCustomerAt)
	ctx.Step(`^I scan "([^"]*)"$`, tc.iScan)
	ctx.Step(`^I increment "([^"]*)" (\d+) times$`, tc.iIncrementTimes)
	ctx.Step(`^I decrement "([^"]*)"$`, tc.iDecrement)
	ctx.Step(`^I print the invoice$`, tc.iPrintTheInvoice)
	ctx.Step(`^I cancel the sale$`, tc.iCancelTheSale)
	ctx.Step(`^I confirm the cancellation$`, tc.iConfirmTheCancellation)

	// Then steps
	ctx.Step(`^the cart has (\d+) units? of "([^"]*)"$`, tc.theCartHasUnitsOf)
	ctx.Step(`^the cart is empty$`, tc.theCartIsEmpty)
	ctx.Step(`^the total is (\d+)$`, tc.theTotalIs)
	ctx.Step(`^the sale state is "([^"]*)"$`, tc.theSaleStateIs)
	ctx.Step(`^the sale is rejected with a validation error$`, tc.theSaleIsRejectedWithAValidationError)
	ctx.Step(`^the sale is rejected as an invalid transition$`, tc.theSaleIsRejectedAsAnInvalidTransition)
	ctx.Step(`^the code is reported as not found$`, tc.theCodeIsReportedAsNotFound)
	ctx.Step(`^(\d+) invoices? (?:was|were) printed with total (\d+)$`, tc.invoicesWerePrintedWithTotal)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}

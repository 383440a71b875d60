// Package stripetest provides an in-memory Gateway for handler tests.
package stripetest

import (
	"fmt"
	"sync"

	stripeapi "github.com/stripe/stripe-go/v75"
)

// Gateway fakes the Stripe API. Zero value is usable; every Create* call is
// recorded so tests can assert on what was (or was not) sent.
type Gateway struct {
	mu sync.Mutex

	// Prices returned by RetrievePrice, keyed by id.
	Prices map[string]*stripeapi.Price
	// Customers returned by RetrieveCustomer, keyed by id.
	Customers map[string]*stripeapi.Customer

	// Errors to inject, keyed by method name ("CreateCustomer", ...).
	Errs map[string]error

	// OnCreateCustomer, when set, runs after a customer is created but before
	// CreateCustomer returns. Lets tests interleave a competing write between
	// the Stripe call and the local insert.
	OnCreateCustomer func(*stripeapi.Customer)

	CreatedCustomers []*stripeapi.CustomerParams
	CreatedSessions  []*stripeapi.CheckoutSessionParams
	CreatedProducts  []*stripeapi.ProductParams
	CreatedPrices    []*stripeapi.PriceParams

	nextID int
}

func (g *Gateway) fail(method string) error {
	if g.Errs == nil {
		return nil
	}
	return g.Errs[method]
}

func (g *Gateway) seq(prefix string) string {
	g.nextID++
	return fmt.Sprintf("%s_%04d", prefix, g.nextID)
}

func (g *Gateway) CreateCustomer(params *stripeapi.CustomerParams) (*stripeapi.Customer, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.fail("CreateCustomer"); err != nil {
		return nil, err
	}
	g.CreatedCustomers = append(g.CreatedCustomers, params)
	cus := &stripeapi.Customer{ID: g.seq("cus"), Metadata: params.Metadata}
	if params.Email != nil {
		cus.Email = *params.Email
	}
	if g.Customers == nil {
		g.Customers = map[string]*stripeapi.Customer{}
	}
	g.Customers[cus.ID] = cus
	if g.OnCreateCustomer != nil {
		g.OnCreateCustomer(cus)
	}
	return cus, nil
}

func (g *Gateway) RetrieveCustomer(id string) (*stripeapi.Customer, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.fail("RetrieveCustomer"); err != nil {
		return nil, err
	}
	if cus, ok := g.Customers[id]; ok {
		return cus, nil
	}
	return nil, fmt.Errorf("stripetest: no such customer %s", id)
}

func (g *Gateway) RetrievePrice(id string) (*stripeapi.Price, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.fail("RetrievePrice"); err != nil {
		return nil, err
	}
	if p, ok := g.Prices[id]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("stripetest: no such price %s", id)
}

func (g *Gateway) CreateCheckoutSession(params *stripeapi.CheckoutSessionParams) (*stripeapi.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.fail("CreateCheckoutSession"); err != nil {
		return nil, err
	}
	g.CreatedSessions = append(g.CreatedSessions, params)
	return &stripeapi.CheckoutSession{
		ID:  g.seq("cs_live"),
		URL: "https://checkout.stripe.com/pay/test",
	}, nil
}

func (g *Gateway) CreateProduct(params *stripeapi.ProductParams) (*stripeapi.Product, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.fail("CreateProduct"); err != nil {
		return nil, err
	}
	g.CreatedProducts = append(g.CreatedProducts, params)
	prod := &stripeapi.Product{ID: g.seq("prod")}
	if params.Name != nil {
		prod.Name = *params.Name
	}
	return prod, nil
}

func (g *Gateway) CreatePrice(params *stripeapi.PriceParams) (*stripeapi.Price, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.fail("CreatePrice"); err != nil {
		return nil, err
	}
	g.CreatedPrices = append(g.CreatedPrices, params)
	p := &stripeapi.Price{ID: g.seq("price"), Active: true}
	if params.UnitAmount != nil {
		p.UnitAmount = *params.UnitAmount
	}
	return p, nil
}

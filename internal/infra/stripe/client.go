package stripe

import (
	"net/http"
	"time"

	stripeapi "github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/client"
)

// Gateway is the slice of the Stripe API this service uses. Handlers call it
// through the package-level Client so tests can swap in a fake.
type Gateway interface {
	CreateCustomer(params *stripeapi.CustomerParams) (*stripeapi.Customer, error)
	RetrieveCustomer(id string) (*stripeapi.Customer, error)
	RetrievePrice(id string) (*stripeapi.Price, error)
	CreateCheckoutSession(params *stripeapi.CheckoutSessionParams) (*stripeapi.CheckoutSession, error)
	CreateProduct(params *stripeapi.ProductParams) (*stripeapi.Product, error)
	CreatePrice(params *stripeapi.PriceParams) (*stripeapi.Price, error)
}

// Client is the process-wide gateway, set once by Init (like database.DB).
var Client Gateway

// Init wires Client to the live Stripe backend. The underlying http client is
// bounded to 30s per request with 3 automatic retries for transient failures;
// it is safe for concurrent use across requests.
func Init(secretKey string) {
	sc := &client.API{}
	sc.Init(secretKey, &stripeapi.Backends{
		API: stripeapi.GetBackendWithConfig(stripeapi.APIBackend, &stripeapi.BackendConfig{
			HTTPClient:        &http.Client{Timeout: 30 * time.Second},
			MaxNetworkRetries: stripeapi.Int64(3),
		}),
	})
	Client = &liveGateway{api: sc}
}

type liveGateway struct {
	api *client.API
}

func (g *liveGateway) CreateCustomer(params *stripeapi.CustomerParams) (*stripeapi.Customer, error) {
	return g.api.Customers.New(params)
}

func (g *liveGateway) RetrieveCustomer(id string) (*stripeapi.Customer, error) {
	return g.api.Customers.Get(id, nil)
}

func (g *liveGateway) RetrievePrice(id string) (*stripeapi.Price, error) {
	return g.api.Prices.Get(id, nil)
}

func (g *liveGateway) CreateCheckoutSession(params *stripeapi.CheckoutSessionParams) (*stripeapi.CheckoutSession, error) {
	return g.api.CheckoutSessions.New(params)
}

func (g *liveGateway) CreateProduct(params *stripeapi.ProductParams) (*stripeapi.Product, error) {
	return g.api.Products.New(params)
}

func (g *liveGateway) CreatePrice(params *stripeapi.PriceParams) (*stripeapi.Price, error) {
	return g.api.Prices.New(params)
}

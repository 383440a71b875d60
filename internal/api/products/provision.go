package products

import (
	"encoding/json"
	"fmt"

	"unified-saas-backend/internal/domain/apps"
	"unified-saas-backend/internal/domain/products"
	"unified-saas-backend/internal/domain/templates"
	stripeinfra "unified-saas-backend/internal/infra/stripe"

	"github.com/stripe/stripe-go/v75"
	"gorm.io/gorm"
)

// Provision creates a Stripe product and price for each definition, in input
// order, and mirrors them as local Product rows. It stops at the first failure
// and returns what was created so far along with the error; already-created
// Stripe resources are NOT rolled back (manual reconciliation is assumed).
func Provision(db *gorm.DB, app *apps.App, defs []templates.ProductDef) ([]products.Product, error) {
	created := make([]products.Product, 0, len(defs))

	for i, def := range defs {
		if err := validateDef(def); err != nil {
			return created, fmt.Errorf("product %d: %w", i+1, err)
		}

		features := def.Features
		if features == nil {
			features = []string{}
		}
		featuresJSON, err := json.Marshal(features)
		if err != nil {
			return created, err
		}

		stripeProduct, err := stripeinfra.Client.CreateProduct(&stripe.ProductParams{
			Name:        stripe.String(fmt.Sprintf("%s - %s", app.Name, def.Name)),
			Description: stripe.String(def.Description),
			Metadata: map[string]string{
				"app_id":   app.ID,
				"features": string(featuresJSON),
			},
		})
		if err != nil {
			return created, fmt.Errorf("failed to create stripe product %q: %w", def.Name, err)
		}

		stripePrice, err := stripeinfra.Client.CreatePrice(&stripe.PriceParams{
			Product:    stripe.String(stripeProduct.ID),
			UnitAmount: stripe.Int64(def.Amount),
			Currency:   stripe.String(string(stripe.CurrencyUSD)),
			Recurring: &stripe.PriceRecurringParams{
				Interval: stripe.String(def.Interval),
			},
			Metadata: map[string]string{
				"app_id": app.ID,
			},
		})
		if err != nil {
			return created, fmt.Errorf("failed to create stripe price for %q: %w", def.Name, err)
		}

		row := products.Product{
			AppID:           app.ID,
			Name:            def.Name,
			Description:     def.Description,
			Amount:          def.Amount,
			Currency:        "usd",
			Interval:        def.Interval,
			Features:        featuresJSON,
			StripeProductID: stripeProduct.ID,
			StripePriceID:   stripePrice.ID,
			Active:          true,
		}
		if err := db.Create(&row).Error; err != nil {
			return created, fmt.Errorf("failed to store product %q: %w", def.Name, err)
		}

		created = append(created, row)
	}

	return created, nil
}

func validateDef(def templates.ProductDef) error {
	if def.Name == "" {
		return fmt.Errorf("name is required")
	}
	if def.Amount < 0 {
		return fmt.Errorf("invalid amount: %d", def.Amount)
	}
	if def.Interval != "month" && def.Interval != "year" {
		return fmt.Errorf("invalid interval: %q", def.Interval)
	}
	return nil
}

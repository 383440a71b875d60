package products

import (
	"errors"
	"testing"

	"unified-saas-backend/internal/domain/apps"
	"unified-saas-backend/internal/domain/products"
	"unified-saas-backend/internal/domain/templates"
	"unified-saas-backend/internal/domain/users"
	stripeinfra "unified-saas-backend/internal/infra/stripe"
	"unified-saas-backend/internal/infra/stripe/stripetest"
	"unified-saas-backend/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedApp(t *testing.T, db *gorm.DB) apps.App {
	t.Helper()
	user := users.User{Name: "Owner", Email: "owner@example.com", Role: "user"}
	require.NoError(t, db.Create(&user).Error)
	app := apps.App{Name: "Acme Notes", Slug: "acme-notes", OwnerID: user.ID, Active: true}
	require.NoError(t, db.Create(&app).Error)
	return app
}

func TestProvision_CreatesStripePairAndLocalRow(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	app := seedApp(t, db)
	gw := &stripetest.Gateway{}
	stripeinfra.Client = gw

	created, err := Provision(db, &app, []templates.ProductDef{
		{Name: "Pro", Description: "Full access", Amount: 2900, Interval: "month", Features: []string{"unlimited notes"}},
	})
	require.NoError(t, err)
	require.Len(t, created, 1)

	row := created[0]
	assert.Equal(t, "Pro", row.Name)
	assert.Equal(t, int64(2900), row.Amount)
	assert.Equal(t, "usd", row.Currency)
	assert.Equal(t, "month", row.Interval)
	assert.True(t, row.Active)
	assert.NotEmpty(t, row.StripeProductID)
	assert.NotEmpty(t, row.StripePriceID)

	require.Len(t, gw.CreatedProducts, 1)
	assert.Equal(t, "Acme Notes - Pro", *gw.CreatedProducts[0].Name)
	assert.Equal(t, app.ID, gw.CreatedProducts[0].Metadata["app_id"])

	require.Len(t, gw.CreatedPrices, 1)
	assert.Equal(t, int64(2900), *gw.CreatedPrices[0].UnitAmount)
	assert.Equal(t, "usd", *gw.CreatedPrices[0].Currency)
	assert.Equal(t, "month", *gw.CreatedPrices[0].Recurring.Interval)

	var stored products.Product
	require.NoError(t, db.Where("app_id = ?", app.ID).First(&stored).Error)
	assert.Equal(t, row.StripePriceID, stored.StripePriceID)
}

func TestProvision_RejectsInvalidDefinitions(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	app := seedApp(t, db)
	gw := &stripetest.Gateway{}
	stripeinfra.Client = gw

	cases := []templates.ProductDef{
		{Name: "", Amount: 2900, Interval: "month"},
		{Name: "Pro", Amount: -1, Interval: "month"},
		{Name: "Pro", Amount: 2900, Interval: "weekly"},
	}
	for _, def := range cases {
		created, err := Provision(db, &app, []templates.ProductDef{def})
		assert.Error(t, err)
		assert.Empty(t, created)
	}
	assert.Empty(t, gw.CreatedProducts, "invalid definitions must not reach Stripe")
}

func TestProvision_StopsAtFirstFailureKeepingEarlierProducts(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	app := seedApp(t, db)
	gw := &stripetest.Gateway{}
	stripeinfra.Client = gw

	created, err := Provision(db, &app, []templates.ProductDef{
		{Name: "Basic", Amount: 900, Interval: "month"},
		{Name: "Broken", Amount: 1900, Interval: "quarterly"},
		{Name: "Pro", Amount: 2900, Interval: "month"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "product 2")
	require.Len(t, created, 1)
	assert.Equal(t, "Basic", created[0].Name)

	// The first product stays, both in Stripe and locally. No rollback.
	var count int64
	require.NoError(t, db.Model(&products.Product{}).Where("app_id = ?", app.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	assert.Len(t, gw.CreatedProducts, 1)
}

func TestProvision_StripeFailureSurfacesPartialResult(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	app := seedApp(t, db)

	gw := &stripetest.Gateway{}
	stripeinfra.Client = gw

	created, err := Provision(db, &app, []templates.ProductDef{
		{Name: "Basic", Amount: 900, Interval: "month"},
	})
	require.NoError(t, err)
	require.Len(t, created, 1)

	gw.Errs = map[string]error{"CreateProduct": errors.New("stripe is down")}
	created, err = Provision(db, &app, []templates.ProductDef{
		{Name: "Pro", Amount: 2900, Interval: "month"},
	})
	require.Error(t, err)
	assert.Empty(t, created)
}

package customers_test

import (
	"testing"

	"unified-saas-backend/internal/domain/customers"
	"unified-saas-backend/internal/domain/users"
	stripeinfra "unified-saas-backend/internal/infra/stripe"
	"unified-saas-backend/internal/infra/stripe/stripetest"
	"unified-saas-backend/testhelpers"

	stripeapi "github.com/stripe/stripe-go/v75"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_CreatesStripeCustomerAndLocalRow(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	gw := &stripetest.Gateway{}
	stripeinfra.Client = gw

	user := users.User{Name: "Jamie", Email: "jamie@example.com", Role: "user", IsVerified: true}
	require.NoError(t, db.Create(&user).Error)

	id, err := customers.Resolve(db, user.ID, "live")
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	require.Len(t, gw.CreatedCustomers, 1)
	params := gw.CreatedCustomers[0]
	assert.Equal(t, "jamie@example.com", *params.Email)
	assert.Equal(t, "1", params.Metadata["user_id"])
	assert.Equal(t, "live", params.Metadata["mode"])

	var row customers.Customer
	require.NoError(t, db.Where("user_id = ? AND mode = ?", user.ID, "live").First(&row).Error)
	assert.Equal(t, id, row.StripeCustomerID)
	assert.Equal(t, "jamie@example.com", row.Email)
	assert.Equal(t, "inactive", row.SubscriptionStatus)
}

func TestResolve_ReturnsExistingWithoutCallingStripe(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	gw := &stripetest.Gateway{}
	stripeinfra.Client = gw

	user := users.User{Name: "Jamie", Email: "jamie@example.com", Role: "user"}
	require.NoError(t, db.Create(&user).Error)
	require.NoError(t, db.Create(&customers.Customer{
		UserID:           user.ID,
		Mode:             "live",
		Email:            user.Email,
		StripeCustomerID: "cus_existing",
	}).Error)

	id, err := customers.Resolve(db, user.ID, "live")
	require.NoError(t, err)
	assert.Equal(t, "cus_existing", id)
	assert.Empty(t, gw.CreatedCustomers, "existing rows must short-circuit the Stripe call")
}

func TestResolve_ModesAreIndependent(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	gw := &stripetest.Gateway{}
	stripeinfra.Client = gw

	user := users.User{Name: "Jamie", Email: "jamie@example.com", Role: "user"}
	require.NoError(t, db.Create(&user).Error)
	require.NoError(t, db.Create(&customers.Customer{
		UserID:           user.ID,
		Mode:             "live",
		Email:            user.Email,
		StripeCustomerID: "cus_live_1",
	}).Error)

	id, err := customers.Resolve(db, user.ID, "test")
	require.NoError(t, err)
	assert.NotEqual(t, "cus_live_1", id, "test mode gets its own customer")

	var count int64
	require.NoError(t, db.Model(&customers.Customer{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestResolve_UnknownUser(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	stripeinfra.Client = &stripetest.Gateway{}

	_, err := customers.Resolve(db, 999, "live")
	assert.ErrorIs(t, err, customers.ErrIdentityLookup)
}

func TestResolve_ConcurrentFirstCheckoutKeepsOneRow(t *testing.T) {
	db := testhelpers.SetupTestDB(t)

	user := users.User{Name: "Jamie", Email: "jamie@example.com", Role: "user"}
	require.NoError(t, db.Create(&user).Error)

	// Simulate a competing checkout that wins the insert while our Stripe call
	// is in flight.
	gw := &stripetest.Gateway{}
	gw.OnCreateCustomer = func(*stripeapi.Customer) {
		require.NoError(t, db.Create(&customers.Customer{
			UserID:           user.ID,
			Mode:             "live",
			Email:            user.Email,
			StripeCustomerID: "cus_winner",
		}).Error)
	}
	stripeinfra.Client = gw

	id, err := customers.Resolve(db, user.ID, "live")
	require.NoError(t, err)
	assert.Equal(t, "cus_winner", id, "the loser must adopt the winning row's customer id")

	var count int64
	require.NoError(t, db.Model(&customers.Customer{}).
		Where("user_id = ? AND mode = ?", user.ID, "live").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

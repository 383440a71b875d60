package stripewebhooks

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"unified-saas-backend/config"
	"unified-saas-backend/internal/domain/apps"
	"unified-saas-backend/internal/domain/customers"
	"unified-saas-backend/internal/domain/products"
	"unified-saas-backend/internal/domain/subscriptions"
	"unified-saas-backend/internal/domain/users"
	stripeinfra "unified-saas-backend/internal/infra/stripe"
	"unified-saas-backend/internal/infra/stripe/stripetest"
	"unified-saas-backend/testhelpers"

	"github.com/gin-gonic/gin"
	stripeapi "github.com/stripe/stripe-go/v75"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testWebhookSecret = "whsec_test_secret"

func newWebhookRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/webhook", StripeWebhook)
	return r
}

// seedBillingFixtures creates a user, an app, a product mirroring price_basic
// and the customer row the checkout flow would have written.
func seedBillingFixtures(t *testing.T, db *gorm.DB) (users.User, apps.App, products.Product, customers.Customer) {
	t.Helper()

	user := users.User{Name: "Jamie", Email: "jamie@example.com", Role: "user", IsVerified: true}
	require.NoError(t, db.Create(&user).Error)

	app := apps.App{Name: "Acme Notes", Slug: "acme-notes", OwnerID: user.ID, Active: true}
	require.NoError(t, db.Create(&app).Error)

	product := products.Product{
		AppID:           app.ID,
		Name:            "Pro",
		Amount:          2900,
		Currency:        "usd",
		Interval:        "month",
		StripeProductID: "prod_basic",
		StripePriceID:   "price_basic",
		Active:          true,
	}
	require.NoError(t, db.Create(&product).Error)

	customer := customers.Customer{
		UserID:             user.ID,
		Mode:               "live",
		Email:              user.Email,
		StripeCustomerID:   "cus_test_1",
		SubscriptionStatus: "inactive",
	}
	require.NoError(t, db.Create(&customer).Error)

	return user, app, product, customer
}

func signPayload(payload []byte, secret string) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func postWebhook(r *gin.Engine, payload []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", signature)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func subscriptionEvent(t *testing.T, eventType string, sub map[string]interface{}) []byte {
	t.Helper()
	payload, err := json.Marshal(map[string]interface{}{
		"id":   "evt_test_1",
		"type": eventType,
		"data": map[string]interface{}{"object": sub},
	})
	require.NoError(t, err)
	return payload
}

func subscriptionObject(id, priceID, status string, userID uint) map[string]interface{} {
	return map[string]interface{}{
		"id":       id,
		"object":   "subscription",
		"status":   status,
		"customer": "cus_test_1",
		"items": map[string]interface{}{
			"object": "list",
			"data": []map[string]interface{}{
				{"id": "si_1", "price": map[string]interface{}{"id": priceID}},
			},
		},
		"current_period_start": 1700000000,
		"current_period_end":   1702592000,
		"cancel_at_period_end": false,
		"metadata":             map[string]string{"user_id": fmt.Sprint(userID), "mode": "live"},
	}
}

func TestStripeWebhook_RejectsBadSignature(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	seedBillingFixtures(t, db)
	config.STRIPE_WEBHOOK_SECRET = testWebhookSecret
	stripeinfra.Client = &stripetest.Gateway{}
	r := newWebhookRouter()

	payload := subscriptionEvent(t, "customer.subscription.updated", subscriptionObject("sub_1", "price_basic", "active", 1))

	// Wrong secret
	w := postWebhook(r, payload, signPayload(payload, "whsec_wrong"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Tampered body
	sig := signPayload(payload, testWebhookSecret)
	tampered := bytes.Replace(payload, []byte("price_basic"), []byte("price_other"), 1)
	w = postWebhook(r, tampered, sig)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var count int64
	require.NoError(t, db.Model(&subscriptions.Subscription{}).Count(&count).Error)
	assert.Zero(t, count, "rejected events must not write anything")
}

func TestStripeWebhook_SubscriptionUpdatedUpsertsAndIsIdempotent(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	user, app, product, customer := seedBillingFixtures(t, db)
	config.STRIPE_WEBHOOK_SECRET = testWebhookSecret
	stripeinfra.Client = &stripetest.Gateway{}
	r := newWebhookRouter()

	payload := subscriptionEvent(t, "customer.subscription.updated", subscriptionObject("sub_1", "price_basic", "active", user.ID))

	w := postWebhook(r, payload, signPayload(payload, testWebhookSecret))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var row subscriptions.Subscription
	require.NoError(t, db.Where("stripe_subscription_id = ?", "sub_1").First(&row).Error)
	assert.Equal(t, user.ID, row.UserID)
	assert.Equal(t, app.ID, row.AppID)
	assert.Equal(t, product.ID, row.ProductID)
	assert.Equal(t, customer.ID, row.CustomerID)
	assert.Equal(t, "active", row.Status)
	assert.Equal(t, int64(1702592000), row.CurrentPeriodEnd.Unix())

	var cust customers.Customer
	require.NoError(t, db.Where("id = ?", customer.ID).First(&cust).Error)
	assert.Equal(t, "active", cust.SubscriptionStatus)

	// Duplicate delivery of the identical event must be a no-op.
	w = postWebhook(r, payload, signPayload(payload, testWebhookSecret))
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	require.NoError(t, db.Model(&subscriptions.Subscription{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	var again subscriptions.Subscription
	require.NoError(t, db.Where("stripe_subscription_id = ?", "sub_1").First(&again).Error)
	assert.Equal(t, row.ID, again.ID)
	assert.Equal(t, row.Status, again.Status)
	assert.Equal(t, row.CurrentPeriodEnd.Unix(), again.CurrentPeriodEnd.Unix())
}

func TestStripeWebhook_SubscriptionUpdatedUnknownPriceIsRejected(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	user, _, _, _ := seedBillingFixtures(t, db)
	config.STRIPE_WEBHOOK_SECRET = testWebhookSecret
	stripeinfra.Client = &stripetest.Gateway{}
	r := newWebhookRouter()

	payload := subscriptionEvent(t, "customer.subscription.updated", subscriptionObject("sub_1", "price_nobody_knows", "active", user.ID))

	w := postWebhook(r, payload, signPayload(payload, testWebhookSecret))
	assert.Equal(t, http.StatusInternalServerError, w.Code, "unknown product must reject the event for redelivery")

	var count int64
	require.NoError(t, db.Model(&subscriptions.Subscription{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestStripeWebhook_UserResolvedFromStripeCustomerMetadata(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	user, _, _, customer := seedBillingFixtures(t, db)
	config.STRIPE_WEBHOOK_SECRET = testWebhookSecret
	stripeinfra.Client = &stripetest.Gateway{
		Customers: map[string]*stripeapi.Customer{
			"cus_test_1": {ID: "cus_test_1", Metadata: map[string]string{"user_id": fmt.Sprint(user.ID), "mode": "live"}},
		},
	}
	r := newWebhookRouter()

	sub := subscriptionObject("sub_2", "price_basic", "past_due", 0)
	sub["metadata"] = map[string]string{} // force the customer-metadata fallback
	payload := subscriptionEvent(t, "customer.subscription.created", sub)

	w := postWebhook(r, payload, signPayload(payload, testWebhookSecret))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var row subscriptions.Subscription
	require.NoError(t, db.Where("stripe_subscription_id = ?", "sub_2").First(&row).Error)
	assert.Equal(t, user.ID, row.UserID)

	var cust customers.Customer
	require.NoError(t, db.Where("id = ?", customer.ID).First(&cust).Error)
	assert.Equal(t, "past_due", cust.SubscriptionStatus)
}

func TestStripeWebhook_SubscriptionDeletedCancelsAndDowngradesCustomer(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	user, app, product, customer := seedBillingFixtures(t, db)
	config.STRIPE_WEBHOOK_SECRET = testWebhookSecret
	stripeinfra.Client = &stripetest.Gateway{}
	r := newWebhookRouter()

	require.NoError(t, db.Create(&subscriptions.Subscription{
		UserID:               user.ID,
		AppID:                app.ID,
		ProductID:            product.ID,
		CustomerID:           customer.ID,
		StripeSubscriptionID: "sub_1",
		Status:               "active",
	}).Error)
	require.NoError(t, db.Model(&customers.Customer{}).Where("id = ?", customer.ID).
		Update("subscription_status", "active").Error)

	payload := subscriptionEvent(t, "customer.subscription.deleted", map[string]interface{}{
		"id":                   "sub_1",
		"object":               "subscription",
		"status":               "canceled",
		"customer":             "cus_test_1",
		"canceled_at":          1702000000,
		"cancellation_details": map[string]interface{}{"reason": "cancellation_requested"},
	})

	w := postWebhook(r, payload, signPayload(payload, testWebhookSecret))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var row subscriptions.Subscription
	require.NoError(t, db.Where("stripe_subscription_id = ?", "sub_1").First(&row).Error)
	assert.Equal(t, "canceled", row.Status)
	require.NotNil(t, row.CanceledAt)
	assert.Equal(t, int64(1702000000), row.CanceledAt.Unix())

	var cust customers.Customer
	require.NoError(t, db.Where("id = ?", customer.ID).First(&cust).Error)
	assert.Equal(t, "inactive", cust.SubscriptionStatus)
}

func TestStripeWebhook_SubscriptionDeletedKeepsCustomerActiveWhileOtherSubsRemain(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	user, app, product, customer := seedBillingFixtures(t, db)
	config.STRIPE_WEBHOOK_SECRET = testWebhookSecret
	stripeinfra.Client = &stripetest.Gateway{}
	r := newWebhookRouter()

	for i, status := range []string{"active", "active"} {
		require.NoError(t, db.Create(&subscriptions.Subscription{
			UserID:               user.ID,
			AppID:                app.ID,
			ProductID:            product.ID,
			CustomerID:           customer.ID,
			StripeSubscriptionID: fmt.Sprintf("sub_%d", i+1),
			Status:               status,
		}).Error)
	}
	require.NoError(t, db.Model(&customers.Customer{}).Where("id = ?", customer.ID).
		Update("subscription_status", "active").Error)

	payload := subscriptionEvent(t, "customer.subscription.deleted", map[string]interface{}{
		"id":       "sub_1",
		"object":   "subscription",
		"status":   "canceled",
		"customer": "cus_test_1",
	})

	w := postWebhook(r, payload, signPayload(payload, testWebhookSecret))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var cust customers.Customer
	require.NoError(t, db.Where("id = ?", customer.ID).First(&cust).Error)
	assert.Equal(t, "active", cust.SubscriptionStatus, "another active subscription keeps the customer active")
}

func TestStripeWebhook_CheckoutCompletedSyncsCustomerEmail(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	_, _, _, customer := seedBillingFixtures(t, db)
	config.STRIPE_WEBHOOK_SECRET = testWebhookSecret
	stripeinfra.Client = &stripetest.Gateway{}
	r := newWebhookRouter()

	payload, err := json.Marshal(map[string]interface{}{
		"id":   "evt_test_5",
		"type": "checkout.session.completed",
		"data": map[string]interface{}{"object": map[string]interface{}{
			"id":               "cs_live_0001",
			"object":           "checkout.session",
			"customer":         "cus_test_1",
			"customer_details": map[string]interface{}{"email": "billing@example.com"},
		}},
	})
	require.NoError(t, err)

	w := postWebhook(r, payload, signPayload(payload, testWebhookSecret))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var cust customers.Customer
	require.NoError(t, db.Where("id = ?", customer.ID).First(&cust).Error)
	assert.Equal(t, "billing@example.com", cust.Email)
}

func TestStripeWebhook_UnknownEventKindIsAcknowledged(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	seedBillingFixtures(t, db)
	config.STRIPE_WEBHOOK_SECRET = testWebhookSecret
	stripeinfra.Client = &stripetest.Gateway{}
	r := newWebhookRouter()

	payload, err := json.Marshal(map[string]interface{}{
		"id":   "evt_test_9",
		"type": "invoice.payment_succeeded",
		"data": map[string]interface{}{"object": map[string]interface{}{"id": "in_1"}},
	})
	require.NoError(t, err)

	w := postWebhook(r, payload, signPayload(payload, testWebhookSecret))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"received":true}`, w.Body.String())
}

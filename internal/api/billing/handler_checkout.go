package billing

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"unified-saas-backend/config"
	"unified-saas-backend/database"
	"unified-saas-backend/internal/domain/customers"
	stripeinfra "unified-saas-backend/internal/infra/stripe"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75"
)

// ErrInvalidPrice marks a price reference that Stripe does not know or that is
// no longer active.
var ErrInvalidPrice = errors.New("invalid or inactive price")

func CreateCheckoutSession(c *gin.Context) {
	var body struct {
		PriceID    string `json:"price_id"`
		UserID     uint   `json:"user_id"`
		SuccessURL string `json:"success_url"`
		CancelURL  string `json:"cancel_url"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.PriceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid price_id"})
		return
	}

	if !strings.HasPrefix(body.PriceID, "price_") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid price ID format"})
		return
	}

	authUserID := c.GetUint("user_id")
	if authUserID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not identified"})
		return
	}
	if body.UserID == 0 {
		body.UserID = authUserID
	}
	if body.UserID != authUserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cannot create a checkout session for another user"})
		return
	}

	stripeCustomerID, err := customers.Resolve(database.DB, body.UserID, config.STRIPE_MODE)
	if err != nil {
		if errors.Is(err, customers.ErrIdentityLookup) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to fetch user data"})
			return
		}
		fmt.Println("❌ Customer resolve error:", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to resolve customer"})
		return
	}

	// The price must exist and be active in Stripe before we hand out a session.
	price, err := stripeinfra.Client.RetrievePrice(body.PriceID)
	if err != nil || price == nil || !price.Active {
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrInvalidPrice.Error()})
		return
	}

	successURL := body.SuccessURL
	if successURL == "" {
		successURL = config.APP_URL + "/checkout/success"
	}
	cancelURL := body.CancelURL
	if cancelURL == "" {
		cancelURL = config.APP_URL + "/checkout/canceled"
	}

	params := &stripe.CheckoutSessionParams{
		Customer:   stripe.String(stripeCustomerID),
		Mode:       stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),

		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(body.PriceID), Quantity: stripe.Int64(1)},
		},

		PaymentMethodTypes:       stripe.StringSlice([]string{"card"}),
		BillingAddressCollection: stripe.String(string(stripe.CheckoutSessionBillingAddressCollectionRequired)),
		AllowPromotionCodes:      stripe.Bool(true),

		ClientReferenceID: stripe.String(fmt.Sprint(body.UserID)),

		// Correlated back by the webhook processor.
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{
				"user_id":  fmt.Sprint(body.UserID),
				"price_id": body.PriceID,
			},
		},
	}

	s, err := stripeinfra.Client.CreateCheckoutSession(params)
	if err != nil {
		fmt.Println("❌ Checkout session error:", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to create checkout session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"sessionId": s.ID, "url": s.URL})
}

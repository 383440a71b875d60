package stripewebhooks

import (
	"unified-saas-backend/database"
	"unified-saas-backend/internal/domain/customers"

	"github.com/stripe/stripe-go/v75"
)

// handleCheckoutCompleted syncs the email collected on the checkout page onto
// the local customer row; buyers sometimes enter a different address there.
// The subscription itself arrives through the customer.subscription.* events.
func handleCheckoutCompleted(session *stripe.CheckoutSession) error {
	if session.Customer == nil || session.CustomerDetails == nil || session.CustomerDetails.Email == "" {
		return nil
	}
	return database.DB.Model(&customers.Customer{}).
		Where("stripe_customer_id = ? AND email <> ?", session.Customer.ID, session.CustomerDetails.Email).
		Update("email", session.CustomerDetails.Email).Error
}

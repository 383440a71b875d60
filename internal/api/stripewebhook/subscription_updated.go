package stripewebhooks

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"unified-saas-backend/database"
	"unified-saas-backend/internal/domain/customers"
	"unified-saas-backend/internal/domain/products"
	"unified-saas-backend/internal/domain/subscriptions"
	stripeinfra "unified-saas-backend/internal/infra/stripe"

	"github.com/stripe/stripe-go/v75"
	"gorm.io/gorm/clause"
)

// handleSubscriptionUpdated covers both customer.subscription.created and
// .updated. Every write is an idempotent upsert keyed on the Stripe
// subscription id, so duplicate deliveries are no-ops; delivery order is
// applied last-write-wins.
func handleSubscriptionUpdated(sub *stripe.Subscription) error {
	if sub.ID == "" || sub.Items == nil || len(sub.Items.Data) == 0 || sub.Items.Data[0].Price == nil {
		return fmt.Errorf("subscription missing id/items/price")
	}

	priceID := sub.Items.Data[0].Price.ID
	stripeCustomerID := ""
	if sub.Customer != nil {
		stripeCustomerID = sub.Customer.ID
	}

	userID, mode, err := resolveSubscriptionUser(sub, stripeCustomerID)
	if err != nil {
		return err
	}

	// Unknown price -> reject the event so Stripe redelivers once the product
	// mirror exists. Never silently drop it.
	var product products.Product
	if err := database.DB.Where("stripe_price_id = ?", priceID).First(&product).Error; err != nil {
		return fmt.Errorf("no product found for price %s", priceID)
	}

	// The local customer row may not exist yet (e.g. subscription created from
	// the Stripe dashboard); the subscription upsert does not depend on it.
	localCustomerID := ""
	var localCustomer customers.Customer
	if stripeCustomerID != "" {
		if err := database.DB.Where("stripe_customer_id = ?", stripeCustomerID).First(&localCustomer).Error; err == nil {
			localCustomerID = localCustomer.ID
		}
	}

	metadata, err := json.Marshal(map[string]interface{}{
		"mode":            mode,
		"stripe_metadata": sub.Metadata,
	})
	if err != nil {
		return err
	}

	row := subscriptions.Subscription{
		UserID:               userID,
		AppID:                product.AppID,
		ProductID:            product.ID,
		CustomerID:           localCustomerID,
		StripeSubscriptionID: sub.ID,
		Status:               string(sub.Status),
		CurrentPeriodStart:   time.Unix(sub.CurrentPeriodStart, 0),
		CurrentPeriodEnd:     time.Unix(sub.CurrentPeriodEnd, 0),
		CancelAtPeriodEnd:    sub.CancelAtPeriodEnd,
		Metadata:             metadata,
	}
	if sub.CanceledAt > 0 {
		t := time.Unix(sub.CanceledAt, 0)
		row.CanceledAt = &t
	}

	if err := database.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "stripe_subscription_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"user_id", "app_id", "product_id", "customer_id",
			"status", "current_period_start", "current_period_end",
			"cancel_at_period_end", "canceled_at", "metadata", "updated_at",
		}),
	}).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to upsert subscription %s: %w", sub.ID, err)
	}

	if localCustomerID != "" {
		status := stripeinfra.NormalizeSubscriptionStatus(string(sub.Status))
		if err := database.DB.Model(&customers.Customer{}).
			Where("id = ?", localCustomerID).
			Update("subscription_status", status).Error; err != nil {
			return fmt.Errorf("failed to update customer status: %w", err)
		}
	}

	return nil
}

// resolveSubscriptionUser prefers the user_id the checkout builder stamped into
// the subscription metadata, falling back to the Stripe customer's metadata.
func resolveSubscriptionUser(sub *stripe.Subscription, stripeCustomerID string) (uint, string, error) {
	mode := "live"
	if sub.Metadata != nil && sub.Metadata["mode"] != "" {
		mode = sub.Metadata["mode"]
	}

	if userID := userIDFromMetadata(sub.Metadata); userID != 0 {
		return userID, mode, nil
	}

	if stripeCustomerID == "" {
		return 0, "", fmt.Errorf("subscription %s has no user_id metadata and no customer", sub.ID)
	}

	cus, err := stripeinfra.Client.RetrieveCustomer(stripeCustomerID)
	if err != nil {
		return 0, "", fmt.Errorf("failed to retrieve customer %s: %w", stripeCustomerID, err)
	}
	if cus.Metadata != nil && cus.Metadata["mode"] != "" {
		mode = cus.Metadata["mode"]
	}
	if userID := userIDFromMetadata(cus.Metadata); userID != 0 {
		return userID, mode, nil
	}
	return 0, "", fmt.Errorf("no user_id metadata on subscription %s or customer %s", sub.ID, stripeCustomerID)
}

func userIDFromMetadata(md map[string]string) uint {
	if md == nil {
		return 0
	}
	s := md["user_id"]
	if s == "" {
		return 0
	}
	uid, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return uint(uid)
}

package stripewebhooks

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"unified-saas-backend/database"
	"unified-saas-backend/internal/domain/customers"
	"unified-saas-backend/internal/domain/subscriptions"

	"github.com/stripe/stripe-go/v75"
	"gorm.io/gorm"
)

// handleSubscriptionDeleted marks the mirrored subscription canceled and, when
// the user has no other active subscription left, downgrades the customer's
// denormalized status to inactive.
func handleSubscriptionDeleted(sub *stripe.Subscription) error {
	if sub.ID == "" {
		return nil
	}

	var row subscriptions.Subscription
	if err := database.DB.Where("stripe_subscription_id = ?", sub.ID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Nothing mirrors this subscription; acknowledge so Stripe stops
			// redelivering an event we can never apply.
			return nil
		}
		return err
	}

	reason := "unknown"
	if sub.CancellationDetails != nil && sub.CancellationDetails.Reason != "" {
		reason = string(sub.CancellationDetails.Reason)
	}

	canceledAt := time.Now()
	if sub.CanceledAt > 0 {
		canceledAt = time.Unix(sub.CanceledAt, 0)
	}

	metadata, err := json.Marshal(map[string]interface{}{
		"canceled_reason": reason,
		"stripe_metadata": sub.Metadata,
	})
	if err != nil {
		return err
	}

	if err := database.DB.Model(&subscriptions.Subscription{}).
		Where("stripe_subscription_id = ?", sub.ID).
		Updates(map[string]interface{}{
			"status":      "canceled",
			"canceled_at": canceledAt,
			"metadata":    metadata,
		}).Error; err != nil {
		return fmt.Errorf("failed to cancel subscription %s: %w", sub.ID, err)
	}

	// Only drop the customer to inactive when no other subscription of this
	// user is still active.
	var remaining int64
	if err := database.DB.Model(&subscriptions.Subscription{}).
		Where("user_id = ? AND status = ? AND stripe_subscription_id <> ?", row.UserID, "active", sub.ID).
		Count(&remaining).Error; err != nil {
		return err
	}
	if remaining > 0 {
		return nil
	}

	q := database.DB.Model(&customers.Customer{})
	if sub.Customer != nil && sub.Customer.ID != "" {
		q = q.Where("stripe_customer_id = ?", sub.Customer.ID)
	} else {
		q = q.Where("user_id = ?", row.UserID)
	}
	if err := q.Update("subscription_status", "inactive").Error; err != nil {
		return fmt.Errorf("failed to downgrade customer status: %w", err)
	}

	return nil
}

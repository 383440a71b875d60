package subscriptions

import (
	"net/http"
	"time"

	"unified-saas-backend/database"

	"github.com/gin-gonic/gin"
)

// subscriptionView is a Subscription row joined with its product and app
// summary, the shape the dashboard lists.
type subscriptionView struct {
	ID                   string     `json:"id"`
	StripeSubscriptionID string     `json:"stripe_subscription_id"`
	Status               string     `json:"status"`
	CurrentPeriodStart   time.Time  `json:"current_period_start"`
	CurrentPeriodEnd     time.Time  `json:"current_period_end"`
	CancelAtPeriodEnd    bool       `json:"cancel_at_period_end"`
	CanceledAt           *time.Time `json:"canceled_at"`
	Plan                 string     `json:"plan"`
	Amount               int64      `json:"amount"`
	Interval             string     `json:"interval"`
	AppName              string     `json:"app_name"`
	AppSlug              string     `json:"app_slug"`
}

// ListMySubscriptions returns the authenticated user's subscriptions, newest
// first.
func ListMySubscriptions(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not identified"})
		return
	}

	var rows []subscriptionView
	err := database.DB.Table("subscriptions").
		Select(`subscriptions.id, subscriptions.stripe_subscription_id, subscriptions.status,
			subscriptions.current_period_start, subscriptions.current_period_end,
			subscriptions.cancel_at_period_end, subscriptions.canceled_at,
			products.name AS plan, products.amount, products.interval,
			apps.name AS app_name, apps.slug AS app_slug`).
		Joins("LEFT JOIN products ON products.id = subscriptions.product_id").
		Joins("LEFT JOIN apps ON apps.id = subscriptions.app_id").
		Where("subscriptions.user_id = ?", userID).
		Order("subscriptions.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load subscriptions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"subscriptions": rows})
}

package customers

import (
	"net/http"

	"unified-saas-backend/database"

	"github.com/gin-gonic/gin"
)

type customerView struct {
	ID                 string `json:"id"`
	Email              string `json:"email"`
	StripeCustomerID   string `json:"stripe_customer_id"`
	SubscriptionStatus string `json:"subscription_status"`
	AppName            string `json:"app_name"`
	AppSlug            string `json:"app_slug"`
}

// ListMyAppCustomers returns the customers who hold a subscription on any app
// owned by the authenticated user.
func ListMyAppCustomers(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not identified"})
		return
	}

	var rows []customerView
	err := database.DB.Table("customers").
		Select(`DISTINCT customers.id, customers.email, customers.stripe_customer_id,
			customers.subscription_status, apps.name AS app_name, apps.slug AS app_slug`).
		Joins("JOIN subscriptions ON subscriptions.user_id = customers.user_id").
		Joins("JOIN apps ON apps.id = subscriptions.app_id").
		Where("apps.owner_id = ?", userID).
		Order("customers.email ASC").
		Scan(&rows).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load customers"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"customers": rows})
}

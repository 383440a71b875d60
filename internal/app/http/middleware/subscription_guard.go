package middleware

import (
	"net/http"

	"unified-saas-backend/config"
	"unified-saas-backend/database"
	"unified-saas-backend/internal/domain/customers"

	"github.com/gin-gonic/gin"
)

// RequireActiveSubscription gates premium endpoints on the denormalized
// customer status the webhook processor keeps in sync. Must run after
// AuthMiddleware.
func RequireActiveSubscription() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("user_id")
		if userID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not identified"})
			return
		}

		var cust customers.Customer
		if err := database.DB.Where("user_id = ? AND mode = ?", userID, config.STRIPE_MODE).First(&cust).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusPaymentRequired, gin.H{"error": "Subscription required"})
			return
		}
		if cust.SubscriptionStatus != "active" {
			c.AbortWithStatusJSON(http.StatusPaymentRequired, gin.H{"error": "Your subscription is not active"})
			return
		}

		c.Next()
	}
}

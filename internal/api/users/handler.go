package users

import (
	"net/http"

	"unified-saas-backend/config"
	"unified-saas-backend/database"
	"unified-saas-backend/internal/domain/customers"
	"unified-saas-backend/internal/domain/subscriptions"
	"unified-saas-backend/internal/domain/users"

	"github.com/gin-gonic/gin"
)

// GetCurrentUser returns the account plus its denormalized billing status
// (read from the customer row the webhook processor keeps in sync).
func GetCurrentUser(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var user users.User
	if err := database.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var cust *customers.Customer
	var row customers.Customer
	if err := database.DB.Where("user_id = ? AND mode = ?", userID, config.STRIPE_MODE).First(&row).Error; err == nil {
		cust = &row
	}

	var subs []subscriptions.Subscription
	database.DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&subs)

	c.JSON(http.StatusOK, BuildMeResponse(user, cust, subs))
}

func VerifyEmail(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing token"})
		return
	}

	var t users.VerificationToken
	if err := database.DB.Where("token = ?", token).First(&t).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired token"})
		return
	}

	if err := database.DB.Model(&users.User{}).Where("id = ?", t.UserID).Update("is_verified", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify user"})
		return
	}

	database.DB.Delete(&t)

	c.Redirect(http.StatusTemporaryRedirect, config.APP_URL+"/signin")
}

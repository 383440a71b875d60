package admin

import (
	"net/http"

	"unified-saas-backend/config"
	"unified-saas-backend/database"
	"unified-saas-backend/internal/domain/apps"
	"unified-saas-backend/internal/domain/customers"
	"unified-saas-backend/internal/domain/subscriptions"
	"unified-saas-backend/internal/domain/users"

	"github.com/gin-gonic/gin"
)

type AdminUser struct {
	ID                 uint    `json:"id"`
	Name               string  `json:"name"`
	Email              string  `json:"email"`
	Role               string  `json:"role"`
	IsVerified         bool    `json:"is_verified"`
	StripeCustomerID   *string `json:"stripe_customer_id,omitempty"`
	SubscriptionStatus string  `json:"subscription_status"`
	Apps               int64   `json:"apps"`
}

type AdminStats struct {
	TotalUsers          int64 `json:"total_users"`
	TotalApps           int64 `json:"total_apps"`
	ActiveSubscriptions int64 `json:"active_subscriptions"`
	// Monthly recurring revenue in minor currency units, yearly plans prorated.
	MRR int64 `json:"mrr"`
}

func AdminDashboard(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Welcome to the admin dashboard 👑",
	})
}

func ListAllUsers(c *gin.Context) {
	var list []users.User
	if err := database.DB.Order("id ASC").Find(&list).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load users"})
		return
	}

	out := make([]AdminUser, 0, len(list))
	for _, u := range list {
		au := AdminUser{
			ID:                 u.ID,
			Name:               u.Name,
			Email:              u.Email,
			Role:               u.Role,
			IsVerified:         u.IsVerified,
			SubscriptionStatus: "inactive",
		}

		var cust customers.Customer
		if err := database.DB.Where("user_id = ? AND mode = ?", u.ID, config.STRIPE_MODE).First(&cust).Error; err == nil {
			id := cust.StripeCustomerID
			au.StripeCustomerID = &id
			au.SubscriptionStatus = cust.SubscriptionStatus
		}

		database.DB.Model(&apps.App{}).Where("owner_id = ?", u.ID).Count(&au.Apps)

		out = append(out, au)
	}

	c.JSON(http.StatusOK, gin.H{"users": out})
}

func PlatformStats(c *gin.Context) {
	var stats AdminStats
	database.DB.Model(&users.User{}).Count(&stats.TotalUsers)
	database.DB.Model(&apps.App{}).Count(&stats.TotalApps)
	database.DB.Model(&subscriptions.Subscription{}).Where("status = ?", "active").Count(&stats.ActiveSubscriptions)

	row := database.DB.Table("subscriptions").
		Select("COALESCE(SUM(CASE WHEN products.interval = 'year' THEN products.amount / 12 ELSE products.amount END), 0)").
		Joins("JOIN products ON products.id = subscriptions.product_id").
		Where("subscriptions.status = ?", "active").
		Row()
	if err := row.Scan(&stats.MRR); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

package products

import (
	"net/http"

	"unified-saas-backend/database"
	"unified-saas-backend/internal/domain/apps"
	"unified-saas-backend/internal/domain/products"
	"unified-saas-backend/internal/domain/templates"

	"github.com/gin-gonic/gin"
)

// ProvisionProducts creates Stripe product/price pairs for an app and mirrors
// them locally. Owner-only.
func ProvisionProducts(c *gin.Context) {
	var body struct {
		AppID    string                 `json:"appId"`
		Products []templates.ProductDef `json:"products"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.AppID == "" || len(body.Products) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "App ID and products are required"})
		return
	}

	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not identified"})
		return
	}

	var app apps.App
	if err := database.DB.Where("id = ?", body.AppID).First(&app).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "App not found"})
		return
	}
	if app.OwnerID != userID && c.GetString("role") != "admin" {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not your app"})
		return
	}

	created, err := Provision(database.DB, &app, body.Products)
	if err != nil {
		// Prior iterations of this call already exist in Stripe and locally;
		// surface the failure and leave them for reconciliation.
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": created})
}

// ListAppProducts returns an app's active products: the public pricing data.
func ListAppProducts(c *gin.Context) {
	var app apps.App
	if err := database.DB.Where("slug = ? AND active = ?", c.Param("slug"), true).First(&app).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "App not found"})
		return
	}

	var list []products.Product
	if err := database.DB.
		Where("app_id = ? AND active = ?", app.ID, true).
		Order("amount ASC").
		Find(&list).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": list})
}

package apps

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"unified-saas-backend/database"
	"unified-saas-backend/internal/api/products"
	appsdomain "unified-saas-backend/internal/domain/apps"
	productsdomain "unified-saas-backend/internal/domain/products"
	"unified-saas-backend/internal/domain/subscriptions"
	"unified-saas-backend/internal/domain/templates"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// CreateApp registers a new storefront for the authenticated owner. When a
// template id is given, the template's default products are provisioned right
// away through the same path as the provisioning endpoint.
func CreateApp(c *gin.Context) {
	var body struct {
		Name         string `json:"name" binding:"required"`
		Description  string `json:"description"`
		PrimaryColor string `json:"primary_color"`
		LogoURL      string `json:"logo_url"`
		TemplateID   string `json:"template_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "App name is required"})
		return
	}
	if len(body.Name) < 3 || len(body.Name) > 50 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "App name must be between 3 and 50 characters"})
		return
	}
	if body.PrimaryColor != "" && !hexColor.MatchString(body.PrimaryColor) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid color format. Please use hex color (e.g., #FF0000)"})
		return
	}

	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not identified"})
		return
	}

	slug, err := appsdomain.EnsureUniqueSlug(database.DB, appsdomain.MakeSlug(body.Name))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate slug"})
		return
	}

	app := appsdomain.App{
		Name:        body.Name,
		Slug:        slug,
		Description: body.Description,
		OwnerID:     userID,
		Active:      true,
	}
	if body.PrimaryColor != "" {
		app.PrimaryColor = body.PrimaryColor
	}
	if body.LogoURL != "" {
		app.LogoURL = &body.LogoURL
	}

	if err := database.DB.Create(&app).Error; err != nil {
		fmt.Println("❌ App insert error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create app"})
		return
	}

	var created []productsdomain.Product
	if body.TemplateID != "" {
		var tmpl templates.Template
		if err := database.DB.Where("id = ?", body.TemplateID).First(&tmpl).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Template not found", "app": app})
			return
		}
		defs, err := tmpl.DecodeDefaultProducts()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid template products", "app": app})
			return
		}
		created, err = products.Provision(database.DB, &app, defs)
		if err != nil {
			// The app itself exists; partially provisioned products stay.
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "app": app, "products": created})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"app": app, "products": created})
}

// ListMyApps returns every app owned by the authenticated user.
func ListMyApps(c *gin.Context) {
	userID := c.GetUint("user_id")

	var list []appsdomain.App
	if err := database.DB.Where("owner_id = ?", userID).Order("created_at DESC").Find(&list).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load apps"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"apps": list})
}

// GetAppBySlug serves the public pricing page data: the active app plus its
// active products. No auth.
func GetAppBySlug(c *gin.Context) {
	slug := c.Param("slug")

	var app appsdomain.App
	if err := database.DB.Where("slug = ? AND active = ?", slug, true).First(&app).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "App not found"})
		return
	}

	var list []productsdomain.Product
	if err := database.DB.
		Where("app_id = ? AND active = ?", app.ID, true).
		Order("amount ASC").
		Find(&list).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"app": app, "products": list})
}

// UpdateApp applies settings changes (name, branding, active flag).
func UpdateApp(c *gin.Context) {
	app, ok := ownedApp(c)
	if !ok {
		return
	}

	var body struct {
		Name         *string `json:"name"`
		Description  *string `json:"description"`
		PrimaryColor *string `json:"primary_color"`
		LogoURL      *string `json:"logo_url"`
		Active       *bool   `json:"active"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	updates := map[string]interface{}{}
	if body.Name != nil {
		if len(*body.Name) < 3 || len(*body.Name) > 50 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "App name must be between 3 and 50 characters"})
			return
		}
		updates["name"] = *body.Name
	}
	if body.Description != nil {
		updates["description"] = *body.Description
	}
	if body.PrimaryColor != nil {
		if !hexColor.MatchString(*body.PrimaryColor) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid color format. Please use hex color (e.g., #FF0000)"})
			return
		}
		updates["primary_color"] = *body.PrimaryColor
	}
	if body.LogoURL != nil {
		updates["logo_url"] = *body.LogoURL
	}
	if body.Active != nil {
		updates["active"] = *body.Active
	}
	if len(updates) == 0 {
		c.JSON(http.StatusOK, gin.H{"app": app})
		return
	}

	if err := database.DB.Model(&appsdomain.App{}).Where("id = ?", app.ID).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update app"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": true})
}

// DeleteApp removes an app and cascades to its products and subscriptions.
// Destructive; the UI asks for explicit confirmation before calling this.
func DeleteApp(c *gin.Context) {
	app, ok := ownedApp(c)
	if !ok {
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("app_id = ?", app.ID).Delete(&subscriptions.Subscription{}).Error; err != nil {
			return err
		}
		if err := tx.Where("app_id = ?", app.ID).Delete(&productsdomain.Product{}).Error; err != nil {
			return err
		}
		return tx.Delete(&appsdomain.App{}, "id = ?", app.ID).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete app"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// VerifyIntegration HEAD-checks the tenant's external page and stamps the
// outcome into the app's metadata.
func VerifyIntegration(c *gin.Context) {
	app, ok := ownedApp(c)
	if !ok {
		return
	}

	var body struct {
		ExternalURL string `json:"external_url" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "external_url is required"})
		return
	}

	parsed, err := url.ParseRequestURI(body.ExternalURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid external URL"})
		return
	}

	status := "verified"
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Head(parsed.String())
	if err != nil {
		status = "failed"
	} else {
		resp.Body.Close()
	}

	metadata, err := json.Marshal(map[string]interface{}{
		"external_url":       body.ExternalURL,
		"integration_status": status,
		"last_verified":      time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode metadata"})
		return
	}

	if err := database.DB.Model(&appsdomain.App{}).
		Where("id = ?", app.ID).
		Update("metadata", metadata).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update app"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"verified": status == "verified", "integration_status": status})
}

// ownedApp loads the app from the :id param and enforces ownership.
func ownedApp(c *gin.Context) (*appsdomain.App, bool) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not identified"})
		return nil, false
	}

	var app appsdomain.App
	if err := database.DB.Where("id = ?", c.Param("id")).First(&app).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "App not found"})
		return nil, false
	}
	if app.OwnerID != userID && c.GetString("role") != "admin" {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not your app"})
		return nil, false
	}
	return &app, true
}

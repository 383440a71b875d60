package templates

import (
	"encoding/json"
	"net/http"

	"unified-saas-backend/database"
	"unified-saas-backend/internal/domain/templates"

	"github.com/gin-gonic/gin"
)

// ListTemplates returns the template catalog used by the app creation flow.
func ListTemplates(c *gin.Context) {
	var list []templates.Template
	if err := database.DB.Order("name ASC").Find(&list).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load templates"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"templates": list})
}

func GetTemplate(c *gin.Context) {
	var tmpl templates.Template
	if err := database.DB.Where("id = ?", c.Param("id")).First(&tmpl).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
		return
	}

	c.JSON(http.StatusOK, tmpl)
}

// CreateTemplate seeds a catalog entry. Admin only; default products are
// validated lazily when an app is created from the template.
func CreateTemplate(c *gin.Context) {
	var body struct {
		Name            string                 `json:"name" binding:"required"`
		Description     string                 `json:"description"`
		DefaultProducts []templates.ProductDef `json:"default_products"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Template name is required"})
		return
	}

	tmpl := templates.Template{
		Name:        body.Name,
		Description: body.Description,
	}
	if body.DefaultProducts != nil {
		raw, err := json.Marshal(body.DefaultProducts)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid default products"})
			return
		}
		tmpl.DefaultProducts = raw
	}

	if err := database.DB.Create(&tmpl).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Template name may already exist"})
		return
	}

	c.JSON(http.StatusOK, tmpl)
}

package apps

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// App is a tenant's branded storefront. Products and subscriptions hang off it
// and are removed when the app is deleted.
type App struct {
	ID           string `gorm:"type:uuid;primaryKey"`
	Name         string `gorm:"not null"`
	Slug         string `gorm:"not null;uniqueIndex:idx_apps_slug"`
	Description  string
	LogoURL      *string `gorm:"column:logo_url"`
	PrimaryColor string  `gorm:"column:primary_color;default:'#3B82F6'"`
	OwnerID      uint    `gorm:"column:owner_id;index;not null"`
	Active       bool    `gorm:"default:true"`

	// Free-form; holds integration_status / external_url / last_verified.
	Metadata datatypes.JSON

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (a *App) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

package products

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Product is a purchasable plan scoped to one app, mirroring one Stripe
// product/price pair. Rows are created only by the provisioning service; a
// price change means a new Product, never an update of an existing one.
type Product struct {
	ID          string `gorm:"type:uuid;primaryKey"`
	AppID       string `gorm:"column:app_id;type:uuid;index;not null"`
	Name        string `gorm:"not null"`
	Description string
	Amount      int64  `gorm:"not null"` // minor currency units
	Currency    string `gorm:"default:'usd'"`
	Interval    string `gorm:"not null"` // month | year

	Features datatypes.JSON

	StripeProductID string `gorm:"column:stripe_product_id;not null"`
	StripePriceID   string `gorm:"column:stripe_price_id;not null;uniqueIndex:idx_products_stripe_price_id"`

	Active bool `gorm:"default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

package customers

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Customer maps an internal user to a Stripe customer. At most one row exists
// per (user, mode) pair; the composite unique index is what makes the
// resolver's insert the linearization point under concurrent checkouts.
//
// SubscriptionStatus is a denormalized cache written by the webhook processor.
// Stripe remains the source of truth.
type Customer struct {
	ID     string `gorm:"type:uuid;primaryKey"`
	UserID uint   `gorm:"column:user_id;not null;uniqueIndex:idx_customers_user_mode"`
	Mode   string `gorm:"default:'live';uniqueIndex:idx_customers_user_mode"`
	Email  string `gorm:"not null"`

	StripeCustomerID   string `gorm:"column:stripe_customer_id;uniqueIndex:idx_customers_stripe_customer_id"`
	SubscriptionStatus string `gorm:"column:subscription_status;default:'inactive'"`

	Metadata datatypes.JSON

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

package subscriptions

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Subscription mirrors one Stripe subscription object. Rows are upserted by the
// webhook processor keyed on stripe_subscription_id, never duplicated.
type Subscription struct {
	ID         string `gorm:"type:uuid;primaryKey"`
	UserID     uint   `gorm:"column:user_id;index;not null"`
	AppID      string `gorm:"column:app_id;type:uuid;index;not null"`
	ProductID  string `gorm:"column:product_id;type:uuid;not null"`
	CustomerID string `gorm:"column:customer_id;type:uuid"`

	StripeSubscriptionID string `gorm:"column:stripe_subscription_id;not null;uniqueIndex:idx_subscriptions_stripe_subscription_id"`

	Status             string `gorm:"not null"`
	CurrentPeriodStart time.Time
	CurrentPeriodEnd   time.Time
	CancelAtPeriodEnd  bool
	CanceledAt         *time.Time

	Metadata datatypes.JSON

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (s *Subscription) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

package customers

import (
	"errors"
	"fmt"
	"log"

	"unified-saas-backend/internal/domain/users"
	stripeinfra "unified-saas-backend/internal/infra/stripe"

	stripeapi "github.com/stripe/stripe-go/v75"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrIdentityLookup means the user behind a checkout attempt has no usable
// identity record (missing row or empty email).
var ErrIdentityLookup = errors.New("could not resolve user identity")

// Resolve returns the Stripe customer id for userID, creating the Stripe
// customer and the local row on first use.
//
// Concurrency: the insert is the linearization point. Two simultaneous first
// checkouts may both create a Stripe customer, but only one insert wins the
// (user_id, mode) unique index; the loser discards its Stripe customer
// reference and adopts the winning row, so at most one customer id is ever
// handed out per user.
func Resolve(db *gorm.DB, userID uint, mode string) (string, error) {
	var existing Customer
	err := db.Where("user_id = ? AND mode = ?", userID, mode).First(&existing).Error
	if err == nil && existing.StripeCustomerID != "" {
		return existing.StripeCustomerID, nil
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var user users.User
	if err := db.Where("id = ?", userID).First(&user).Error; err != nil {
		return "", ErrIdentityLookup
	}
	if user.Email == "" {
		return "", ErrIdentityLookup
	}

	cus, err := stripeinfra.Client.CreateCustomer(&stripeapi.CustomerParams{
		Email: stripeapi.String(user.Email),
		Metadata: map[string]string{
			"user_id": fmt.Sprint(user.ID),
			"mode":    mode,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create stripe customer: %w", err)
	}

	row := Customer{
		UserID:             user.ID,
		Mode:               mode,
		Email:              user.Email,
		StripeCustomerID:   cus.ID,
		SubscriptionStatus: "inactive",
	}
	res := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "mode"}},
		DoNothing: true,
	}).Create(&row)
	if res.Error != nil {
		return "", res.Error
	}

	if res.RowsAffected == 0 {
		// Lost the race: a concurrent checkout inserted first. Drop our Stripe
		// customer reference and re-read the winning row.
		log.Printf("customer resolver: duplicate insert for user %d, discarding stripe customer %s", user.ID, cus.ID)
		var winner Customer
		if err := db.Where("user_id = ? AND mode = ?", user.ID, mode).First(&winner).Error; err != nil {
			return "", err
		}
		return winner.StripeCustomerID, nil
	}

	return cus.ID, nil
}

package users

import "time"

type MeResponse struct {
	User    UserDTO    `json:"user"`
	Billing BillingDTO `json:"billing"`
}

/* ---------- USER ---------- */

type UserDTO struct {
	ID         uint   `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	IsVerified bool   `json:"is_verified"`
}

/* ---------- BILLING ---------- */

type BillingDTO struct {
	SubscriptionStatus string            `json:"subscription_status"`
	StripeCustomerID   *string           `json:"stripe_customer_id,omitempty"`
	Subscriptions      []SubscriptionDTO `json:"subscriptions"`
}

type SubscriptionDTO struct {
	ID                string     `json:"id"`
	AppID             string     `json:"app_id"`
	Status            string     `json:"status"`
	CurrentPeriodEnd  *time.Time `json:"current_period_end,omitempty"`
	CancelAtPeriodEnd bool       `json:"cancel_at_period_end"`
}

package stripe

import "strings"

// NormalizeSubscriptionStatus folds Stripe's subscription statuses into the
// set we persist on customers.subscription_status.
func NormalizeSubscriptionStatus(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "inactive"
	}
	switch s {
	case "active", "trialing":
		return "active"
	case "past_due", "unpaid":
		return "past_due"
	case "canceled", "incomplete_expired":
		return "canceled"
	default:
		return s
	}
}

// IsActive reports whether a raw Stripe status counts as a live subscription.
func IsActive(s string) bool {
	return NormalizeSubscriptionStatus(s) == "active"
}

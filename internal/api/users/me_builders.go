package users

import (
	"unified-saas-backend/internal/domain/customers"
	"unified-saas-backend/internal/domain/subscriptions"
	"unified-saas-backend/internal/domain/users"
)

func BuildMeResponse(u users.User, cust *customers.Customer, subs []subscriptions.Subscription) MeResponse {
	return MeResponse{
		User:    BuildUserDTO(u),
		Billing: BuildBillingDTO(cust, subs),
	}
}

func BuildUserDTO(u users.User) UserDTO {
	return UserDTO{
		ID:         u.ID,
		Email:      u.Email,
		Name:       u.Name,
		Role:       u.Role,
		IsVerified: u.IsVerified,
	}
}

func BuildBillingDTO(cust *customers.Customer, subs []subscriptions.Subscription) BillingDTO {
	dto := BillingDTO{
		SubscriptionStatus: "inactive",
		Subscriptions:      make([]SubscriptionDTO, 0, len(subs)),
	}
	if cust != nil {
		id := cust.StripeCustomerID
		dto.StripeCustomerID = &id
		dto.SubscriptionStatus = cust.SubscriptionStatus
	}
	for _, s := range subs {
		dto.Subscriptions = append(dto.Subscriptions, BuildSubscriptionDTO(s))
	}
	return dto
}

func BuildSubscriptionDTO(s subscriptions.Subscription) SubscriptionDTO {
	dto := SubscriptionDTO{
		ID:                s.ID,
		AppID:             s.AppID,
		Status:            s.Status,
		CancelAtPeriodEnd: s.CancelAtPeriodEnd,
	}
	if !s.CurrentPeriodEnd.IsZero() {
		end := s.CurrentPeriodEnd
		dto.CurrentPeriodEnd = &end
	}
	return dto
}

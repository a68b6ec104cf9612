// internal/domain/subscription/dto.go
package subscription

type SubscribeRequest struct {
	TierID int64 `json:"tier_id" binding:"required"`

	// Optional overrides; status defaults to active for free tiers and
	// pending for paid tiers.
	Status          Status   `json:"status" binding:"omitempty,oneof=pending active"`
	PaymentProvider string   `json:"payment_provider" binding:"omitempty,oneof=none manual stripe paystack"`
	AmountPaid      *float64 `json:"amount_paid" binding:"omitempty,min=0"`

	// External correlation id, when the caller already holds one.
	ProviderSubscriptionID string `json:"provider_subscription_id"`

	Metadata map[string]interface{} `json:"metadata"`
}

// ActivateRequest carries payment details reported by the provider callback.
type ActivateRequest struct {
	AmountPaid             *float64 `json:"amount_paid" binding:"omitempty,min=0"`
	PaymentProvider        string   `json:"payment_provider" binding:"omitempty,oneof=none manual stripe paystack"`
	ProviderSubscriptionID string   `json:"provider_subscription_id"`
}

type CancelRequest struct {
	Reason  string `json:"reason" binding:"required,max=500"`
	Confirm bool   `json:"confirm"`
}

type RenewRequest struct {
	ExtendMonths *int `json:"extend_months" binding:"omitempty,min=1,max=36"`
}

type ListFilters struct {
	Status    *Status `form:"status" binding:"omitempty,oneof=pending active cancelled expired"`
	TierID    *int64  `form:"tier_id"`
	UserID    *int64  `form:"user_id"` // admin listing only
	Page      int     `form:"page" binding:"omitempty,min=1"`
	PageSize  int     `form:"page_size" binding:"omitempty,min=1,max=100"`
	SortBy    string  `form:"sort_by" binding:"omitempty,oneof=created_at started_at expires_at status"`
	SortOrder string  `form:"sort_order" binding:"omitempty,oneof=asc desc"`
}

type ListResponse struct {
	Subscriptions []SubscriptionDetails `json:"subscriptions"`
	Total         int64                 `json:"total"`
	Page          int                   `json:"page"`
	PageSize      int                   `json:"page_size"`
	TotalPages    int                   `json:"total_pages"`
}

type ExpireCheckResponse struct {
	Expired int64 `json:"expired"`
}

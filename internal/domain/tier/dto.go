// internal/domain/tier/dto.go
package tier

type CreateTierRequest struct {
	Slug        string `json:"slug" binding:"omitempty,max=100"`
	Name        string `json:"name" binding:"required,max=255"`
	Description string `json:"description"`

	// Pricing
	Price    float64 `json:"price" binding:"min=0"`
	Currency string  `json:"currency" binding:"omitempty,len=3"`

	// Billing
	BillingCycleMonths int `json:"billing_cycle_months" binding:"omitempty,min=1"`
	BillingCycleDays   int `json:"billing_cycle_days" binding:"omitempty,min=1"`

	// Presentation
	Features  []string `json:"features"`
	IsPopular bool     `json:"is_popular"`

	// Limits
	MaxUsers *int32 `json:"max_users"`

	// Ordering
	DisplayOrder    int `json:"display_order"`
	EntitlementRank int `json:"entitlement_rank" binding:"min=0"`

	// External references
	StripePriceID string `json:"stripe_price_id"`
}

type UpdateTierRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=255"`
	Description *string `json:"description"`

	Price    *float64 `json:"price" binding:"omitempty,min=0"`
	Currency *string  `json:"currency" binding:"omitempty,len=3"`

	BillingCycleMonths *int `json:"billing_cycle_months" binding:"omitempty,min=1"`
	BillingCycleDays   *int `json:"billing_cycle_days" binding:"omitempty,min=1"`

	Features  []string `json:"features"`
	IsPopular *bool    `json:"is_popular"`

	MaxUsers *int32 `json:"max_users"`

	DisplayOrder    *int `json:"display_order"`
	EntitlementRank *int `json:"entitlement_rank" binding:"omitempty,min=0"`

	StripePriceID *string `json:"stripe_price_id"`
}

type TierListFilters struct {
	IsActive  *bool  `form:"is_active"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	SortBy    string `form:"sort_by" binding:"omitempty,oneof=display_order entitlement_rank price name created_at"`
	SortOrder string `form:"sort_order" binding:"omitempty,oneof=asc desc"`
}

type TierListResponse struct {
	Tiers      []Tier `json:"tiers"`
	Total      int64  `json:"total"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
	TotalPages int    `json:"total_pages"`
}

type ReorderItem struct {
	ID           int64 `json:"id" binding:"required"`
	DisplayOrder int   `json:"display_order"`
}

type ReorderRequest struct {
	Items []ReorderItem `json:"items" binding:"required,min=1,dive"`
}

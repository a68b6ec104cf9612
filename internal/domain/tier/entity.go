// internal/domain/tier/entity.go
package tier

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

// Tier is a subscription plan with a price, billing cadence and an
// entitlement rank. DisplayOrder is pure catalog ordering; EntitlementRank
// is the ordinal used by access checks. The two are deliberately separate
// so an admin reshuffling the pricing page cannot change who sees what.
type Tier struct {
	ID          int64          `json:"id" db:"id"`
	Slug        string         `json:"slug" db:"slug"`
	Name        string         `json:"name" db:"name"`
	Description sql.NullString `json:"description,omitempty" db:"description"`

	// Pricing
	Price    float64 `json:"price" db:"price"`
	Currency string  `json:"currency" db:"currency"`

	// Billing
	BillingCycleMonths int `json:"billing_cycle_months" db:"billing_cycle_months"`
	BillingCycleDays   int `json:"billing_cycle_days" db:"billing_cycle_days"`

	// Presentation
	Features  pq.StringArray `json:"features" db:"features"`
	IsPopular bool           `json:"is_popular" db:"is_popular"`

	// Limits; -1 means unlimited
	MaxUsers int32 `json:"max_users" db:"max_users"`

	// Status & ordering
	IsActive        bool `json:"is_active" db:"is_active"`
	DisplayOrder    int  `json:"display_order" db:"display_order"`
	EntitlementRank int  `json:"entitlement_rank" db:"entitlement_rank"`

	// External references
	StripePriceID sql.NullString `json:"stripe_price_id,omitempty" db:"stripe_price_id"`

	// Timestamps
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsFree reports whether subscribing to the tier requires no payment.
func (t *Tier) IsFree() bool {
	return t.Price == 0
}

type TierStats struct {
	TotalTiers          int64   `json:"total_tiers"`
	ActiveTiers         int64   `json:"active_tiers"`
	InactiveTiers       int64   `json:"inactive_tiers"`
	AveragePrice        float64 `json:"average_price"`
	TotalSubscribers    int64   `json:"total_subscribers"`
	MostPopularTierID   int64   `json:"most_popular_tier_id,omitempty"`
	MostPopularTierName string  `json:"most_popular_tier_name,omitempty"`
}

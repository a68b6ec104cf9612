// internal/domain/subscription/entity.go
package subscription

import (
	"database/sql"
	"time"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
)

// Valid reports whether s is a known lifecycle status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusActive, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

// Payment providers carried on a subscription row.
const (
	ProviderNone     = "none"
	ProviderManual   = "manual"
	ProviderStripe   = "stripe"
	ProviderPaystack = "paystack"
)

type UserSubscription struct {
	ID        int64  `json:"id" db:"id"`
	Reference string `json:"subscription_reference" db:"subscription_reference"`

	// Related entities
	UserID int64 `json:"user_id" db:"user_id"`
	TierID int64 `json:"tier_id" db:"tier_id"`

	// Lifecycle
	Status      Status       `json:"status" db:"status"`
	StartedAt   sql.NullTime `json:"started_at,omitempty" db:"started_at"`
	ExpiresAt   sql.NullTime `json:"expires_at,omitempty" db:"expires_at"`
	CancelledAt sql.NullTime `json:"cancelled_at,omitempty" db:"cancelled_at"`

	// Payment
	PaymentProvider        string          `json:"payment_provider" db:"payment_provider"`
	ProviderSubscriptionID sql.NullString  `json:"provider_subscription_id,omitempty" db:"provider_subscription_id"`
	AmountPaid             sql.NullFloat64 `json:"amount_paid,omitempty" db:"amount_paid"`
	Currency               string          `json:"currency" db:"currency"`

	// Metadata
	Metadata map[string]interface{} `json:"metadata,omitempty" db:"metadata"`

	// Timestamps
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsExpired reports whether the subscription's expiry has passed.
func (s *UserSubscription) IsExpired(now time.Time) bool {
	return s.ExpiresAt.Valid && s.ExpiresAt.Time.Before(now)
}

// SubscriptionDetails is the "with details" projection used by all read
// paths: the subscription joined with tier and user display fields.
type SubscriptionDetails struct {
	UserSubscription

	TierName        string  `json:"tier_name" db:"tier_name"`
	TierSlug        string  `json:"tier_slug" db:"tier_slug"`
	TierPrice       float64 `json:"tier_price" db:"tier_price"`
	EntitlementRank int     `json:"entitlement_rank" db:"entitlement_rank"`
	UserName        string  `json:"user_name" db:"user_name"`
	UserEmail       string  `json:"user_email" db:"user_email"`
}

type TierBreakdown struct {
	TierID   int64  `json:"tier_id"`
	TierName string `json:"tier_name"`
	Count    int64  `json:"count"`
}

type Stats struct {
	TotalSubscriptions     int64           `json:"total_subscriptions"`
	PendingSubscriptions   int64           `json:"pending_subscriptions"`
	ActiveSubscriptions    int64           `json:"active_subscriptions"`
	CancelledSubscriptions int64           `json:"cancelled_subscriptions"`
	ExpiredSubscriptions   int64           `json:"expired_subscriptions"`
	TotalRevenue           float64         `json:"total_revenue"`
	ByTier                 []TierBreakdown `json:"by_tier"`
}

// internal/events/event.go
package events

import "time"

type EventType string

const (
	EventSubscriptionCreated   EventType = "subscription.created"
	EventSubscriptionActivated EventType = "subscription.activated"
	EventSubscriptionRenewed   EventType = "subscription.renewed"
	EventSubscriptionCancelled EventType = "subscription.cancelled"
	EventSubscriptionExpired   EventType = "subscription.expired"
)

// Event is a subscription lifecycle notification pushed to connected
// clients. The owning user always receives it; admin connections receive
// everything.
type Event struct {
	Type           EventType `json:"type"`
	SubscriptionID int64     `json:"subscription_id"`
	UserID         int64     `json:"user_id"`
	TierID         int64     `json:"tier_id"`
	Status         string    `json:"status"`
	At             time.Time `json:"at"`
}

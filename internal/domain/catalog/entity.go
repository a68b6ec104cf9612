// internal/domain/catalog/entity.go
//
// Read models for entities owned by other parts of the platform. This
// service only reads them (and, for users, maintains the denormalized
// active_subscription_id pointer).
package catalog

import "database/sql"

type ContentKind string

const (
	KindCourse  ContentKind = "course"
	KindPathway ContentKind = "pathway"
)

// Valid reports whether k names a known content kind.
func (k ContentKind) Valid() bool {
	return k == KindCourse || k == KindPathway
}

type User struct {
	ID                   int64         `json:"id" db:"id"`
	FullName             string        `json:"full_name" db:"full_name"`
	Email                string        `json:"email" db:"email"`
	InstitutionID        sql.NullInt64 `json:"institution_id,omitempty" db:"institution_id"`
	ActiveSubscriptionID sql.NullInt64 `json:"active_subscription_id,omitempty" db:"active_subscription_id"`
}

// ContentAccessInfo is what the entitlement resolver needs to know about a
// course or pathway: its required tier, its price, and (pathways only) the
// institution that owns it.
type ContentAccessInfo struct {
	RequiredTierID sql.NullInt64 `db:"subscription_tier_id"`
	Price          float64       `db:"price"`
	InstitutionID  sql.NullInt64 `db:"institution_id"`
}

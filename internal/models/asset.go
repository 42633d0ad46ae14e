package models

import "time"

// Condition statuses an asset can be in. Any state is reachable from any
// other; the set itself is closed and enforced on status changes.
const (
	ConditionGood           = "Good"
	ConditionLost           = "Lost"
	ConditionDamaged        = "Damaged"
	ConditionDecommissioned = "Decommissioned"
)

// Lifecycle statuses. Deleted assets disappear from reads; their audit and
// status-history rows stay.
const (
	LifecycleActive  = "active"
	LifecycleDeleted = "deleted"
)

// ValidConditionStatus reports whether s is one of the known condition statuses.
func ValidConditionStatus(s string) bool {
	switch s {
	case ConditionGood, ConditionLost, ConditionDamaged, ConditionDecommissioned:
		return true
	}
	return false
}

type Asset struct {
	ID              int       `json:"id"`
	Category        string    `json:"category"`
	Brand           string    `json:"brand"`
	Serial          string    `json:"serial"`
	Quantity        int       `json:"quantity"`
	Location        string    `json:"location"`
	Notes           string    `json:"notes"`
	ConditionStatus string    `json:"condition_status"`
	Status          string    `json:"status"`
	CreatedBy       *int      `json:"created_by"`
	CreatedByName   string    `json:"created_by_name,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

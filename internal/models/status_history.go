package models

import "time"

// StatusHistoryEntry is one append-only condition-status transition.
// OldStatus is nil only for the implicit entry written on asset creation.
type StatusHistoryEntry struct {
	ID            int       `json:"id"`
	AssetID       int       `json:"asset_id"`
	OldStatus     *string   `json:"old_status"`
	NewStatus     string    `json:"new_status"`
	ChangedBy     *int      `json:"changed_by"`
	ChangedByName string    `json:"changed_by_name,omitempty"`
	ChangeReason  string    `json:"change_reason"`
	CreatedAt     time.Time `json:"created_at"`
}

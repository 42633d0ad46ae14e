package models

import (
	"encoding/json"
	"time"
)

// Audit actions.
const (
	ActionCreate       = "CREATE"
	ActionUpdate       = "UPDATE"
	ActionDelete       = "DELETE"
	ActionUpdateStatus = "UPDATE_STATUS"
)

// AuditEntry is one append-only audit log row. OldValues/NewValues are JSON
// field snapshots; nil means not applicable (no old values on CREATE, no new
// values on DELETE).
type AuditEntry struct {
	ID        int             `json:"id"`
	UserID    *int            `json:"user_id"`
	UserName  string          `json:"user_name,omitempty"`
	Action    string          `json:"action"`
	TableName string          `json:"table_name"`
	RecordID  int             `json:"record_id"`
	OldValues json.RawMessage `json:"old_values"`
	NewValues json.RawMessage `json:"new_values"`
	IPAddress string          `json:"ip_address"`
	UserAgent string          `json:"user_agent"`
	CreatedAt time.Time       `json:"created_at"`
}

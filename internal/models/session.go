package models

import "time"

// Session is one time-bounded proof of authentication. The ID is the opaque
// bearer token itself; a user may hold several valid sessions at once.
type Session struct {
	ID        string    `json:"-"`
	UserID    int       `json:"user_id"`
	IPAddress string    `json:"ip_address,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

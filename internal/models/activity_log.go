package models

import "time"

// ActivityLog is one audit record. UserID is nil for system actions.
type ActivityLog struct {
	ID        int       `json:"id"`
	UserID    *int      `json:"user_id,omitempty"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail"`
	Entity    string    `json:"entity"`
	CreatedAt time.Time `json:"created_at"`
}

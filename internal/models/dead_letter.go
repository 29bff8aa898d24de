package models

import "time"

// DeadLetter is a background task that exhausted its retries.
type DeadLetter struct {
	ID        int       `json:"id"`
	TaskID    string    `json:"task_id"`
	Kind      string    `json:"kind"`
	Payload   string    `json:"payload"`
	Attempts  int       `json:"attempts"`
	LastError string    `json:"last_error"`
	CreatedAt time.Time `json:"created_at"`
}

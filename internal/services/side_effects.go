package services

import (
	"context"

	"marketBack/internal/tasks"
)

// Payloads of the background tasks enqueued by the services.

type AuditPayload struct {
	UserID *int   `json:"user_id,omitempty"`
	Action string `json:"action"`
	Detail string `json:"detail"`
	Entity string `json:"entity"`
}

type OfferEmailPayload struct {
	OfferID int `json:"offer_id"`
}

type NotificationPayload struct {
	UserID  int    `json:"user_id"`
	Type    string `json:"type"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Link    string `json:"link,omitempty"`
}

// AdminReviewPayload fans a notification out to every admin.
type AdminReviewPayload struct {
	ListingID   int    `json:"listing_id"`
	ListingName string `json:"listing_name"`
	OwnerID     int    `json:"owner_id"`
}

type ProofCleanupPayload struct {
	Paths []string `json:"paths"`
}

func userRef(id int) *int {
	return &id
}

// enqueue queues a side effect. The primary write has already happened, so a
// failure is only logged.
func enqueue(ctx context.Context, q tasks.Enqueuer, logger Logger, kind string, payload interface{}) {
	if q == nil {
		return
	}
	if err := q.Enqueue(ctx, kind, payload); err != nil && logger != nil {
		logger.Errorf("enqueue %s: %v", kind, err)
	}
}

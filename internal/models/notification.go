package models

import "time"

const (
	NotificationNewOffer       = "new_offer"
	NotificationOfferStatus    = "offer_status"
	NotificationListingUpdated = "listing_updated"
	NotificationListingPending = "listing_pending"
	NotificationListingReview  = "listing_review"
)

type Notification struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Link      string    `json:"link,omitempty"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

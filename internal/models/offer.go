package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const (
	OfferStatusPending   = "pending"
	OfferStatusAccepted  = "accepted"
	OfferStatusRejected  = "rejected"
	OfferStatusWithdrawn = "withdrawn"
	OfferStatusExpired   = "expired"
)

const DefaultOfferMessage = "No message provided"

type Offer struct {
	ID          int             `json:"id"`
	ListingID   int             `json:"listing_id"`
	UserID      int             `json:"user_id"`
	SellerID    int             `json:"seller_id"`
	Amount      decimal.Decimal `json:"amount"`
	Message     string          `json:"message"`
	IsPrivate   bool            `json:"is_private"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   *time.Time      `json:"updated_at,omitempty"`
	ListingName string          `json:"listing_name,omitempty"`
}

type OfferRequest struct {
	UserID    int
	ListingID int
	Amount    decimal.Decimal
	Message   string
}

// IsActiveOfferStatus reports whether an offer in this status blocks another
// offer from the same buyer on the same listing.
func IsActiveOfferStatus(status string) bool {
	return status == OfferStatusPending || status == OfferStatusAccepted
}

// OfferActiveKey is the value of offers.active_key while the offer is active.
func OfferActiveKey(listingID, userID int) string {
	return fmt.Sprintf("%d:%d", listingID, userID)
}

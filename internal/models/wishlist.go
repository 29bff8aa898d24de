package models

import "time"

const (
	WishlistActionAdded   = "added"
	WishlistActionRemoved = "removed"
)

type WishlistEntry struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	ListingID int       `json:"listing_id"`
	CreatedAt time.Time `json:"created_at"`
	Listing   *Listing  `json:"listing,omitempty"`
}

type WishlistToggleResult struct {
	Action     string `json:"action"`
	InWishlist bool   `json:"in_wishlist"`
}

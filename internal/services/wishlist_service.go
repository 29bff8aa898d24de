package services

import (
	"context"
	"errors"
	"fmt"

	"marketBack/internal/models"
)

type WishlistService struct {
	Listings ListingStore
	Wishlist WishlistStore
}

// Toggle removes the listing from the user's wishlist when present and adds it
// otherwise.
func (s *WishlistService) Toggle(ctx context.Context, userID, listingID int) (models.WishlistToggleResult, error) {
	if listingID <= 0 {
		return models.WishlistToggleResult{}, models.Reject(MsgInvalidListing)
	}

	listing, err := s.Listings.GetListingByID(ctx, listingID)
	if errors.Is(err, models.ErrListingNotFound) {
		return models.WishlistToggleResult{}, models.Reject(MsgListingNotFound)
	}
	if err != nil {
		return models.WishlistToggleResult{}, fmt.Errorf("get listing: %w", err)
	}
	if listing.Status != models.ListingStatusApproved {
		return models.WishlistToggleResult{}, models.Reject(MsgListingNotFound)
	}

	removed, err := s.Wishlist.RemoveFromWishlist(ctx, userID, listingID)
	if err != nil {
		return models.WishlistToggleResult{}, fmt.Errorf("remove from wishlist: %w", err)
	}
	if removed {
		return models.WishlistToggleResult{Action: models.WishlistActionRemoved, InWishlist: false}, nil
	}

	if err := s.Wishlist.AddToWishlist(ctx, userID, listingID); err != nil {
		return models.WishlistToggleResult{}, fmt.Errorf("add to wishlist: %w", err)
	}
	return models.WishlistToggleResult{Action: models.WishlistActionAdded, InWishlist: true}, nil
}

// Contains reports whether the user has wishlisted the listing.
func (s *WishlistService) Contains(ctx context.Context, userID, listingID int) (bool, error) {
	if userID <= 0 || listingID <= 0 {
		return false, nil
	}
	return s.Wishlist.IsInWishlist(ctx, userID, listingID)
}

func (s *WishlistService) GetWishlist(ctx context.Context, userID int) ([]models.WishlistEntry, error) {
	return s.Wishlist.GetWishlistByUser(ctx, userID)
}

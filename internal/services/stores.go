package services

import (
	"context"
	"time"

	"marketBack/internal/models"
	"marketBack/internal/repositories"
)

// Logger provides the logging the services need.
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type ListingStore interface {
	CreateListing(ctx context.Context, l models.Listing, attach repositories.ProofAttacher) (models.Listing, error)
	GetListingByID(ctx context.Context, id int) (models.Listing, error)
	GetListingDetails(ctx context.Context, id int) (models.Listing, error)
	GetApprovedListings(ctx context.Context, limit, offset int) ([]models.Listing, int, error)
	GetListingsByUser(ctx context.Context, userID int) ([]models.Listing, error)
	UpdateListing(ctx context.Context, upd models.ListingUpdate) ([]models.ListingProof, error)
	UpdateStatus(ctx context.Context, id int, from, to string) error
	// ProofsEnabled reports whether proof rows can be stored.
	ProofsEnabled() bool
}

type OfferStore interface {
	HasActiveOffer(ctx context.Context, listingID, userID int) (bool, error)
	CreateOffer(ctx context.Context, offer models.Offer) (models.Offer, error)
	GetOfferByID(ctx context.Context, id int) (models.Offer, error)
	GetOffersByBuyer(ctx context.Context, userID int) ([]models.Offer, error)
	GetOffersByListing(ctx context.Context, listingID int) ([]models.Offer, error)
	UpdateStatus(ctx context.Context, id int, from, to string) error
	ExpirePendingBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type WishlistStore interface {
	RemoveFromWishlist(ctx context.Context, userID, listingID int) (bool, error)
	AddToWishlist(ctx context.Context, userID, listingID int) error
	GetWishlistByUser(ctx context.Context, userID int) ([]models.WishlistEntry, error)
	IsInWishlist(ctx context.Context, userID, listingID int) (bool, error)
}

type SettingsStore interface {
	GetSetting(ctx context.Context, key string) (string, bool, error)
	GetAllSettings(ctx context.Context) ([]models.SystemSetting, error)
	UpsertSetting(ctx context.Context, key, value string) (models.SystemSetting, error)
}

type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	GetUserByID(ctx context.Context, id int) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	GetUsersByRole(ctx context.Context, role string) ([]models.User, error)
	SetSession(ctx context.Context, userID int, session models.Session) error
	GetSessionByToken(ctx context.Context, refreshToken string) (models.Session, error)
	UpdateFCMToken(ctx context.Context, userID int, token string) error
}

type NotificationStore interface {
	CreateNotification(ctx context.Context, n models.Notification) (models.Notification, error)
	GetNotificationsByUser(ctx context.Context, userID, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, id, userID int) error
}

type ActivityLogStore interface {
	LogAction(ctx context.Context, entry models.ActivityLog) error
}

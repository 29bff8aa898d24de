package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"marketBack/internal/models"
	"marketBack/internal/tasks"
)

type OfferService struct {
	Listings ListingStore
	Offers   OfferStore
	Settings *SystemSettingsService
	Tasks    tasks.Enqueuer
	Logger   Logger
}

// SubmitOffer validates an offer against the listing and stores it as
// pending. Business rule failures are returned as *models.Rejection; the
// first failing rule wins.
func (s *OfferService) SubmitOffer(ctx context.Context, req models.OfferRequest) (models.Offer, error) {
	if req.ListingID <= 0 {
		return models.Offer{}, models.Reject(MsgInvalidListing)
	}
	if !req.Amount.IsPositive() {
		return models.Offer{}, models.Reject(MsgInvalidAmount)
	}

	listing, err := s.Listings.GetListingByID(ctx, req.ListingID)
	if errors.Is(err, models.ErrListingNotFound) {
		return models.Offer{}, models.Reject(MsgListingNotFound)
	}
	if err != nil {
		return models.Offer{}, fmt.Errorf("get listing: %w", err)
	}
	if listing.Status != models.ListingStatusApproved {
		return models.Offer{}, models.Reject(MsgListingNotFound)
	}

	pct, err := s.Settings.MinOfferPercentage(ctx)
	if err != nil {
		return models.Offer{}, err
	}
	floor := listing.AskingPrice.Mul(pct).Div(hundred)
	if req.Amount.LessThan(floor) {
		return models.Offer{}, models.Reject("Your offer must be at least $%s (%s%% of the asking price).",
			floor.StringFixed(2), pct.String())
	}
	if listing.HasReservedAmount() && req.Amount.LessThan(listing.ReservedAmount.Decimal) {
		return models.Offer{}, models.Reject("Your offer must be at least $%s (seller's reserved price).",
			listing.ReservedAmount.Decimal.StringFixed(2))
	}

	if listing.UserID == req.UserID {
		return models.Offer{}, models.Reject(MsgOwnListing)
	}

	active, err := s.Offers.HasActiveOffer(ctx, listing.ID, req.UserID)
	if err != nil {
		return models.Offer{}, fmt.Errorf("check active offer: %w", err)
	}
	if active {
		return models.Offer{}, models.Reject(MsgActiveOffer)
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		message = models.DefaultOfferMessage
	}

	offer, err := s.Offers.CreateOffer(ctx, models.Offer{
		ListingID:   listing.ID,
		UserID:      req.UserID,
		SellerID:    listing.UserID,
		Amount:      req.Amount,
		Message:     message,
		IsPrivate:   false,
		ListingName: listing.Name,
	})
	if errors.Is(err, models.ErrDuplicateOffer) {
		return models.Offer{}, models.Reject(MsgActiveOffer)
	}
	if err != nil {
		return models.Offer{}, fmt.Errorf("create offer: %w", err)
	}
	offer.ListingName = listing.Name
	return offer, nil
}

// AfterOfferSubmitted queues the audit record, the seller email and the
// seller notification. Failures are logged only.
func (s *OfferService) AfterOfferSubmitted(ctx context.Context, offer models.Offer) {
	s.enqueue(ctx, tasks.KindAuditLog, AuditPayload{
		UserID: userRef(offer.UserID),
		Action: "offer_submitted",
		Detail: fmt.Sprintf("Offer %d of $%s on listing %d", offer.ID, offer.Amount.StringFixed(2), offer.ListingID),
		Entity: "offer",
	})
	s.enqueue(ctx, tasks.KindOfferEmail, OfferEmailPayload{OfferID: offer.ID})
	s.enqueue(ctx, tasks.KindNotification, NotificationPayload{
		UserID:  offer.SellerID,
		Type:    models.NotificationNewOffer,
		Title:   "New offer received",
		Message: fmt.Sprintf("You received an offer of $%s on %s.", offer.Amount.StringFixed(2), offer.ListingName),
		Link:    fmt.Sprintf("/listings/%d/offers", offer.ListingID),
	})
}

func (s *OfferService) GetOffersByBuyer(ctx context.Context, userID int) ([]models.Offer, error) {
	return s.Offers.GetOffersByBuyer(ctx, userID)
}

// GetOffersForListing is the seller's view of offers on one listing.
func (s *OfferService) GetOffersForListing(ctx context.Context, ownerID, listingID int) ([]models.Offer, error) {
	listing, err := s.Listings.GetListingByID(ctx, listingID)
	if errors.Is(err, models.ErrListingNotFound) {
		return nil, models.Reject(MsgListingNotFound)
	}
	if err != nil {
		return nil, err
	}
	if listing.UserID != ownerID {
		return nil, models.Reject(MsgNoOfferPermission)
	}
	return s.Offers.GetOffersByListing(ctx, listingID)
}

func (s *OfferService) AcceptOffer(ctx context.Context, sellerID, offerID int) (models.Offer, error) {
	return s.transition(ctx, offerID, models.OfferStatusAccepted, func(o models.Offer) bool { return o.SellerID == sellerID })
}

func (s *OfferService) RejectOffer(ctx context.Context, sellerID, offerID int) (models.Offer, error) {
	return s.transition(ctx, offerID, models.OfferStatusRejected, func(o models.Offer) bool { return o.SellerID == sellerID })
}

func (s *OfferService) WithdrawOffer(ctx context.Context, buyerID, offerID int) (models.Offer, error) {
	return s.transition(ctx, offerID, models.OfferStatusWithdrawn, func(o models.Offer) bool { return o.UserID == buyerID })
}

func (s *OfferService) transition(ctx context.Context, offerID int, to string, allowed func(models.Offer) bool) (models.Offer, error) {
	offer, err := s.Offers.GetOfferByID(ctx, offerID)
	if errors.Is(err, models.ErrOfferNotFound) {
		return models.Offer{}, models.Reject(MsgOfferNotFound)
	}
	if err != nil {
		return models.Offer{}, err
	}
	if !allowed(offer) {
		return models.Offer{}, models.Reject(MsgNoOfferPermission)
	}

	err = s.Offers.UpdateStatus(ctx, offer.ID, models.OfferStatusPending, to)
	if errors.Is(err, models.ErrOfferNotPending) {
		return models.Offer{}, models.Reject(MsgOfferNotPending)
	}
	if err != nil {
		return models.Offer{}, err
	}
	offer.Status = to

	// the other party is told about the change
	recipient, actor := offer.UserID, offer.SellerID
	if to == models.OfferStatusWithdrawn {
		recipient, actor = offer.SellerID, offer.UserID
	}
	s.enqueue(ctx, tasks.KindNotification, NotificationPayload{
		UserID:  recipient,
		Type:    models.NotificationOfferStatus,
		Title:   "Offer " + to,
		Message: fmt.Sprintf("The offer of $%s on %s was %s.", offer.Amount.StringFixed(2), offer.ListingName, to),
		Link:    fmt.Sprintf("/listings/%d", offer.ListingID),
	})
	s.enqueue(ctx, tasks.KindAuditLog, AuditPayload{
		UserID: userRef(actor),
		Action: "offer_" + to,
		Detail: fmt.Sprintf("Offer %d on listing %d", offer.ID, offer.ListingID),
		Entity: "offer",
	})
	return offer, nil
}

// ExpireStaleOffers marks pending offers older than maxAge as expired.
func (s *OfferService) ExpireStaleOffers(ctx context.Context, maxAge time.Duration) (int64, error) {
	n, err := s.Offers.ExpirePendingBefore(ctx, time.Now().Add(-maxAge))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.enqueue(ctx, tasks.KindAuditLog, AuditPayload{
			Action: "offers_expired",
			Detail: fmt.Sprintf("%d pending offers expired", n),
			Entity: "offer",
		})
	}
	return n, nil
}

func (s *OfferService) enqueue(ctx context.Context, kind string, payload interface{}) {
	enqueue(ctx, s.Tasks, s.Logger, kind, payload)
}

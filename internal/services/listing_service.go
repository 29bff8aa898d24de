package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"marketBack/internal/models"
	"marketBack/internal/storage"
	"marketBack/internal/tasks"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// ProofUpload is one proof file received with a listing form.
type ProofUpload struct {
	Name   string
	Reader io.Reader
}

type ListingService struct {
	Listings ListingStore
	Proofs   storage.ProofStore
	Tasks    tasks.Enqueuer
	Logger   Logger
}

// ValidateListing checks the seller supplied fields.
func ValidateListing(l models.Listing) error {
	if strings.TrimSpace(l.Name) == "" {
		return models.Reject("Listing name is required.")
	}
	if l.Type != models.ListingTypeWebsite && l.Type != models.ListingTypeYouTube {
		return models.Reject("Invalid listing type.")
	}
	if !l.AskingPrice.IsPositive() {
		return models.Reject("Please enter a valid asking price.")
	}
	if l.ReservedAmount.Valid {
		r := l.ReservedAmount.Decimal
		if r.IsNegative() || r.GreaterThan(l.AskingPrice) {
			return models.Reject("Reserved amount must be between 0 and the asking price.")
		}
	}
	if l.MinDownPaymentPercentage < 0 || l.MinDownPaymentPercentage > 100 {
		return models.Reject("Minimum down payment must be between 0 and 100 percent.")
	}
	if l.MonthlyRevenue.IsNegative() || l.MonthlyProfit.IsNegative() || l.MonthlyTraffic < 0 {
		return models.Reject("Monthly figures cannot be negative.")
	}
	return nil
}

func normalizeListing(l *models.Listing) {
	l.Name = strings.TrimSpace(l.Name)
	l.URL = strings.TrimSpace(l.URL)
	l.Category = strings.TrimSpace(l.Category)
	var labels []string
	for _, label := range l.Labels {
		if label = strings.TrimSpace(label); label != "" {
			labels = append(labels, label)
		}
	}
	l.Labels = labels
	if l.ReservedAmount.Valid && l.ReservedAmount.Decimal.IsZero() {
		l.ReservedAmount = decimal.NullDecimal{}
	}
}

func (s *ListingService) CreateListing(ctx context.Context, l models.Listing, uploads []ProofUpload) (models.Listing, error) {
	normalizeListing(&l)
	if err := ValidateListing(l); err != nil {
		return models.Listing{}, err
	}
	l.Status = models.ListingStatusPending
	l.Proofs = nil

	var stored []models.ListingProof
	created, err := s.Listings.CreateListing(ctx, l, func(listingID int) ([]models.ListingProof, error) {
		for _, u := range uploads {
			p, err := s.Proofs.SaveProof(ctx, listingID, u.Name, u.Reader)
			if err != nil {
				return nil, proofError(u.Name, err)
			}
			stored = append(stored, p)
		}
		return stored, nil
	})
	if err != nil {
		s.discardProofs(ctx, stored)
		return models.Listing{}, err
	}

	s.afterSubmitted(ctx, created, "listing_created")
	return created, nil
}

// UpdateListing applies an owner's resubmission. The listing returns to
// pending review. New proof files are stored before the transaction and
// discarded if it fails; removed proof files are deleted after commit.
func (s *ListingService) UpdateListing(ctx context.Context, upd models.ListingUpdate, uploads []ProofUpload) (models.Listing, error) {
	l := upd.Listing
	normalizeListing(&l)

	current, err := s.Listings.GetListingByID(ctx, l.ID)
	if errors.Is(err, models.ErrListingNotFound) {
		return models.Listing{}, models.Reject(MsgListingNotFound)
	}
	if err != nil {
		return models.Listing{}, fmt.Errorf("get listing: %w", err)
	}
	if current.UserID != l.UserID {
		return models.Listing{}, models.Reject(MsgNoEditPermission)
	}
	if err := ValidateListing(l); err != nil {
		return models.Listing{}, err
	}

	if len(uploads) > 0 && !s.Listings.ProofsEnabled() {
		if s.Logger != nil {
			s.Logger.Infof("listing %d: proofs disabled, ignoring %d uploads", l.ID, len(uploads))
		}
		uploads = nil
	}

	var stored []models.ListingProof
	for _, u := range uploads {
		p, err := s.Proofs.SaveProof(ctx, l.ID, u.Name, u.Reader)
		if err != nil {
			s.discardProofs(ctx, stored)
			return models.Listing{}, proofError(u.Name, err)
		}
		stored = append(stored, p)
	}

	upd.Listing = l
	upd.NewProofs = stored
	removed, err := s.Listings.UpdateListing(ctx, upd)
	if err != nil {
		s.discardProofs(ctx, stored)
		switch {
		case errors.Is(err, models.ErrForbidden):
			return models.Listing{}, models.Reject(MsgNoEditPermission)
		case errors.Is(err, models.ErrListingNotFound):
			return models.Listing{}, models.Reject(MsgListingNotFound)
		}
		return models.Listing{}, err
	}

	if len(removed) > 0 {
		paths := make([]string, 0, len(removed))
		for _, p := range removed {
			paths = append(paths, p.FilePath)
		}
		enqueue(ctx, s.Tasks, s.Logger, tasks.KindProofCleanup, ProofCleanupPayload{Paths: paths})
	}

	l.Status = models.ListingStatusPending
	s.afterSubmitted(ctx, l, "listing_updated")
	return l, nil
}

func (s *ListingService) afterSubmitted(ctx context.Context, l models.Listing, action string) {
	enqueue(ctx, s.Tasks, s.Logger, tasks.KindAdminReview, AdminReviewPayload{
		ListingID:   l.ID,
		ListingName: l.Name,
		OwnerID:     l.UserID,
	})
	enqueue(ctx, s.Tasks, s.Logger, tasks.KindNotification, NotificationPayload{
		UserID:  l.UserID,
		Type:    models.NotificationListingPending,
		Title:   "Listing pending review",
		Message: fmt.Sprintf("Your listing %s is pending review.", l.Name),
		Link:    fmt.Sprintf("/listings/%d", l.ID),
	})
	enqueue(ctx, s.Tasks, s.Logger, tasks.KindAuditLog, AuditPayload{
		UserID: userRef(l.UserID),
		Action: action,
		Detail: fmt.Sprintf("Listing %d submitted for review", l.ID),
		Entity: "listing",
	})
}

// discardProofs removes files stored for a write that did not commit.
func (s *ListingService) discardProofs(ctx context.Context, proofs []models.ListingProof) {
	for _, p := range proofs {
		if err := s.Proofs.Delete(ctx, p.FilePath); err != nil && s.Logger != nil {
			s.Logger.Errorf("discard proof %s: %v", p.FilePath, err)
		}
	}
}

func proofError(name string, err error) error {
	switch {
	case errors.Is(err, models.ErrProofTooLarge):
		return models.Reject("Proof file %s exceeds the maximum size of 10MB.", name)
	case errors.Is(err, models.ErrProofTypeNotAllowed):
		return models.Reject("Proof file %s must be a JPEG, PNG or PDF.", name)
	}
	return fmt.Errorf("store proof %s: %w", name, err)
}

// GetListing returns an approved listing, or any listing to its owner or an admin.
func (s *ListingService) GetListing(ctx context.Context, id, viewerID int, viewerRole string) (models.Listing, error) {
	l, err := s.Listings.GetListingDetails(ctx, id)
	if errors.Is(err, models.ErrListingNotFound) {
		return models.Listing{}, models.Reject(MsgListingNotFound)
	}
	if err != nil {
		return models.Listing{}, err
	}
	if l.Status != models.ListingStatusApproved && l.UserID != viewerID && viewerRole != models.RoleAdmin {
		return models.Listing{}, models.Reject(MsgListingNotFound)
	}
	return l, nil
}

func (s *ListingService) GetApprovedListings(ctx context.Context, page, limit int) (models.ListingListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	listings, total, err := s.Listings.GetApprovedListings(ctx, limit, (page-1)*limit)
	if err != nil {
		return models.ListingListResponse{}, err
	}
	return models.ListingListResponse{Listings: listings, Total: total, Page: page, Limit: limit}, nil
}

func (s *ListingService) GetListingsByUser(ctx context.Context, userID int) ([]models.Listing, error) {
	return s.Listings.GetListingsByUser(ctx, userID)
}

func (s *ListingService) ApproveListing(ctx context.Context, adminID, listingID int) error {
	return s.review(ctx, adminID, listingID, models.ListingStatusApproved)
}

func (s *ListingService) RejectListing(ctx context.Context, adminID, listingID int) error {
	return s.review(ctx, adminID, listingID, models.ListingStatusRejected)
}

func (s *ListingService) review(ctx context.Context, adminID, listingID int, to string) error {
	l, err := s.Listings.GetListingByID(ctx, listingID)
	if errors.Is(err, models.ErrListingNotFound) {
		return models.Reject(MsgListingNotFound)
	}
	if err != nil {
		return err
	}

	err = s.Listings.UpdateStatus(ctx, listingID, models.ListingStatusPending, to)
	if errors.Is(err, models.ErrInvalidStatus) {
		return models.Reject(MsgListingNotPending)
	}
	if err != nil {
		return err
	}

	enqueue(ctx, s.Tasks, s.Logger, tasks.KindNotification, NotificationPayload{
		UserID:  l.UserID,
		Type:    models.NotificationListingReview,
		Title:   "Listing " + to,
		Message: fmt.Sprintf("Your listing %s was %s.", l.Name, to),
		Link:    fmt.Sprintf("/listings/%d", l.ID),
	})
	enqueue(ctx, s.Tasks, s.Logger, tasks.KindAuditLog, AuditPayload{
		UserID: userRef(adminID),
		Action: "listing_" + to,
		Detail: fmt.Sprintf("Listing %d", listingID),
		Entity: "listing",
	})
	return nil
}

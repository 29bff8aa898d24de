package services

import (
	"context"
	"errors"
	"fmt"

	"marketBack/internal/models"
	"marketBack/internal/notify"
	"marketBack/internal/storage"
	"marketBack/internal/tasks"
)

// TaskRegistry is implemented by *tasks.Dispatcher.
type TaskRegistry interface {
	Handle(kind string, h tasks.Handler)
}

// TaskHandlers performs the side effects queued by the services.
type TaskHandlers struct {
	Users         UserStore
	Offers        OfferStore
	Listings      ListingStore
	ActivityLog   ActivityLogStore
	Notifications *NotificationService
	Mailer        notify.Mailer
	Proofs        storage.ProofStore
	SiteURL       string
}

func (h *TaskHandlers) Register(r TaskRegistry) {
	r.Handle(tasks.KindAuditLog, h.handleAuditLog)
	r.Handle(tasks.KindOfferEmail, h.handleOfferEmail)
	r.Handle(tasks.KindNotification, h.handleNotification)
	r.Handle(tasks.KindAdminReview, h.handleAdminReview)
	r.Handle(tasks.KindProofCleanup, h.handleProofCleanup)
}

func (h *TaskHandlers) handleAuditLog(ctx context.Context, t tasks.Task) error {
	var p AuditPayload
	if err := t.Decode(&p); err != nil {
		return err
	}
	return h.ActivityLog.LogAction(ctx, models.ActivityLog{
		UserID: p.UserID,
		Action: p.Action,
		Detail: p.Detail,
		Entity: p.Entity,
	})
}

// handleOfferEmail sends the offer-received email to the seller.
func (h *TaskHandlers) handleOfferEmail(ctx context.Context, t tasks.Task) error {
	var p OfferEmailPayload
	if err := t.Decode(&p); err != nil {
		return err
	}

	offer, err := h.Offers.GetOfferByID(ctx, p.OfferID)
	if err != nil {
		return fmt.Errorf("load offer %d: %w", p.OfferID, err)
	}
	listing, err := h.Listings.GetListingByID(ctx, offer.ListingID)
	if err != nil {
		return fmt.Errorf("load listing %d: %w", offer.ListingID, err)
	}
	seller, err := h.Users.GetUserByID(ctx, offer.SellerID)
	if err != nil {
		return fmt.Errorf("load seller %d: %w", offer.SellerID, err)
	}
	buyerName := "A buyer"
	buyer, err := h.Users.GetUserByID(ctx, offer.UserID)
	if err == nil {
		buyerName = buyer.Name
	} else if !errors.Is(err, models.ErrUserNotFound) {
		return fmt.Errorf("load buyer %d: %w", offer.UserID, err)
	}

	msg, err := notify.OfferReceivedEmail(seller.Email, notify.OfferEmailData{
		SellerName:  seller.Name,
		BuyerName:   buyerName,
		ListingName: listing.Name,
		ListingID:   listing.ID,
		OfferID:     offer.ID,
		Amount:      offer.Amount,
		AskingPrice: listing.AskingPrice,
		Message:     offer.Message,
		SiteURL:     h.SiteURL,
	})
	if err != nil {
		return err
	}
	return h.Mailer.Send(ctx, msg)
}

func (h *TaskHandlers) handleNotification(ctx context.Context, t tasks.Task) error {
	var p NotificationPayload
	if err := t.Decode(&p); err != nil {
		return err
	}
	_, err := h.Notifications.CreateNotification(ctx, models.Notification{
		UserID:  p.UserID,
		Type:    p.Type,
		Title:   p.Title,
		Message: p.Message,
		Link:    p.Link,
	})
	return err
}

// handleAdminReview tells every admin that a listing awaits review.
func (h *TaskHandlers) handleAdminReview(ctx context.Context, t tasks.Task) error {
	var p AdminReviewPayload
	if err := t.Decode(&p); err != nil {
		return err
	}
	admins, err := h.Users.GetUsersByRole(ctx, models.RoleAdmin)
	if err != nil {
		return fmt.Errorf("load admins: %w", err)
	}
	for _, admin := range admins {
		if admin.ID == p.OwnerID {
			continue
		}
		_, err := h.Notifications.CreateNotification(ctx, models.Notification{
			UserID:  admin.ID,
			Type:    models.NotificationListingUpdated,
			Title:   "Listing updated, review required",
			Message: fmt.Sprintf("Listing %s is waiting for review.", p.ListingName),
			Link:    fmt.Sprintf("/admin/listings/%d", p.ListingID),
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (h *TaskHandlers) handleProofCleanup(ctx context.Context, t tasks.Task) error {
	var p ProofCleanupPayload
	if err := t.Decode(&p); err != nil {
		return err
	}
	var failed []string
	var lastErr error
	for _, path := range p.Paths {
		if err := h.Proofs.Delete(ctx, path); err != nil {
			failed = append(failed, path)
			lastErr = err
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("delete %d of %d proofs (%v): %w", len(failed), len(p.Paths), failed, lastErr)
	}
	return nil
}

package handlers

import (
	"context"
	"log"
	"net/http"

	"github.com/shopspring/decimal"

	"marketBack/internal/models"
	"marketBack/internal/services"
)

type OfferHandler struct {
	Service  *services.OfferService
	ErrorLog *log.Logger
}

// SubmitOffer records a buyer's offer. Side effects are queued only after the
// response has been written.
func (h *OfferHandler) SubmitOffer(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(r)
	if !ok {
		reject(w, services.MsgLoginRequired)
		return
	}
	if r.Method != http.MethodPost {
		reject(w, services.MsgInvalidMethod)
		return
	}

	fields, err := readFields(r, "listing_id", "amount", "message")
	if err != nil {
		reject(w, services.MsgInvalidRequest)
		return
	}
	amount, err := decimal.NewFromString(fields["amount"])
	if err != nil {
		amount = decimal.Zero
	}

	offer, err := h.Service.SubmitOffer(r.Context(), models.OfferRequest{
		UserID:    userID,
		ListingID: atoiOrZero(fields["listing_id"]),
		Amount:    amount,
		Message:   fields["message"],
	})
	if err != nil {
		respondError(w, h.ErrorLog, "submit offer", err)
		return
	}

	succeed(w, services.MsgOfferSubmitted, envelope{"offer_id": offer.ID})
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	h.Service.AfterOfferSubmitted(context.WithoutCancel(r.Context()), offer)
}

func (h *OfferHandler) GetMyOffers(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(r)
	if !ok {
		reject(w, services.MsgLoginRequired)
		return
	}
	offers, err := h.Service.GetOffersByBuyer(r.Context(), userID)
	if err != nil {
		respondError(w, h.ErrorLog, "get buyer offers", err)
		return
	}
	succeed(w, "", envelope{"data": offers})
}

func (h *OfferHandler) GetListingOffers(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(r)
	if !ok {
		reject(w, services.MsgLoginRequired)
		return
	}
	listingID := intParam(r, "id")
	if listingID <= 0 {
		reject(w, services.MsgInvalidListing)
		return
	}
	offers, err := h.Service.GetOffersForListing(r.Context(), userID, listingID)
	if err != nil {
		respondError(w, h.ErrorLog, "get listing offers", err)
		return
	}
	succeed(w, "", envelope{"data": offers})
}

func (h *OfferHandler) AcceptOffer(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Service.AcceptOffer)
}

func (h *OfferHandler) RejectOffer(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Service.RejectOffer)
}

func (h *OfferHandler) WithdrawOffer(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Service.WithdrawOffer)
}

func (h *OfferHandler) transition(w http.ResponseWriter, r *http.Request,
	action func(ctx context.Context, userID, offerID int) (models.Offer, error)) {
	userID, ok := currentUser(r)
	if !ok {
		reject(w, services.MsgLoginRequired)
		return
	}
	offerID := intParam(r, "id")
	if offerID <= 0 {
		reject(w, services.MsgOfferNotFound)
		return
	}
	offer, err := action(r.Context(), userID, offerID)
	if err != nil {
		respondError(w, h.ErrorLog, "update offer", err)
		return
	}
	succeed(w, "Offer "+offer.Status+".", envelope{"offer_id": offer.ID, "status": offer.Status})
}

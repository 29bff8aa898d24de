package handlers

import (
	"log"
	"net/http"

	"marketBack/internal/services"
)

type WishlistHandler struct {
	Service  *services.WishlistService
	ErrorLog *log.Logger
}

func (h *WishlistHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(r)
	if !ok {
		reject(w, services.MsgLoginToWishlist)
		return
	}
	if r.Method != http.MethodPost {
		reject(w, services.MsgInvalidMethod)
		return
	}

	fields, err := readFields(r, "listing_id")
	if err != nil {
		reject(w, services.MsgInvalidRequest)
		return
	}

	res, err := h.Service.Toggle(r.Context(), userID, atoiOrZero(fields["listing_id"]))
	if err != nil {
		respondError(w, h.ErrorLog, "toggle wishlist", err)
		return
	}
	message := "Added to wishlist."
	if !res.InWishlist {
		message = "Removed from wishlist."
	}
	succeed(w, message, envelope{"action": res.Action, "in_wishlist": res.InWishlist})
}

func (h *WishlistHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(r)
	if !ok {
		reject(w, services.MsgLoginToWishlist)
		return
	}
	entries, err := h.Service.GetWishlist(r.Context(), userID)
	if err != nil {
		respondError(w, h.ErrorLog, "get wishlist", err)
		return
	}
	succeed(w, "", envelope{"data": entries})
}

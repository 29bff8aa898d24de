package handlers

import (
	"errors"
	"log"
	"net/http"

	"marketBack/internal/models"
	"marketBack/internal/services"
)

type NotificationHandler struct {
	Service  *services.NotificationService
	ErrorLog *log.Logger
}

func (h *NotificationHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	userID, _ := currentUser(r)
	notifications, err := h.Service.GetNotifications(r.Context(), userID)
	if err != nil {
		respondError(w, h.ErrorLog, "get notifications", err)
		return
	}
	succeed(w, "", envelope{"data": notifications})
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID, _ := currentUser(r)
	id := intParam(r, "id")
	err := h.Service.MarkRead(r.Context(), userID, id)
	if errors.Is(err, models.ErrNotificationNotFound) {
		reject(w, "Notification not found.")
		return
	}
	if err != nil {
		respondError(w, h.ErrorLog, "mark notification read", err)
		return
	}
	succeed(w, "", envelope{"id": id})
}

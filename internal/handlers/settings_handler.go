package handlers

import (
	"log"
	"net/http"

	"marketBack/internal/services"
)

type SettingsHandler struct {
	Service  *services.SystemSettingsService
	ErrorLog *log.Logger
}

func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Service.GetAll(r.Context())
	if err != nil {
		respondError(w, h.ErrorLog, "get settings", err)
		return
	}
	succeed(w, "", envelope{"data": settings})
}

func (h *SettingsHandler) UpdateSetting(w http.ResponseWriter, r *http.Request) {
	fields, err := readFields(r, "key", "value")
	if err != nil {
		reject(w, services.MsgInvalidRequest)
		return
	}
	setting, err := h.Service.Update(r.Context(), fields["key"], fields["value"])
	if err != nil {
		respondError(w, h.ErrorLog, "update setting", err)
		return
	}
	succeed(w, "Setting saved.", envelope{"data": setting})
}

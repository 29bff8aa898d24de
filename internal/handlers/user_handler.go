package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"marketBack/internal/models"
	"marketBack/internal/services"
)

type UserHandler struct {
	Service  *services.UserService
	ErrorLog *log.Logger
}

func (h *UserHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req models.SignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		reject(w, services.MsgInvalidRequest)
		return
	}

	user, err := h.Service.SignUp(r.Context(), req)
	if err != nil {
		respondError(w, h.ErrorLog, "sign up", err)
		return
	}
	writeJSON(w, http.StatusCreated, envelope{"success": true, "message": "Account created.", "data": user})
}

func (h *UserHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req models.SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		reject(w, services.MsgInvalidRequest)
		return
	}

	tokens, err := h.Service.SignIn(r.Context(), req.Email, req.Password)
	if errors.Is(err, models.ErrInvalidCredentials) {
		writeJSON(w, http.StatusUnauthorized, envelope{"success": false, "message": "Invalid email or password."})
		return
	}
	if err != nil {
		respondError(w, h.ErrorLog, "sign in", err)
		return
	}
	succeed(w, "", envelope{"access_token": tokens.AccessToken, "refresh_token": tokens.RefreshToken})
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, _ := currentUser(r)
	user, err := h.Service.GetUserByID(r.Context(), userID)
	if errors.Is(err, models.ErrUserNotFound) {
		writeJSON(w, http.StatusNotFound, envelope{"success": false, "message": "User not found."})
		return
	}
	if err != nil {
		respondError(w, h.ErrorLog, "get user", err)
		return
	}
	succeed(w, "", envelope{"data": user})
}

func (h *UserHandler) UpdateFCMToken(w http.ResponseWriter, r *http.Request) {
	userID, _ := currentUser(r)
	fields, err := readFields(r, "token")
	if err != nil {
		reject(w, services.MsgInvalidRequest)
		return
	}
	if err := h.Service.UpdateFCMToken(r.Context(), userID, fields["token"]); err != nil {
		respondError(w, h.ErrorLog, "update fcm token", err)
		return
	}
	succeed(w, "Token saved.", nil)
}

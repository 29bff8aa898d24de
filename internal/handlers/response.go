package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"marketBack/internal/models"
	"marketBack/internal/services"
)

// Keys under which the auth middleware stores the caller.
const (
	ContextUserID = "user_id"
	ContextRole   = "role"
)

type envelope map[string]interface{}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("write response: %v", err)
	}
}

func reject(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, envelope{"success": false, "message": message})
}

func succeed(w http.ResponseWriter, message string, fields envelope) {
	body := envelope{"success": true, "message": message}
	for k, v := range fields {
		body[k] = v
	}
	writeJSON(w, http.StatusOK, body)
}

// respondError writes a rejection as is. Anything else is logged and reported
// as a generic database error.
func respondError(w http.ResponseWriter, errorLog *log.Logger, op string, err error) {
	var rej *models.Rejection
	if errors.As(err, &rej) {
		reject(w, rej.Message)
		return
	}
	if isForeignKeyConstraintError(err) {
		reject(w, msgUnknownReference)
		return
	}
	if errorLog != nil {
		errorLog.Printf("%s: %v", op, err)
	} else {
		log.Printf("%s: %v", op, err)
	}
	writeJSON(w, http.StatusInternalServerError, envelope{"success": false, "message": services.MsgDatabaseError})
}

func currentUser(r *http.Request) (int, bool) {
	id, ok := r.Context().Value(ContextUserID).(int)
	return id, ok && id > 0
}

func currentRole(r *http.Request) string {
	role, _ := r.Context().Value(ContextRole).(string)
	return role
}

func isJSON(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

package models

import (
	"errors"
	"fmt"
)

var (
	ErrNoRecord           = errors.New("models: no matching record found")
	ErrInvalidCredentials = errors.New("models: invalid credentials")
	ErrDuplicateEmail     = errors.New("models: duplicate email")
	ErrUserNotFound       = errors.New("models: user not found")
	ErrForbidden          = errors.New("models: forbidden")
)

var (
	ErrListingNotFound      = errors.New("listing not found")
	ErrInvalidStatus        = errors.New("invalid status transition")
	ErrOfferNotFound        = errors.New("offer not found")
	ErrDuplicateOffer       = errors.New("active offer already exists")
	ErrOfferNotPending      = errors.New("offer is not pending")
	ErrProofTooLarge        = errors.New("proof file too large")
	ErrProofTypeNotAllowed  = errors.New("proof file type not allowed")
	ErrSettingInvalid       = errors.New("invalid setting value")
	ErrNotificationNotFound = errors.New("notification not found")
)

// Rejection is a business-rule failure whose message can be shown to the caller as is.
type Rejection struct {
	Message string
}

func (r *Rejection) Error() string {
	return r.Message
}

func Reject(format string, args ...interface{}) error {
	return &Rejection{Message: fmt.Sprintf(format, args...)}
}

package errs

import (
	"errors"
)

var (
	ErrNotFound        = errors.New("reservation not found")
	ErrForbidden       = errors.New("reservation belongs to another user")
	ErrRoomUnavailable = errors.New("room is not available for the selected dates")
	ErrUnknownOwner    = errors.New("owner user does not exist")
)

// Validation failures reported by model.Reservation.Validate.
var (
	ErrDatesRequired  = errors.New("start and end dates are required")
	ErrStartInPast    = errors.New("start date is in the past")
	ErrEndBeforeStart = errors.New("end date precedes start date")
	ErrInvalidRoom    = errors.New("room number must be positive")
	ErrCustomerName   = errors.New("customer name must be 3 to 100 characters")
)

type ValidationErrorResponse struct {
	Message string `json:"message"`
	Errors  struct {
		AdditionalProperties string `json:"additionalProperties"`
	} `json:"errors"`
}

package services

import (
	"errors"
	"fmt"

	"github.com/cobaltwebtech/irishette-sub001/models"
)

var (
	ErrInvalidRange         = errors.New("check-in must be before check-out")
	ErrRoomNotFound         = errors.New("room not found")
	ErrRoomUnavailable      = errors.New("room is not active")
	ErrReservationNotFound  = errors.New("reservation not found")
	ErrNoCalendarConfigured = errors.New("no calendar configured for platform")
	ErrFetchFailed          = errors.New("calendar feed fetch failed")
)

// ConflictError carries the itemized conflicts that made a date range
// unbookable, so callers can show the guest which dates are taken.
type ConflictError struct {
	BlockedDates            []models.AvailabilityRecord
	ConflictingReservations []models.Reservation
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("dates not available: %d blocked dates, %d overlapping reservations",
		len(e.BlockedDates), len(e.ConflictingReservations))
}

// ConfirmationConflictError is returned when the mandatory availability
// re-check at payment confirmation time fails. The payment has already been
// collected, so the caller owes the guest a refund.
type ConfirmationConflictError struct {
	Reservation *models.Reservation
	Conflict    *ConflictError
}

func (e *ConfirmationConflictError) Error() string {
	return fmt.Sprintf("reservation %d can no longer be confirmed, refund required: %v",
		e.Reservation.ID, e.Conflict)
}

package services

import (
	"time"

	"github.com/cobaltwebtech/irishette-sub001/models"
	"github.com/cobaltwebtech/irishette-sub001/storage"
)

// AvailabilityResult reports whether a range is bookable, plus both conflict
// sets regardless of outcome so callers can show why.
type AvailabilityResult struct {
	Available               bool                        `json:"available"`
	BlockedDates            []models.AvailabilityRecord `json:"blockedDates"`
	ConflictingReservations []models.Reservation        `json:"conflictingReservations"`
}

type AvailabilityService struct{}

func NewAvailabilityService() *AvailabilityService {
	return &AvailabilityService{}
}

// Check determines whether [start, end) is bookable for a room. Two
// independent conflict sources are consulted: blocked ledger rows, which
// carry external and manual blocks, and confirmed reservations, which only
// reach the ledger after payment. Their write paths differ, so the check
// stays split rather than unified into one table.
func (s *AvailabilityService) Check(roomID uint, start, end time.Time) (*AvailabilityResult, error) {
	start = DateOnly(start)
	end = DateOnly(end)

	if !start.Before(end) {
		return nil, ErrInvalidRange
	}

	var room models.Room
	if err := storage.DB.First(&room, roomID).Error; err != nil {
		return nil, ErrRoomNotFound
	}
	if room.Status != models.RoomStatusActive {
		return nil, ErrRoomUnavailable
	}

	result := &AvailabilityResult{}

	// The ledger window is inclusive of the end date. That is wider than the
	// [start, end) stay itself; the extra day is kept for compatibility with
	// how conflicts have always been reported here.
	storage.DB.
		Where("room_id = ? AND is_blocked = ? AND date >= ? AND date <= ?",
			roomID, true, start, end).
		Order("date ASC").
		Find(&result.BlockedDates)

	storage.DB.
		Where("room_id = ? AND status = ? AND check_in < ? AND check_out > ?",
			roomID, models.ReservationStatusConfirmed, end, start).
		Order("check_in ASC").
		Find(&result.ConflictingReservations)

	result.Available = len(result.BlockedDates) == 0 && len(result.ConflictingReservations) == 0
	return result, nil
}

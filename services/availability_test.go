package services

import (
	"errors"
	"testing"
	"time"

	"github.com/cobaltwebtech/irishette-sub001/models"
	"github.com/cobaltwebtech/irishette-sub001/storage"
)

func blockDate(t *testing.T, roomID uint, day time.Time, source string) {
	t.Helper()
	if err := storage.DB.Create(&models.AvailabilityRecord{
		RoomID:      roomID,
		Date:        day,
		IsAvailable: false,
		IsBlocked:   true,
		Source:      source,
	}).Error; err != nil {
		t.Fatalf("blocking date: %v", err)
	}
}

func TestCheckOpenRange(t *testing.T) {
	setupTestDB(t)
	room := createTestRoom(t, models.Room{BasePrice: 100})

	result, err := NewAvailabilityService().Check(room.ID, date(2026, 9, 10), date(2026, 9, 13))
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !result.Available {
		t.Errorf("available = false, want true for an empty calendar")
	}
}

func TestCheckInvalidRange(t *testing.T) {
	setupTestDB(t)
	room := createTestRoom(t, models.Room{BasePrice: 100})

	if _, err := NewAvailabilityService().Check(room.ID, date(2026, 9, 10), date(2026, 9, 10)); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("err = %v, want ErrInvalidRange", err)
	}
}

func TestCheckRoomNotFound(t *testing.T) {
	setupTestDB(t)

	if _, err := NewAvailabilityService().Check(99, date(2026, 9, 10), date(2026, 9, 12)); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("err = %v, want ErrRoomNotFound", err)
	}
}

func TestCheckInactiveRoom(t *testing.T) {
	setupTestDB(t)
	room := createTestRoom(t, models.Room{BasePrice: 100, Status: models.RoomStatusInactive})

	if _, err := NewAvailabilityService().Check(room.ID, date(2026, 9, 10), date(2026, 9, 12)); !errors.Is(err, ErrRoomUnavailable) {
		t.Errorf("err = %v, want ErrRoomUnavailable", err)
	}
}

func TestCheckBlockedLedgerRow(t *testing.T) {
	setupTestDB(t)
	room := createTestRoom(t, models.Room{BasePrice: 100})
	blockDate(t, room.ID, date(2026, 9, 11), models.SourceAirbnb)

	result, err := NewAvailabilityService().Check(room.ID, date(2026, 9, 10), date(2026, 9, 13))
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if result.Available {
		t.Errorf("available = true, want false with a blocked night mid-stay")
	}
	if len(result.BlockedDates) != 1 {
		t.Errorf("blocked dates = %d, want 1", len(result.BlockedDates))
	}
}

func TestCheckBlockOnCheckoutDateConflicts(t *testing.T) {
	setupTestDB(t)
	room := createTestRoom(t, models.Room{BasePrice: 100})

	// The ledger window includes the checkout date itself.
	blockDate(t, room.ID, date(2026, 9, 13), models.SourceExpedia)

	result, err := NewAvailabilityService().Check(room.ID, date(2026, 9, 10), date(2026, 9, 13))
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if result.Available {
		t.Errorf("available = true, want false when the checkout date is blocked")
	}
}

func TestCheckBlockOutsideWindowIgnored(t *testing.T) {
	setupTestDB(t)
	room := createTestRoom(t, models.Room{BasePrice: 100})
	blockDate(t, room.ID, date(2026, 9, 14), models.SourceAirbnb)

	result, err := NewAvailabilityService().Check(room.ID, date(2026, 9, 10), date(2026, 9, 13))
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !result.Available {
		t.Errorf("available = false, want true with the block past the window")
	}
}

func TestCheckConfirmedReservationOverlap(t *testing.T) {
	setupTestDB(t)
	room := createTestRoom(t, models.Room{BasePrice: 100})

	if err := storage.DB.Create(&models.Reservation{
		ConfirmationCode: "TESTCODE",
		RoomID:           room.ID,
		CheckIn:          date(2026, 9, 12),
		CheckOut:         date(2026, 9, 15),
		Status:           models.ReservationStatusConfirmed,
	}).Error; err != nil {
		t.Fatalf("creating reservation: %v", err)
	}

	result, err := NewAvailabilityService().Check(room.ID, date(2026, 9, 10), date(2026, 9, 13))
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if result.Available {
		t.Errorf("available = true, want false against an overlapping confirmed stay")
	}
	if len(result.ConflictingReservations) != 1 {
		t.Errorf("conflicting reservations = %d, want 1", len(result.ConflictingReservations))
	}
}

func TestCheckBackToBackStaysAllowed(t *testing.T) {
	setupTestDB(t)
	room := createTestRoom(t, models.Room{BasePrice: 100})

	// Their checkout is our check-in; the overlap test is half-open.
	if err := storage.DB.Create(&models.Reservation{
		ConfirmationCode: "TESTCODE",
		RoomID:           room.ID,
		CheckIn:          date(2026, 9, 7),
		CheckOut:         date(2026, 9, 10),
		Status:           models.ReservationStatusConfirmed,
	}).Error; err != nil {
		t.Fatalf("creating reservation: %v", err)
	}

	result, err := NewAvailabilityService().Check(room.ID, date(2026, 9, 10), date(2026, 9, 13))
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if len(result.ConflictingReservations) != 0 {
		t.Errorf("conflicting reservations = %d, want 0 for back-to-back stays", len(result.ConflictingReservations))
	}
}

func TestCheckPendingReservationDoesNotBlock(t *testing.T) {
	setupTestDB(t)
	room := createTestRoom(t, models.Room{BasePrice: 100})

	if err := storage.DB.Create(&models.Reservation{
		ConfirmationCode: "TESTCODE",
		RoomID:           room.ID,
		CheckIn:          date(2026, 9, 10),
		CheckOut:         date(2026, 9, 13),
		Status:           models.ReservationStatusPending,
	}).Error; err != nil {
		t.Fatalf("creating reservation: %v", err)
	}

	result, err := NewAvailabilityService().Check(room.ID, date(2026, 9, 10), date(2026, 9, 13))
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !result.Available {
		t.Errorf("available = false, want true; pending stays hold nothing")
	}
}

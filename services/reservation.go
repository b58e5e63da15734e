package services

import (
	"errors"
	"log"
	"time"

	"github.com/cobaltwebtech/irishette-sub001/models"
	"github.com/cobaltwebtech/irishette-sub001/storage"
	"github.com/cobaltwebtech/irishette-sub001/utils"

	"gorm.io/gorm"
)

const confirmationCodeLength = 8

// legacyRoomIDs maps room ids issued before the 2024 rooms table rebuild to
// their canonical ids. Old confirmation emails and partner deep links still
// carry the stale ids.
// TODO: drop once the pre-rebuild links have aged out of circulation.
var legacyRoomIDs = map[uint]uint{
	1: 4,
	2: 5,
	3: 6,
}

// CreateReservationInput is everything the guest commits to when booking.
type CreateReservationInput struct {
	RoomID     uint
	CheckIn    time.Time
	CheckOut   time.Time
	NumGuests  int
	GuestName  string
	GuestEmail string
	GuestPhone string
}

// ReservationNotifier delivers post-confirmation messages. Delivery failure
// never affects the reservation.
type ReservationNotifier interface {
	SendReservationConfirmation(res *models.Reservation, room *models.Room) error
	SendRefundRequired(res *models.Reservation, reason string) error
}

// ReservationService drives the payment-gated reservation lifecycle:
// pending on create, confirmed only on a verified payment-success signal,
// cancelled on payment failure or expiry. confirmed and cancelled are
// terminal.
type ReservationService struct {
	availability *AvailabilityService
	pricing      *PricingService
	payments     CheckoutCreator
	notifier     ReservationNotifier
}

func NewReservationService(payments CheckoutCreator, notifier ReservationNotifier) *ReservationService {
	return &ReservationService{
		availability: NewAvailabilityService(),
		pricing:      NewPricingService(),
		payments:     payments,
		notifier:     notifier,
	}
}

// Create checks availability, prices the stay, and persists a pending
// reservation tied to a new payment session. The returned checkout URL is
// where the guest completes payment; nothing blocks the calendar until the
// payment-success signal arrives.
func (s *ReservationService) Create(input CreateReservationInput, userID uint) (*models.Reservation, string, error) {
	roomID := input.RoomID

	result, err := s.availability.Check(roomID, input.CheckIn, input.CheckOut)
	if errors.Is(err, ErrRoomNotFound) {
		// Stale room reference from before the id migration.
		remapped, ok := legacyRoomIDs[roomID]
		if !ok {
			return nil, "", ErrRoomNotFound
		}
		roomID = remapped
		result, err = s.availability.Check(roomID, input.CheckIn, input.CheckOut)
	}
	if err != nil {
		return nil, "", err
	}
	if !result.Available {
		return nil, "", &ConflictError{
			BlockedDates:            result.BlockedDates,
			ConflictingReservations: result.ConflictingReservations,
		}
	}

	quote, err := s.pricing.Quote(roomID, input.CheckIn, input.CheckOut, input.NumGuests)
	if err != nil {
		return nil, "", err
	}

	var room models.Room
	if err := storage.DB.First(&room, roomID).Error; err != nil {
		return nil, "", ErrRoomNotFound
	}

	code, err := s.uniqueConfirmationCode()
	if err != nil {
		return nil, "", err
	}

	reservation := models.Reservation{
		ConfirmationCode: code,
		RoomID:           roomID,
		UserID:           userID,
		CheckIn:          DateOnly(input.CheckIn),
		CheckOut:         DateOnly(input.CheckOut),
		NumGuests:        input.NumGuests,
		BaseAmount:       quote.BaseAmount,
		ServiceFee:       quote.ServiceFee,
		StateTax:         quote.StateTax,
		LocalTax:         quote.LocalTax,
		TotalAmount:      quote.Total,
		Status:           models.ReservationStatusPending,
		PaymentStatus:    models.PaymentStatusPending,
		GuestName:        input.GuestName,
		GuestEmail:       input.GuestEmail,
		GuestPhone:       input.GuestPhone,
	}

	if err := storage.DB.Create(&reservation).Error; err != nil {
		return nil, "", err
	}

	sess, err := s.payments.CreateCheckoutSession(&reservation, &room, quote)
	if err != nil {
		// No payment session means the guest can never pay; release the row.
		storage.DB.Model(&reservation).Updates(map[string]interface{}{
			"status":       models.ReservationStatusCancelled,
			"cancelled_at": time.Now(),
		})
		return nil, "", err
	}

	reservation.StripeSessionID = sess.ID
	if err := storage.DB.Model(&reservation).Update("stripe_session_id", sess.ID).Error; err != nil {
		return nil, "", err
	}

	return &reservation, sess.URL, nil
}

// Confirm handles a verified payment-success signal for a session. It is
// idempotent: a duplicate delivery for an already-confirmed reservation is a
// no-op. Before committing the date range it re-checks availability; a
// calendar sync or competing booking may have taken the dates while the
// guest was paying, in which case the money is collected but the stay is
// impossible, and the caller owes a refund.
func (s *ReservationService) Confirm(sessionID, paymentIntentID string) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := storage.DB.Where("stripe_session_id = ?", sessionID).First(&reservation).Error; err != nil {
		return nil, ErrReservationNotFound
	}

	if reservation.Status == models.ReservationStatusConfirmed {
		return &reservation, nil
	}
	if reservation.Status == models.ReservationStatusCancelled {
		return nil, &ConfirmationConflictError{
			Reservation: &reservation,
			Conflict:    &ConflictError{},
		}
	}

	result, err := s.availability.Check(reservation.RoomID, reservation.CheckIn, reservation.CheckOut)
	if err != nil {
		return nil, err
	}
	if !result.Available {
		conflict := &ConflictError{
			BlockedDates:            result.BlockedDates,
			ConflictingReservations: result.ConflictingReservations,
		}
		now := time.Now()
		storage.DB.Model(&reservation).Updates(map[string]interface{}{
			"status":         models.ReservationStatusCancelled,
			"payment_status": models.PaymentStatusRefunded,
			"cancelled_at":   now,
		})
		reservation.Status = models.ReservationStatusCancelled
		reservation.PaymentStatus = models.PaymentStatusRefunded
		reservation.CancelledAt = &now

		if s.notifier != nil {
			go s.notifier.SendRefundRequired(&reservation, conflict.Error())
		}
		return nil, &ConfirmationConflictError{Reservation: &reservation, Conflict: conflict}
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":         models.ReservationStatusConfirmed,
		"payment_status": models.PaymentStatusPaid,
		"confirmed_at":   now,
	}
	if paymentIntentID != "" {
		updates["stripe_payment_intent_id"] = paymentIntentID
	}
	if err := storage.DB.Model(&reservation).Updates(updates).Error; err != nil {
		return nil, err
	}
	reservation.Status = models.ReservationStatusConfirmed
	reservation.PaymentStatus = models.PaymentStatusPaid
	reservation.ConfirmedAt = &now
	reservation.StripePaymentIntentID = paymentIntentID

	// The money is collected; a ledger write failure from here on is a
	// data-repair task, never a reason to unwind the confirmation.
	s.commitDateRange(&reservation)

	if s.notifier != nil {
		var room models.Room
		if err := storage.DB.First(&room, reservation.RoomID).Error; err == nil {
			go s.notifier.SendReservationConfirmation(&reservation, &room)
		}
	}

	return &reservation, nil
}

// Fail handles a payment expiry or failure signal. Idempotent by the same
// session lookup; only a pending reservation transitions.
func (s *ReservationService) Fail(sessionID string) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := storage.DB.Where("stripe_session_id = ?", sessionID).First(&reservation).Error; err != nil {
		return nil, ErrReservationNotFound
	}

	if reservation.Status != models.ReservationStatusPending {
		return &reservation, nil
	}

	now := time.Now()
	if err := storage.DB.Model(&reservation).Updates(map[string]interface{}{
		"status":         models.ReservationStatusCancelled,
		"payment_status": models.PaymentStatusFailed,
		"cancelled_at":   now,
	}).Error; err != nil {
		return nil, err
	}
	reservation.Status = models.ReservationStatusCancelled
	reservation.PaymentStatus = models.PaymentStatusFailed
	reservation.CancelledAt = &now

	return &reservation, nil
}

// Cancel lets a guest abandon their own pending reservation before payment.
func (s *ReservationService) Cancel(reservationID, userID uint) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := storage.DB.Where("id = ? AND user_id = ?", reservationID, userID).First(&reservation).Error; err != nil {
		return nil, ErrReservationNotFound
	}
	if reservation.Status != models.ReservationStatusPending {
		return nil, errors.New("only pending reservations can be cancelled")
	}

	now := time.Now()
	if err := storage.DB.Model(&reservation).Updates(map[string]interface{}{
		"status":       models.ReservationStatusCancelled,
		"cancelled_at": now,
	}).Error; err != nil {
		return nil, err
	}
	reservation.Status = models.ReservationStatusCancelled
	reservation.CancelledAt = &now
	return &reservation, nil
}

// commitDateRange upserts a blocked ledger row for every night of the stay.
// Failures are logged and counted, not returned.
func (s *ReservationService) commitDateRange(reservation *models.Reservation) {
	failures := 0
	for d := reservation.CheckIn; d.Before(reservation.CheckOut); d = d.AddDate(0, 0, 1) {
		day := DateOnly(d)

		var record models.AvailabilityRecord
		err := storage.DB.Where("room_id = ? AND date = ?", reservation.RoomID, day).First(&record).Error
		if err == nil {
			err = storage.DB.Model(&record).Updates(map[string]interface{}{
				"is_available":        false,
				"is_blocked":          true,
				"source":              models.SourceBookingConfirmed,
				"external_booking_id": reservation.ConfirmationCode,
			}).Error
		} else if errors.Is(err, gorm.ErrRecordNotFound) {
			err = storage.DB.Create(&models.AvailabilityRecord{
				RoomID:            reservation.RoomID,
				Date:              day,
				IsAvailable:       false,
				IsBlocked:         true,
				Source:            models.SourceBookingConfirmed,
				ExternalBookingID: reservation.ConfirmationCode,
			}).Error
		}
		if err != nil {
			failures++
			log.Printf("ledger commit failed for reservation %d on %s: %v",
				reservation.ID, day.Format("2006-01-02"), err)
		}
	}
	if failures > 0 {
		log.Printf("reservation %d confirmed with %d unwritten ledger nights, needs repair",
			reservation.ID, failures)
	}
}

func (s *ReservationService) uniqueConfirmationCode() (string, error) {
	for attempt := 0; attempt < 10; attempt++ {
		code := utils.GenerateConfirmationCode(confirmationCodeLength)
		if code == "" {
			continue
		}
		var count int64
		storage.DB.Model(&models.Reservation{}).Where("confirmation_code = ?", code).Count(&count)
		if count == 0 {
			return code, nil
		}
	}
	return "", errors.New("could not generate a unique confirmation code")
}

package services

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/cobaltwebtech/irishette-sub001/models"
	"github.com/cobaltwebtech/irishette-sub001/storage"
)

// SyncResult summarizes one reconciliation attempt against an external
// calendar feed.
type SyncResult struct {
	Success           bool   `json:"success"`
	BookingsProcessed int    `json:"bookingsProcessed"`
	Error             string `json:"error,omitempty"`
}

// CalendarService reconciles the availability ledger against external
// calendar feeds and produces our own outbound feed.
type CalendarService struct {
	client *http.Client
}

func NewCalendarService() *CalendarService {
	return &CalendarService{
		// Partner calendar hosts are slow but must never hang a sync run.
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// SyncExternalCalendar fetches the room's feed for a platform and replaces
// that platform's ledger rows with the feed's current contents. Replacement
// is wholesale per sync: delete then insert. It is self-correcting against
// upstream edits and cancellations, at the cost of a brief availability gap
// mid-sync that callers tolerate. A SyncLogEntry is appended no matter how
// the attempt ends.
func (s *CalendarService) SyncExternalCalendar(roomID uint, platform string) (result *SyncResult, err error) {
	result = &SyncResult{}
	started := time.Now()

	defer func() {
		entry := models.SyncLogEntry{
			RoomID:            roomID,
			Platform:          platform,
			Status:            models.SyncStatusSuccess,
			BookingsProcessed: result.BookingsProcessed,
			DurationMS:        time.Since(started).Milliseconds(),
		}
		if err != nil {
			entry.Status = models.SyncStatusError
			entry.ErrorMessage = err.Error()
			result.Error = err.Error()
		}
		if logErr := storage.DB.Create(&entry).Error; logErr != nil {
			log.Printf("failed to append sync log for room %d/%s: %v", roomID, platform, logErr)
		}
	}()

	var room models.Room
	if dbErr := storage.DB.First(&room, roomID).Error; dbErr != nil {
		err = ErrRoomNotFound
		return result, err
	}

	feedURL := room.CalendarURLFor(platform)
	if feedURL == "" {
		err = ErrNoCalendarConfigured
		return result, err
	}

	resp, fetchErr := s.client.Get(feedURL)
	if fetchErr != nil {
		err = fmt.Errorf("%w: %v", ErrFetchFailed, fetchErr)
		return result, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err = fmt.Errorf("%w: status %d from %s", ErrFetchFailed, resp.StatusCode, platform)
		return result, err
	}

	body, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		err = fmt.Errorf("%w: %v", ErrFetchFailed, readErr)
		return result, err
	}

	events := parseICalEvents(string(body))

	tx := storage.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	// Hard delete: the unique (room_id, date) index must be free for the
	// fresh rows.
	if delErr := tx.Unscoped().Where("room_id = ? AND source = ?", roomID, platform).
		Delete(&models.AvailabilityRecord{}).Error; delErr != nil {
		tx.Rollback()
		err = delErr
		return result, err
	}

	for _, ev := range events {
		for _, night := range nightsOf(ev) {
			record := models.AvailabilityRecord{
				RoomID:            roomID,
				Date:              night,
				IsAvailable:       false,
				IsBlocked:         true,
				Source:            platform,
				ExternalBookingID: ev.UID,
			}
			if insErr := tx.Create(&record).Error; insErr != nil {
				tx.Rollback()
				err = insErr
				return result, err
			}
		}
	}

	if commitErr := tx.Commit().Error; commitErr != nil {
		err = commitErr
		return result, err
	}

	now := time.Now()
	switch platform {
	case models.PlatformAirbnb:
		storage.DB.Model(&room).Update("airbnb_last_synced_at", now)
	case models.PlatformExpedia:
		storage.DB.Model(&room).Update("expedia_last_synced_at", now)
	}

	result.Success = true
	result.BookingsProcessed = len(events)
	return result, nil
}

// GenerateOutboundCalendar builds the room's iCalendar document from
// confirmed reservations and manual blocked periods. It is a pure function
// of current state: run twice with nothing changed, it yields byte-identical
// output. Nothing is persisted; callers regenerate on every request.
func (s *CalendarService) GenerateOutboundCalendar(roomID uint) (string, error) {
	var room models.Room
	if err := storage.DB.First(&room, roomID).Error; err != nil {
		return "", ErrRoomNotFound
	}

	var reservations []models.Reservation
	storage.DB.
		Where("room_id = ? AND status = ?", roomID, models.ReservationStatusConfirmed).
		Order("check_in ASC, id ASC").
		Find(&reservations)

	var blocks []models.BlockedPeriod
	storage.DB.
		Where("room_id = ?", roomID).
		Order("start_date ASC, id ASC").
		Find(&blocks)

	var w icalWriter
	w.line("BEGIN:VCALENDAR")
	w.line("VERSION:2.0")
	w.line("PRODID:-//Irishette//Reservation Engine//EN")
	w.line("CALSCALE:GREGORIAN")
	w.line("METHOD:PUBLISH")
	w.line("X-WR-CALNAME:" + room.Name)

	for _, res := range reservations {
		w.line("BEGIN:VEVENT")
		w.line(fmt.Sprintf("UID:reservation-%d@irishette", res.ID))
		// DTSTAMP from the booking's own clock keeps the feed reproducible.
		w.line("DTSTAMP:" + res.CreatedAt.UTC().Format("20060102T150405Z"))
		w.line("DTSTART;VALUE=DATE:" + res.CheckIn.Format(icalDateLayout))
		w.line("DTEND;VALUE=DATE:" + res.CheckOut.Format(icalDateLayout))
		w.line("SUMMARY:Reserved - " + res.GuestName)
		w.line("DESCRIPTION:Confirmation " + res.ConfirmationCode)
		w.line("STATUS:CONFIRMED")
		w.line("END:VEVENT")
	}

	for _, block := range blocks {
		w.line("BEGIN:VEVENT")
		w.line(fmt.Sprintf("UID:block-%d@irishette", block.ID))
		w.line("DTSTAMP:" + block.CreatedAt.UTC().Format("20060102T150405Z"))
		w.line("DTSTART;VALUE=DATE:" + block.StartDate.Format(icalDateLayout))
		// Blocked periods store an inclusive end date; the feed's DTEND is
		// exclusive, so push it one day past.
		w.line("DTEND;VALUE=DATE:" + block.EndDate.AddDate(0, 0, 1).Format(icalDateLayout))
		w.line("SUMMARY:Blocked - " + block.Reason)
		w.line("END:VEVENT")
	}

	w.line("END:VCALENDAR")
	return w.String(), nil
}

// GenerateOutboundCalendarBySlug resolves a room by slug first; the public
// feed endpoint accepts either form.
func (s *CalendarService) GenerateOutboundCalendarBySlug(slug string) (string, *models.Room, error) {
	var room models.Room
	if err := storage.DB.Where("slug = ?", slug).First(&room).Error; err != nil {
		return "", nil, ErrRoomNotFound
	}
	doc, err := s.GenerateOutboundCalendar(room.ID)
	return doc, &room, err
}

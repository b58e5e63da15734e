package services

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cobaltwebtech/irishette-sub001/models"
	"github.com/cobaltwebtech/irishette-sub001/storage"
)

const sampleFeed = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//Airbnb Inc//Hosting Calendar 1.0//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"DTSTAMP:20260901T120000Z\r\n" +
	"DTSTART;VALUE=DATE:20260910\r\n" +
	"DTEND;VALUE=DATE:20260912\r\n" +
	"UID:abc123@airbnb.com\r\n" +
	"SUMMARY:Reserved\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"DTSTAMP:20260901T120000Z\r\n" +
	"DTSTART;VALUE=DATE:20260920\r\n" +
	"DTEND;VALUE=DATE:20260921\r\n" +
	"UID:def456@airbnb.com\r\n" +
	"SUMMARY:Not available\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"DTSTART;VALUE=DATE:20260925\r\n" +
	"DTEND;VALUE=DATE:20260926\r\n" +
	"SUMMARY:No UID, should be dropped\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func feedServer(t *testing.T, body string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/calendar")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestParseICalEventsDropsMalformed(t *testing.T) {
	events := parseICalEvents(sampleFeed)
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2 with the UID-less one dropped", len(events))
	}
	if events[0].UID != "abc123@airbnb.com" {
		t.Errorf("uid = %s, want abc123@airbnb.com", events[0].UID)
	}
	if got := nightsOf(events[0]); len(got) != 2 {
		t.Errorf("nights = %d, want 2 (DTEND exclusive)", len(got))
	}
	if got := nightsOf(events[1]); len(got) != 1 {
		t.Errorf("nights = %d, want 1", len(got))
	}
}

func TestParseICalDateTimeValues(t *testing.T) {
	feed := "BEGIN:VEVENT\r\n" +
		"UID:xyz@expedia.com\r\n" +
		"DTSTART:20260910T160000Z\r\n" +
		"DTEND:20260912T100000Z\r\n" +
		"END:VEVENT\r\n"

	events := parseICalEvents(feed)
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	if !events[0].Start.Equal(date(2026, 9, 10)) {
		t.Errorf("start = %v, want the calendar date only", events[0].Start)
	}
}

func TestSyncExternalCalendarReplacesLedger(t *testing.T) {
	setupTestDB(t)
	srv := feedServer(t, sampleFeed, http.StatusOK)
	room := createTestRoom(t, models.Room{BasePrice: 100, AirbnbCalendarURL: srv.URL})

	result, err := NewCalendarService().SyncExternalCalendar(room.ID, models.PlatformAirbnb)
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	if result.BookingsProcessed != 2 {
		t.Errorf("bookings processed = %d, want 2", result.BookingsProcessed)
	}

	var rows int64
	storage.DB.Model(&models.AvailabilityRecord{}).
		Where("room_id = ? AND source = ?", room.ID, models.PlatformAirbnb).
		Count(&rows)
	if rows != 3 {
		t.Errorf("ledger rows = %d, want 3 nights across both events", rows)
	}

	// Running again replaces, never accumulates.
	if _, err := NewCalendarService().SyncExternalCalendar(room.ID, models.PlatformAirbnb); err != nil {
		t.Fatalf("second sync failed: %v", err)
	}
	storage.DB.Model(&models.AvailabilityRecord{}).
		Where("room_id = ? AND source = ?", room.ID, models.PlatformAirbnb).
		Count(&rows)
	if rows != 3 {
		t.Errorf("ledger rows after resync = %d, want still 3", rows)
	}

	var logs []models.SyncLogEntry
	storage.DB.Where("room_id = ?", room.ID).Find(&logs)
	if len(logs) != 2 {
		t.Fatalf("sync log entries = %d, want 2", len(logs))
	}
	for _, entry := range logs {
		if entry.Status != models.SyncStatusSuccess {
			t.Errorf("log status = %s, want success", entry.Status)
		}
	}

	var refreshed models.Room
	storage.DB.First(&refreshed, room.ID)
	if refreshed.AirbnbLastSyncedAt == nil {
		t.Error("airbnb last synced timestamp not set")
	}
}

func TestSyncExternalCalendarDropsStaleRows(t *testing.T) {
	setupTestDB(t)
	srv := feedServer(t, sampleFeed, http.StatusOK)
	room := createTestRoom(t, models.Room{BasePrice: 100, AirbnbCalendarURL: srv.URL})

	// A row from a booking the platform has since cancelled.
	blockDate(t, room.ID, date(2026, 10, 1), models.PlatformAirbnb)
	// A manual block the sync must not touch.
	blockDate(t, room.ID, date(2026, 10, 2), models.SourceManual)

	if _, err := NewCalendarService().SyncExternalCalendar(room.ID, models.PlatformAirbnb); err != nil {
		t.Fatalf("sync failed: %v", err)
	}

	var stale int64
	storage.DB.Model(&models.AvailabilityRecord{}).
		Where("room_id = ? AND date = ?", room.ID, date(2026, 10, 1)).
		Count(&stale)
	if stale != 0 {
		t.Error("stale airbnb row survived the sync")
	}

	var manual int64
	storage.DB.Model(&models.AvailabilityRecord{}).
		Where("room_id = ? AND source = ?", room.ID, models.SourceManual).
		Count(&manual)
	if manual != 1 {
		t.Error("manual block was clobbered by the sync")
	}
}

func TestSyncExternalCalendarNoURL(t *testing.T) {
	setupTestDB(t)
	room := createTestRoom(t, models.Room{BasePrice: 100})

	_, err := NewCalendarService().SyncExternalCalendar(room.ID, models.PlatformExpedia)
	if !errors.Is(err, ErrNoCalendarConfigured) {
		t.Fatalf("err = %v, want ErrNoCalendarConfigured", err)
	}

	// The attempt still leaves a log entry.
	var logs []models.SyncLogEntry
	storage.DB.Where("room_id = ?", room.ID).Find(&logs)
	if len(logs) != 1 || logs[0].Status != models.SyncStatusError {
		t.Errorf("logs = %+v, want one error entry", logs)
	}
}

func TestSyncExternalCalendarUpstreamError(t *testing.T) {
	setupTestDB(t)
	srv := feedServer(t, "unavailable", http.StatusInternalServerError)
	room := createTestRoom(t, models.Room{BasePrice: 100, AirbnbCalendarURL: srv.URL})

	if _, err := NewCalendarService().SyncExternalCalendar(room.ID, models.PlatformAirbnb); !errors.Is(err, ErrFetchFailed) {
		t.Fatalf("err = %v, want ErrFetchFailed", err)
	}
}

func TestGenerateOutboundCalendarDeterministic(t *testing.T) {
	setupTestDB(t)
	room := createTestRoom(t, models.Room{BasePrice: 100})

	if err := storage.DB.Create(&models.Reservation{
		ConfirmationCode: "ABCD2345",
		RoomID:           room.ID,
		CheckIn:          date(2026, 9, 10),
		CheckOut:         date(2026, 9, 13),
		Status:           models.ReservationStatusConfirmed,
		GuestName:        "Pat Doyle",
	}).Error; err != nil {
		t.Fatalf("creating reservation: %v", err)
	}
	if err := storage.DB.Create(&models.BlockedPeriod{
		RoomID:    room.ID,
		StartDate: date(2026, 9, 20),
		EndDate:   date(2026, 9, 22),
		Reason:    "Maintenance",
	}).Error; err != nil {
		t.Fatalf("creating block: %v", err)
	}

	svc := NewCalendarService()
	first, err := svc.GenerateOutboundCalendar(room.ID)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	second, err := svc.GenerateOutboundCalendar(room.ID)
	if err != nil {
		t.Fatalf("second generate failed: %v", err)
	}
	if first != second {
		t.Error("two generations differ; the feed must be reproducible")
	}

	for _, want := range []string{
		"BEGIN:VCALENDAR\r\n",
		"UID:reservation-1@irishette\r\n",
		"DTSTART;VALUE=DATE:20260910\r\n",
		"DTEND;VALUE=DATE:20260913\r\n",
		"UID:block-1@irishette\r\n",
		// Inclusive stored end date becomes an exclusive DTEND.
		"DTEND;VALUE=DATE:20260923\r\n",
		"END:VCALENDAR\r\n",
	} {
		if !strings.Contains(first, want) {
			t.Errorf("feed missing %q", want)
		}
	}

	if strings.Contains(first, "\n\n") || !strings.HasSuffix(first, "\r\n") {
		t.Error("feed lines must be CRLF terminated")
	}
}

func TestGenerateOutboundCalendarOmitsUnconfirmed(t *testing.T) {
	setupTestDB(t)
	room := createTestRoom(t, models.Room{BasePrice: 100})

	if err := storage.DB.Create(&models.Reservation{
		ConfirmationCode: "PEND2345",
		RoomID:           room.ID,
		CheckIn:          date(2026, 9, 10),
		CheckOut:         date(2026, 9, 13),
		Status:           models.ReservationStatusPending,
	}).Error; err != nil {
		t.Fatalf("creating reservation: %v", err)
	}

	doc, err := NewCalendarService().GenerateOutboundCalendar(room.ID)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if strings.Contains(doc, "VEVENT") {
		t.Error("pending reservation leaked into the outbound feed")
	}
}

func TestGenerateOutboundCalendarBySlug(t *testing.T) {
	setupTestDB(t)
	createTestRoom(t, models.Room{BasePrice: 100, Slug: "rose-room"})

	doc, room, err := NewCalendarService().GenerateOutboundCalendarBySlug("rose-room")
	if err != nil {
		t.Fatalf("generate by slug failed: %v", err)
	}
	if room.Slug != "rose-room" || !strings.Contains(doc, "X-WR-CALNAME:") {
		t.Errorf("unexpected feed for slug lookup")
	}

	if _, _, err := NewCalendarService().GenerateOutboundCalendarBySlug("no-such-room"); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("err = %v, want ErrRoomNotFound", err)
	}
}

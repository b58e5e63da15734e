package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/cobaltwebtech/irishette-sub001/models"
	"github.com/cobaltwebtech/irishette-sub001/storage"

	"github.com/robfig/cron/v3"
)

const (
	// Pause between calls so we don't hammer partner calendar hosts.
	defaultInterCallDelay = 2 * time.Second

	// Sync log rows older than this are pruned by the weekly job.
	syncLogRetention = 90 * 24 * time.Hour

	// Run summaries are operational breadcrumbs, not records; Redis keeps
	// them for a week.
	runSummaryTTL = 7 * 24 * time.Hour

	lastRunKey = "sync:last_run"
)

// SyncRunDetail is the outcome of one room/platform pair within a run.
type SyncRunDetail struct {
	RoomID            uint   `json:"roomID"`
	RoomSlug          string `json:"roomSlug"`
	Platform          string `json:"platform"`
	Success           bool   `json:"success"`
	BookingsProcessed int    `json:"bookingsProcessed"`
	Error             string `json:"error,omitempty"`
}

// SyncRunSummary aggregates one full pass over every active room.
type SyncRunSummary struct {
	StartedAt      time.Time       `json:"startedAt"`
	FinishedAt     time.Time       `json:"finishedAt"`
	RoomsProcessed int             `json:"roomsProcessed"`
	Synced         int             `json:"synced"`
	Failed         int             `json:"failed"`
	Details        []SyncRunDetail `json:"details"`
}

// SyncDriver runs the calendar reconciler for every active room on a fixed
// schedule and does ledger housekeeping on a weekly one.
type SyncDriver struct {
	calendar *CalendarService
	cron     *cron.Cron
	delay    time.Duration
}

func NewSyncDriver(calendar *CalendarService) *SyncDriver {
	return &SyncDriver{
		calendar: calendar,
		cron:     cron.New(),
		delay:    defaultInterCallDelay,
	}
}

// Start registers the hourly sync pass and the weekly prune, then starts the
// scheduler in its own goroutine.
func (d *SyncDriver) Start() {
	d.cron.AddFunc("@hourly", func() {
		summary := d.RunAll()
		log.Printf("calendar sync run finished: %d rooms, %d synced, %d failed",
			summary.RoomsProcessed, summary.Synced, summary.Failed)
	})
	d.cron.AddFunc("@weekly", func() {
		if err := d.PruneSyncLogs(); err != nil {
			log.Printf("sync log prune failed: %v", err)
		}
	})
	d.cron.Start()
}

func (d *SyncDriver) Stop() {
	d.cron.Stop()
}

// RunAll syncs every configured feed of every active room, Airbnb first then
// Expedia, sequentially with a fixed delay between calls. One feed's failure
// is recorded and counted; it never aborts the rest of the run.
func (d *SyncDriver) RunAll() *SyncRunSummary {
	summary := &SyncRunSummary{StartedAt: time.Now()}

	var rooms []models.Room
	storage.DB.Where("status = ?", models.RoomStatusActive).Order("id ASC").Find(&rooms)

	for _, room := range rooms {
		summary.RoomsProcessed++
		for _, platform := range []string{models.PlatformAirbnb, models.PlatformExpedia} {
			if room.CalendarURLFor(platform) == "" {
				continue
			}

			detail := SyncRunDetail{RoomID: room.ID, RoomSlug: room.Slug, Platform: platform}
			result, err := d.calendar.SyncExternalCalendar(room.ID, platform)
			if err != nil {
				detail.Error = err.Error()
				summary.Failed++
				log.Printf("sync failed for room %s/%s: %v", room.Slug, platform, err)
			} else {
				detail.Success = true
				detail.BookingsProcessed = result.BookingsProcessed
				summary.Synced++
			}
			summary.Details = append(summary.Details, detail)

			if d.delay > 0 {
				time.Sleep(d.delay)
			}
		}
	}

	summary.FinishedAt = time.Now()
	d.persistSummary(summary)
	return summary
}

// persistSummary parks the run summary in Redis for operational visibility.
// Best effort: a missing side store costs us a breadcrumb, nothing more.
func (d *SyncDriver) persistSummary(summary *SyncRunSummary) {
	if storage.Redis == nil {
		return
	}
	payload, err := json.Marshal(summary)
	if err != nil {
		return
	}
	ctx := context.Background()
	storage.Redis.Set(ctx, lastRunKey, payload, runSummaryTTL)
	storage.Redis.Set(ctx, "sync:run:"+summary.StartedAt.UTC().Format(time.RFC3339), payload, runSummaryTTL)
}

// LastRunSummary fetches the most recent run summary from Redis.
func (d *SyncDriver) LastRunSummary() (*SyncRunSummary, error) {
	if storage.Redis == nil {
		return nil, errors.New("no run summary store configured")
	}
	payload, err := storage.Redis.Get(context.Background(), lastRunKey).Result()
	if err != nil {
		return nil, err
	}
	var summary SyncRunSummary
	if err := json.Unmarshal([]byte(payload), &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// PruneSyncLogs drops sync log rows past the retention window.
func (d *SyncDriver) PruneSyncLogs() error {
	cutoff := time.Now().Add(-syncLogRetention)
	return storage.DB.Unscoped().
		Where("created_at < ?", cutoff).
		Delete(&models.SyncLogEntry{}).Error
}

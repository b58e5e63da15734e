package models

import "gorm.io/gorm"

const (
	SyncStatusSuccess = "success"
	SyncStatusError   = "error"
	SyncStatusPartial = "partial"
)

// SyncLogEntry is an append-only audit record of one external calendar
// reconciliation attempt. The reconciler writes one entry per attempt,
// including failed ones.
type SyncLogEntry struct {
	gorm.Model
	RoomID            uint   `json:"roomID" gorm:"not null;index"`
	Platform          string `json:"platform" gorm:"type:varchar(20);not null"`
	Status            string `json:"status" gorm:"type:varchar(20);not null"` // success, error, partial
	BookingsProcessed int    `json:"bookingsProcessed"`
	ErrorMessage      string `json:"errorMessage" gorm:"type:text"`
	DurationMS        int64  `json:"durationMs"`
}

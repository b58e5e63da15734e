package models

import (
	"time"

	"gorm.io/gorm"
)

// BlockedPeriod is a manual maintenance or personal-use block created by an
// administrator. It feeds the outbound calendar; automatic conflict
// detection uses the availability ledger instead.
type BlockedPeriod struct {
	gorm.Model
	RoomID    uint      `json:"roomID" gorm:"not null;index"`
	StartDate time.Time `json:"startDate" gorm:"not null"`
	EndDate   time.Time `json:"endDate" gorm:"not null"`
	Reason    string    `json:"reason"`
	Notes     string    `json:"notes" gorm:"type:text"`

	Room Room `json:"-" gorm:"foreignKey:RoomID"`
}

package models

import (
	"time"

	"gorm.io/gorm"
)

// Ledger row sources. booking_confirmed rows are written by the reservation
// lifecycle on payment confirmation; airbnb/expedia rows are replaced
// wholesale on every calendar sync.
const (
	SourceDirect           = "direct"
	SourceAirbnb           = "airbnb"
	SourceExpedia          = "expedia"
	SourceManual           = "manual"
	SourceBookingConfirmed = "booking_confirmed"
)

// AvailabilityRecord is one row of the per-room, per-date availability
// ledger. At most one row exists per (room, date); writers upsert.
type AvailabilityRecord struct {
	gorm.Model
	RoomID            uint      `json:"roomID" gorm:"not null;uniqueIndex:idx_room_date"`
	Date              time.Time `json:"date" gorm:"not null;uniqueIndex:idx_room_date"`
	IsAvailable       bool      `json:"isAvailable" gorm:"default:true"`
	IsBlocked         bool      `json:"isBlocked" gorm:"default:false;index"`
	Source            string    `json:"source" gorm:"type:varchar(30);default:'direct';index"`
	ExternalBookingID string    `json:"externalBookingID"`
	PriceOverride     *float64  `json:"priceOverride"`

	Room Room `json:"-" gorm:"foreignKey:RoomID"`
}

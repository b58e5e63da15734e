package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoomStatusActive   = "active"
	RoomStatusInactive = "inactive"
	RoomStatusArchived = "archived"
)

// Calendar platforms we two-way sync with.
const (
	PlatformAirbnb  = "airbnb"
	PlatformExpedia = "expedia"
)

// Room is a bookable unit of the property. Pricing inputs (base rate, fee and
// tax rates) live here; per-date adjustments live in PricingRule.
type Room struct {
	gorm.Model
	Slug           string  `json:"slug" gorm:"uniqueIndex;not null"`
	Name           string  `json:"name" gorm:"not null"`
	Description    string  `json:"description" gorm:"type:text"`
	BasePrice      float64 `json:"basePrice" gorm:"not null"`
	ServiceFeeRate float64 `json:"serviceFeeRate" gorm:"default:0"`
	StateTaxRate   float64 `json:"stateTaxRate" gorm:"default:0"`
	LocalTaxRate   float64 `json:"localTaxRate" gorm:"default:0"`
	Status         string  `json:"status" gorm:"type:varchar(20);default:'active';index"` // active, inactive, archived

	AirbnbCalendarURL   string     `json:"airbnbCalendarUrl"`
	ExpediaCalendarURL  string     `json:"expediaCalendarUrl"`
	AirbnbLastSyncedAt  *time.Time `json:"airbnbLastSyncedAt"`
	ExpediaLastSyncedAt *time.Time `json:"expediaLastSyncedAt"`
}

// CalendarURLFor returns the configured feed URL for a platform, or "" when
// the room has no feed for it.
func (r *Room) CalendarURLFor(platform string) string {
	switch platform {
	case PlatformAirbnb:
		return r.AirbnbCalendarURL
	case PlatformExpedia:
		return r.ExpediaCalendarURL
	}
	return ""
}

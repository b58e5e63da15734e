package models

import (
	"encoding/json"
	"time"

	"golang.org/x/exp/slices"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	RuleTypeSurchargeRate = "surcharge_rate"
	RuleTypeFixedAmount   = "fixed_amount"
	RuleTypeAbsolutePrice = "absolute_price"
)

// PricingRule is a time-boxed adjustment to a room's nightly rate. The
// meaning of Value depends on RuleType: a fraction of the base price for
// surcharge_rate, a dollar amount for fixed_amount, and the full nightly
// rate for absolute_price. Start/End are inclusive calendar dates.
type PricingRule struct {
	gorm.Model
	RoomID     uint           `json:"roomID" gorm:"not null;index"`
	Name       string         `json:"name" gorm:"not null"`
	RuleType   string         `json:"ruleType" gorm:"type:varchar(30);not null"` // surcharge_rate, fixed_amount, absolute_price
	Value      float64        `json:"value" gorm:"not null"`
	StartDate  time.Time      `json:"startDate" gorm:"not null;index"`
	EndDate    time.Time      `json:"endDate" gorm:"not null"`
	IsActive   bool           `json:"isActive" gorm:"default:true"`
	DaysOfWeek datatypes.JSON `json:"daysOfWeek"` // optional array of weekday numbers 0 (Sunday) .. 6 (Saturday)

	Room Room `json:"-" gorm:"foreignKey:RoomID"`
}

// Weekdays decodes the optional day-of-week filter. A nil slice means the
// rule applies to every night.
func (r *PricingRule) Weekdays() []int {
	if len(r.DaysOfWeek) == 0 {
		return nil
	}
	var days []int
	if err := json.Unmarshal(r.DaysOfWeek, &days); err != nil {
		return nil
	}
	return days
}

// AppliesToAnyOf reports whether the rule's day filter matches at least one
// of the given weekdays. Rules without a filter match everything.
func (r *PricingRule) AppliesToAnyOf(weekdays []time.Weekday) bool {
	filter := r.Weekdays()
	if len(filter) == 0 {
		return true
	}
	for _, wd := range weekdays {
		if slices.Contains(filter, int(wd)) {
			return true
		}
	}
	return false
}

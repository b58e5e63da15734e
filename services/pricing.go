package services

import (
	"math"
	"time"

	"github.com/cobaltwebtech/irishette-sub001/models"
	"github.com/cobaltwebtech/irishette-sub001/storage"
)

// Parties over four guests pay a flat surcharge on the room charge. The
// multiplier is folded into the base amount before fees and taxes and is not
// shown as its own line item.
const guestSurchargeMultiplier = 1.10
const guestSurchargeThreshold = 4

// AppliedRule reports one pricing rule that was applicable to a stay and the
// dollar amount it contributed to the nightly rate. When an absolute_price
// rule wins, every other applicable rule is reported with a zero
// contribution.
type AppliedRule struct {
	RuleID       uint    `json:"ruleID"`
	Name         string  `json:"name"`
	RuleType     string  `json:"ruleType"`
	Value        float64 `json:"value"`
	Contribution float64 `json:"contribution"`
}

// PriceQuote is the full amount breakdown for a stay. Each component is
// rounded to the cent independently; Total is the sum of the rounded
// components.
type PriceQuote struct {
	RoomID       uint          `json:"roomID"`
	Nights       int           `json:"nights"`
	NightlyRate  float64       `json:"nightlyRate"`
	BaseAmount   float64       `json:"baseAmount"`
	ServiceFee   float64       `json:"serviceFee"`
	StateTax     float64       `json:"stateTax"`
	LocalTax     float64       `json:"localTax"`
	Total        float64       `json:"total"`
	AppliedRules []AppliedRule `json:"appliedRules"`
}

type PricingService struct{}

func NewPricingService() *PricingService {
	return &PricingService{}
}

// Quote prices a stay of [checkIn, checkOut) for a room. Active rules whose
// date range overlaps the stay are applied in start-date order on top of the
// room's base price; an absolute_price rule discards all accumulated
// adjustments and shuts out later non-absolute rules (a later absolute rule
// still overrides an earlier one).
func (s *PricingService) Quote(roomID uint, checkIn, checkOut time.Time, numGuests int) (*PriceQuote, error) {
	checkIn = DateOnly(checkIn)
	checkOut = DateOnly(checkOut)

	nights := int(checkOut.Sub(checkIn).Hours() / 24)
	if nights <= 0 {
		return nil, ErrInvalidRange
	}

	var room models.Room
	if err := storage.DB.First(&room, roomID).Error; err != nil {
		return nil, ErrRoomNotFound
	}

	var rules []models.PricingRule
	storage.DB.
		Where("room_id = ? AND is_active = ? AND start_date < ? AND end_date >= ?",
			roomID, true, checkOut, checkIn).
		Order("start_date ASC").
		Find(&rules)

	stayWeekdays := weekdaysOfStay(checkIn, nights)

	rate := room.BasePrice
	absoluteFired := false
	applied := make([]AppliedRule, 0, len(rules))

	for _, rule := range rules {
		if !rule.AppliesToAnyOf(stayWeekdays) {
			continue
		}

		entry := AppliedRule{
			RuleID:   rule.ID,
			Name:     rule.Name,
			RuleType: rule.RuleType,
			Value:    rule.Value,
		}

		switch rule.RuleType {
		case models.RuleTypeAbsolutePrice:
			// Absolute rules are exclusive: wipe out everything applied so
			// far and ignore non-absolute rules from here on.
			for i := range applied {
				applied[i].Contribution = 0
			}
			rate = rule.Value
			absoluteFired = true
			entry.Contribution = rule.Value - room.BasePrice
		case models.RuleTypeSurchargeRate:
			if !absoluteFired {
				delta := room.BasePrice * rule.Value
				rate += delta
				entry.Contribution = delta
			}
		case models.RuleTypeFixedAmount:
			if !absoluteFired {
				rate += rule.Value
				entry.Contribution = rule.Value
			}
		default:
			continue
		}

		applied = append(applied, entry)
	}

	baseAmount := rate * float64(nights)
	if numGuests > guestSurchargeThreshold {
		baseAmount *= guestSurchargeMultiplier
	}

	// Fee and both taxes are computed from the unrounded adjusted base; the
	// fee is never taxed and the taxes never compound.
	quote := &PriceQuote{
		RoomID:       room.ID,
		Nights:       nights,
		NightlyRate:  rate,
		BaseAmount:   roundCents(baseAmount),
		ServiceFee:   roundCents(baseAmount * room.ServiceFeeRate),
		StateTax:     roundCents(baseAmount * room.StateTaxRate),
		LocalTax:     roundCents(baseAmount * room.LocalTaxRate),
		AppliedRules: applied,
	}
	quote.Total = roundCents(quote.BaseAmount + quote.ServiceFee + quote.StateTax + quote.LocalTax)

	return quote, nil
}

// roundCents rounds to the nearest cent, half away from zero.
func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// DateOnly truncates a timestamp to its UTC calendar date. Every date the
// engine stores or compares goes through this.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func weekdaysOfStay(checkIn time.Time, nights int) []time.Weekday {
	seen := [7]bool{}
	out := make([]time.Weekday, 0, 7)
	for i := 0; i < nights && i < 7; i++ {
		wd := checkIn.AddDate(0, 0, i).Weekday()
		if !seen[wd] {
			seen[wd] = true
			out = append(out, wd)
		}
	}
	return out
}

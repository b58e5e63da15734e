package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	ReservationStatusPending   = "pending"
	ReservationStatusConfirmed = "confirmed"
	ReservationStatusCancelled = "cancelled"
	ReservationStatusCompleted = "completed"
)

const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

// Reservation is a guest's stay. Created as pending before payment; only a
// verified payment-success signal moves it to confirmed, and only confirmed
// reservations block the availability ledger. confirmed and cancelled are
// terminal.
type Reservation struct {
	gorm.Model
	ConfirmationCode string    `json:"confirmationCode" gorm:"uniqueIndex;type:varchar(12)"`
	RoomID           uint      `json:"roomID" gorm:"not null;index"`
	UserID           uint      `json:"userID" gorm:"index"`
	CheckIn          time.Time `json:"checkIn" gorm:"not null"`
	CheckOut         time.Time `json:"checkOut" gorm:"not null"`
	NumGuests        int       `json:"numGuests"`

	BaseAmount  float64 `json:"baseAmount"`
	ServiceFee  float64 `json:"serviceFee"`
	StateTax    float64 `json:"stateTax"`
	LocalTax    float64 `json:"localTax"`
	TotalAmount float64 `json:"totalAmount"`

	Status        string `json:"status" gorm:"type:varchar(20);default:'pending';index"`        // pending, confirmed, cancelled, completed
	PaymentStatus string `json:"paymentStatus" gorm:"type:varchar(20);default:'pending';index"` // pending, paid, failed, refunded

	GuestName  string `json:"guestName"`
	GuestEmail string `json:"guestEmail"`
	GuestPhone string `json:"guestPhone"`

	StripeSessionID       string `json:"stripeSessionID" gorm:"index"`
	StripePaymentIntentID string `json:"stripePaymentIntentID"`

	ConfirmedAt *time.Time `json:"confirmedAt"`
	CancelledAt *time.Time `json:"cancelledAt"`

	Room Room  `json:"room,omitempty" gorm:"foreignKey:RoomID"`
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

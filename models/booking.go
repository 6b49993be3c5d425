package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingPending    BookingStatus = "pending"
	BookingConfirmed  BookingStatus = "confirmed"
	BookingInProgress BookingStatus = "in_progress"
	BookingCompleted  BookingStatus = "completed"
	BookingCancelled  BookingStatus = "cancelled"
)

// bookingTransitions is the single transition table for the booking lifecycle.
// Terminal states (completed, cancelled) have no outgoing edges.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:    {BookingConfirmed, BookingInProgress, BookingCancelled},
	BookingConfirmed:  {BookingInProgress, BookingCancelled},
	BookingInProgress: {BookingCompleted},
}

// CanTransition reports whether moving from one booking status to another is legal.
func (s BookingStatus) CanTransition(to BookingStatus) bool {
	for _, next := range bookingTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status permits no further transitions.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingCompleted || s == BookingCancelled
}

// BlockingStatuses are the statuses that count toward charger overlap detection.
var BlockingStatuses = []BookingStatus{BookingPending, BookingConfirmed, BookingInProgress}

// Booking represents a reservation of one charger for one time window by one driver.
// Start and End are minutes from midnight on BookingDate ("2006-01-02").
type Booking struct {
	ID        string `bson:"id" json:"id"`
	UserID    string `bson:"user_id" json:"user_id"`
	HostID    string `bson:"host_id" json:"host_id"` // denormalized from the station for payout queries
	StationID string `bson:"station_id" json:"station_id"`
	ChargerID string `bson:"charger_id" json:"charger_id"`
	PlugID    string `bson:"plug_id,omitempty" json:"plug_id,omitempty"`

	Status      BookingStatus `bson:"status" json:"status"`
	BookingDate string        `bson:"booking_date" json:"booking_date"`
	Start       int           `bson:"start" json:"start"`
	End         int           `bson:"end" json:"end"`

	HourlyRate  decimal.Decimal `bson:"hourly_rate" json:"hourly_rate"`
	Subtotal    decimal.Decimal `bson:"subtotal" json:"subtotal"`
	PlatformFee decimal.Decimal `bson:"platform_fee" json:"platform_fee"`
	TotalAmount decimal.Decimal `bson:"total_amount" json:"total_amount"`
	Currency    string          `bson:"currency" json:"currency"`

	PaymentRef  string     `bson:"payment_ref,omitempty" json:"payment_ref,omitempty"` // gateway charge reference
	IsPaid      bool       `bson:"is_paid" json:"is_paid"`
	PaymentDate *time.Time `bson:"payment_date,omitempty" json:"payment_date,omitempty"`

	// PayoutID is set when the booking is claimed by a payout. An empty value
	// marks the booking as still eligible for aggregation.
	PayoutID string `bson:"payout_id,omitempty" json:"payout_id,omitempty"`

	CheckInTime  *time.Time `bson:"check_in_time,omitempty" json:"check_in_time,omitempty"`
	CheckOutTime *time.Time `bson:"check_out_time,omitempty" json:"check_out_time,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// BookingStatusRecord is an audit entry appended on every status transition.
type BookingStatusRecord struct {
	ID        string        `bson:"id" json:"id"`
	BookingID string        `bson:"booking_id" json:"booking_id"`
	OldStatus BookingStatus `bson:"old_status" json:"old_status"`
	NewStatus BookingStatus `bson:"new_status" json:"new_status"`
	ChangedBy string        `bson:"changed_by" json:"changed_by"`
	Reason    string        `bson:"reason,omitempty" json:"reason,omitempty"`
	Timestamp time.Time     `bson:"timestamp" json:"timestamp"`
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PayoutStatus mirrors the gateway's transfer lifecycle.
type PayoutStatus string

const (
	PayoutPending   PayoutStatus = "pending"
	PayoutInTransit PayoutStatus = "in_transit"
	PayoutPaid      PayoutStatus = "paid"
	PayoutFailed    PayoutStatus = "failed"
	PayoutCancelled PayoutStatus = "cancelled"
)

// Payout is a single external funds transfer to a host covering a batch of
// completed bookings. Amount is the sum of booking subtotals; the platform
// fee portion is retained and never paid out.
type Payout struct {
	ID       string          `bson:"id" json:"id"`
	HostID   string          `bson:"host_id" json:"host_id"`
	Amount   decimal.Decimal `bson:"amount" json:"amount"`
	Currency string          `bson:"currency" json:"currency"`

	TransferRef string `bson:"transfer_ref,omitempty" json:"transfer_ref,omitempty"` // gateway transfer id
	AccountRef  string `bson:"account_ref" json:"account_ref"`                       // host's connected account id

	Status       PayoutStatus `bson:"status" json:"status"`
	BookingIDs   []string     `bson:"booking_ids" json:"booking_ids"`
	BookingCount int          `bson:"booking_count" json:"booking_count"`

	ExpectedArrival *time.Time `bson:"expected_arrival,omitempty" json:"expected_arrival,omitempty"`
	ArrivalDate     *time.Time `bson:"arrival_date,omitempty" json:"arrival_date,omitempty"`
	CreatedAt       time.Time  `bson:"created_at" json:"created_at"`
}

// Payment is a charge-side record for a driver payment collected through the
// gateway, kept for history and webhook reconciliation.
type Payment struct {
	ID          string          `bson:"id" json:"id"`
	UserID      string          `bson:"user_id" json:"user_id"`
	BookingID   string          `bson:"booking_id,omitempty" json:"booking_id,omitempty"`
	Amount      decimal.Decimal `bson:"amount" json:"amount"`
	PlatformFee decimal.Decimal `bson:"platform_fee" json:"platform_fee"`
	HostPortion decimal.Decimal `bson:"host_portion" json:"host_portion"`
	Currency    string          `bson:"currency" json:"currency"`
	Status      string          `bson:"status" json:"status"` // pending, succeeded, failed
	ChargeRef   string          `bson:"charge_ref" json:"charge_ref"`
	CreatedAt   time.Time       `bson:"created_at" json:"created_at"`
	ProcessedAt *time.Time      `bson:"processed_at,omitempty" json:"processed_at,omitempty"`
}

// EarningsOverview is the host dashboard rollup of paid booking subtotals.
type EarningsOverview struct {
	Today     decimal.Decimal `json:"today"`
	ThisWeek  decimal.Decimal `json:"this_week"`
	ThisMonth decimal.Decimal `json:"this_month"`
}

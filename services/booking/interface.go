package booking

import (
	"context"
	"time"

	bookingRepo "chargehub/database/repository/booking"
	stationRepo "chargehub/database/repository/station"
	userRepo "chargehub/database/repository/user"
	"chargehub/models"
	"chargehub/services/notification"
	"chargehub/services/payment"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateBookingInput is the request to reserve a charger for a time window.
// Times are wall-clock "15:04" strings on BookingDate ("2006-01-02").
type CreateBookingInput struct {
	UserID      string `json:"user_id"`
	StationID   string `json:"station_id"`
	ChargerID   string `json:"charger_id"`
	PlugID      string `json:"plug_id"`
	BookingDate string `json:"booking_date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
}

// ChargingHistoryEntry is a driver-facing view of a completed session.
type ChargingHistoryEntry struct {
	BookingID     string          `json:"booking_id"`
	StationName   string          `json:"station_name"`
	BookingDate   string          `json:"booking_date"`
	DurationHours decimal.Decimal `json:"duration_hours"`
	UsageKWh      decimal.Decimal `json:"usage_kwh"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	PlatformFee   decimal.Decimal `json:"platform_fee"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

// BookingService owns the booking lifecycle: creation with overlap
// protection, the status state machine, session pricing, and payment marking.
type BookingService interface {
	Create(ctx context.Context, in CreateBookingInput) (*models.Booking, error)
	Get(ctx context.Context, bookingID, actorID string) (*models.Booking, error)
	HostAccept(ctx context.Context, bookingID, actorID string) (*models.Booking, error)
	HostReject(ctx context.Context, bookingID, actorID string) (*models.Booking, error)
	StartSession(ctx context.Context, bookingID, actorID string) (*models.Booking, error)
	StopSession(ctx context.Context, bookingID, actorID string) (*models.Booking, error)
	Cancel(ctx context.Context, bookingID, actorID string) (*models.Booking, error)
	MarkPaid(ctx context.Context, bookingID, paymentRef string) (*models.Booking, error)
	InitiatePayment(ctx context.Context, bookingID, actorID string) (*payment.Charge, error)
	HasOverlap(ctx context.Context, chargerID, date, startClock, endClock, excludeID string) (bool, error)
	ListForUser(ctx context.Context, userID string) ([]models.Booking, error)
	ChargingHistory(ctx context.Context, userID string) ([]ChargingHistoryEntry, error)
}

// DefaultBookingService implements BookingService.
type DefaultBookingService struct {
	Repo        bookingRepo.BookingRepository
	StationRepo stationRepo.StationRepository
	UserRepo    userRepo.UserRepository
	PaymentRepo PaymentRecorder
	Gateway     payment.Gateway
	Notifier    notification.NotificationService
	FeeRate     decimal.Decimal
	Currency    string
	Logger      *zap.Logger

	// Now is a clock override for tests; nil means time.Now.
	Now func() time.Time
}

// PaymentRecorder persists charge-side payment records.
type PaymentRecorder interface {
	CreatePayment(ctx context.Context, p *models.Payment) error
}

func (s *DefaultBookingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

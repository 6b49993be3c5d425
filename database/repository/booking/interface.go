// File: database/repository/booking/interface.go
package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chargehub/database"
	"chargehub/models"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrNotFound is returned when no booking matches the query.
	ErrNotFound = errors.New("booking not found")
	// ErrOverlap is returned when a blocking booking already covers the requested window.
	ErrOverlap = errors.New("charger time slot overlaps an existing booking")
	// ErrStateChanged is returned when a conditional transition finds the booking
	// no longer in the expected status.
	ErrStateChanged = errors.New("booking status changed concurrently")
)

// TransitionUpdate carries the optional field updates applied together with a
// status transition. Nil fields are left untouched.
type TransitionUpdate struct {
	CheckInTime  *time.Time
	CheckOutTime *time.Time
	Subtotal     *decimal.Decimal
	PlatformFee  *decimal.Decimal
	TotalAmount  *decimal.Decimal
}

type BookingRepository interface {
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	// CreateWithOverlapGuard inserts the booking inside a transaction that
	// serializes concurrent creations per (charger, date). Returns ErrOverlap
	// when a blocking booking covers the window.
	CreateWithOverlapGuard(ctx context.Context, b *models.Booking) error
	HasOverlap(ctx context.Context, chargerID, date string, start, end int, excludeID string) (bool, error)
	// TransitionStatus applies from→to conditionally; ErrStateChanged when the
	// booking is not in the expected status anymore.
	TransitionStatus(ctx context.Context, id string, from, to models.BookingStatus, upd TransitionUpdate) (*models.Booking, error)
	MarkPaid(ctx context.Context, id, paymentRef string, paidAt time.Time) (*models.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]models.Booking, error)
	ListCompletedByUser(ctx context.Context, userID string) ([]models.Booking, error)
	// EligibleForPayout returns completed, paid bookings for the host that no
	// payout has claimed yet. The payout aggregator and the earnings report
	// both go through this single predicate.
	EligibleForPayout(ctx context.Context, hostID string) ([]models.Booking, error)
	SumPaidSubtotalBetween(ctx context.Context, hostID string, from, to time.Time) (decimal.Decimal, error)
	AppendStatusRecord(ctx context.Context, rec models.BookingStatusRecord) error
}

type mongoBookingRepo struct {
	coll        *mongo.Collection
	historyColl *mongo.Collection
	guardColl   *mongo.Collection
}

// NewMongoBookingRepo constructs a new MongoDB BookingRepository.
func NewMongoBookingRepo() BookingRepository {
	db := database.MongoClient.Database("chargehub")
	repo := &mongoBookingRepo{
		coll:        db.Collection("bookings"),
		historyColl: db.Collection("booking_status_history"),
		guardColl:   db.Collection("charger_days"),
	}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create booking indexes: %v\n", err)
	}
	return repo
}

// File: database/repository/payout/interface.go
package payoutRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chargehub/database"
	"chargehub/models"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrNotFound is returned when no payout matches the query.
	ErrNotFound = errors.New("payout not found")
	// ErrBookingsClaimed is returned when a concurrent payout run claimed one
	// or more of the selected bookings first.
	ErrBookingsClaimed = errors.New("bookings already claimed by another payout")
)

type PayoutRepository interface {
	GetByID(ctx context.Context, id string) (*models.Payout, error)
	GetByTransferRef(ctx context.Context, transferRef string) (*models.Payout, error)
	// ClaimAndCreate marks the bookings with the payout id and inserts the
	// payout document in one transaction. If any booking was claimed in the
	// meantime the whole transaction aborts with ErrBookingsClaimed.
	ClaimAndCreate(ctx context.Context, p *models.Payout) error
	// Release undoes a claim after a synchronous gateway rejection: unsets the
	// payout id on the bookings and deletes the payout document, which never
	// reached the gateway in any form.
	Release(ctx context.Context, payoutID string) error
	// ReleaseBookings returns the payout's claimed bookings to the eligible
	// pool but keeps the payout document, so a failed transfer stays visible
	// in the host's payout history.
	ReleaseBookings(ctx context.Context, payoutID string) error
	SetTransfer(ctx context.Context, payoutID, transferRef string, status models.PayoutStatus, expectedArrival *time.Time) error
	UpdateStatus(ctx context.Context, payoutID string, status models.PayoutStatus, arrival *time.Time) error
	OldestPendingByHost(ctx context.Context, hostID string) (*models.Payout, error)
	// PendingWithoutTransfer finds the host's oldest pending payout that never
	// recorded a transfer reference, left behind by a transport failure.
	PendingWithoutTransfer(ctx context.Context, hostID string) (*models.Payout, error)
	RecentByHost(ctx context.Context, hostID string, limit int64) ([]models.Payout, error)

	CreatePayment(ctx context.Context, p *models.Payment) error
	ListPaymentsByUser(ctx context.Context, userID string) ([]models.Payment, error)
}

type mongoPayoutRepo struct {
	coll        *mongo.Collection
	bookingColl *mongo.Collection
	paymentColl *mongo.Collection
}

// NewMongoPayoutRepo constructs a new MongoDB PayoutRepository.
func NewMongoPayoutRepo() PayoutRepository {
	db := database.MongoClient.Database("chargehub")
	repo := &mongoPayoutRepo{
		coll:        db.Collection("payouts"),
		bookingColl: db.Collection("bookings"),
		paymentColl: db.Collection("payments"),
	}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create payout indexes: %v\n", err)
	}
	return repo
}

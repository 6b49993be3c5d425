// File: database/repository/booking/queries.go
package bookingRepo

import (
	"context"
	"time"

	"chargehub/models"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// overlapFilter matches blocking bookings whose half-open [start, end) window
// intersects the requested one. Touching endpoints do not overlap.
func overlapFilter(chargerID, date string, start, end int, excludeID string) bson.M {
	filter := bson.M{
		"charger_id":   chargerID,
		"booking_date": date,
		"status":       bson.M{"$in": models.BlockingStatuses},
		"start":        bson.M{"$lt": end},
		"end":          bson.M{"$gt": start},
	}
	if excludeID != "" {
		filter["id"] = bson.M{"$ne": excludeID}
	}
	return filter
}

func (r *mongoBookingRepo) HasOverlap(ctx context.Context, chargerID, date string, start, end int, excludeID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, overlapFilter(chargerID, date, start, end, excludeID), options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *mongoBookingRepo) ListByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *mongoBookingRepo) ListCompletedByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"user_id": userID, "status": models.BookingCompleted}
	cursor, err := r.coll.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "booking_date", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

// eligibleFilter is the one payout-eligibility predicate: completed, paid,
// not yet claimed by any payout.
func eligibleFilter(hostID string) bson.M {
	return bson.M{
		"host_id": hostID,
		"status":  models.BookingCompleted,
		"is_paid": true,
		"$or": []bson.M{
			{"payout_id": bson.M{"$exists": false}},
			{"payout_id": ""},
		},
	}
}

func (r *mongoBookingRepo) EligibleForPayout(ctx context.Context, hostID string) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, eligibleFilter(hostID),
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *mongoBookingRepo) SumPaidSubtotalBetween(ctx context.Context, hostID string, from, to time.Time) (decimal.Decimal, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"host_id":      hostID,
		"status":       models.BookingCompleted,
		"is_paid":      true,
		"payment_date": bson.M{"$gte": from, "$lt": to},
	}
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return decimal.Zero, err
	}
	defer cursor.Close(ctx)

	// Summed in the application so decimal precision survives; paid-booking
	// volumes per host per window stay small.
	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, b := range bookings {
		total = total.Add(b.Subtotal)
	}
	return total, nil
}

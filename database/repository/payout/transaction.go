// File: database/repository/payout/transaction.go
package payoutRepo

import (
	"context"
	"fmt"
	"time"

	"chargehub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ClaimAndCreate is the payout critical section. It conditionally claims
// every selected booking (payout_id must still be unset) and inserts the
// payout document, all in one transaction. A claim count short of the
// selection means a concurrent run won some of the bookings, and the whole
// transaction aborts without side effects.
func (r *mongoPayoutRepo) ClaimAndCreate(ctx context.Context, p *models.Payout) error {
	client := r.coll.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	txnFn := func(sc mongo.SessionContext) error {
		claimFilter := bson.M{
			"id":      bson.M{"$in": p.BookingIDs},
			"status":  models.BookingCompleted,
			"is_paid": true,
			"$or": []bson.M{
				{"payout_id": bson.M{"$exists": false}},
				{"payout_id": ""},
			},
		}
		res, err := r.bookingColl.UpdateMany(sc, claimFilter,
			bson.M{"$set": bson.M{"payout_id": p.ID}})
		if err != nil {
			return fmt.Errorf("failed to claim bookings: %w", err)
		}
		if res.ModifiedCount != int64(len(p.BookingIDs)) {
			return ErrBookingsClaimed
		}

		if _, err := r.coll.InsertOne(sc, p); err != nil {
			return fmt.Errorf("insert payout failed: %w", err)
		}
		return nil
	}

	if err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	}); err != nil {
		return err
	}

	return nil
}

// Release rolls back a payout the gateway rejected outright: bookings claimed
// by the payout become eligible again and the payout document is removed.
func (r *mongoPayoutRepo) Release(ctx context.Context, payoutID string) error {
	client := r.coll.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	txnFn := func(sc mongo.SessionContext) error {
		if _, err := r.bookingColl.UpdateMany(sc,
			bson.M{"payout_id": payoutID},
			bson.M{"$set": bson.M{"payout_id": ""}}); err != nil {
			return fmt.Errorf("failed to release bookings: %w", err)
		}
		if _, err := r.coll.DeleteOne(sc, bson.M{"id": payoutID}); err != nil {
			return fmt.Errorf("failed to delete payout: %w", err)
		}
		return nil
	}

	if err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	}); err != nil {
		return fmt.Errorf("payout release transaction failed: %w", err)
	}

	return nil
}

// ReleaseBookings unclaims the bookings of a payout whose transfer failed
// after submission. The payout document stays, keeping the failure on record.
func (r *mongoPayoutRepo) ReleaseBookings(ctx context.Context, payoutID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.bookingColl.UpdateMany(ctx,
		bson.M{"payout_id": payoutID},
		bson.M{"$set": bson.M{"payout_id": ""}}); err != nil {
		return fmt.Errorf("failed to release bookings: %w", err)
	}
	return nil
}

// File: database/repository/booking/transaction.go
package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chargehub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const createTxnAttempts = 3

// CreateWithOverlapGuard serializes overlap-check + insert per (charger, date).
// Both run inside one transaction that also bumps a guard document for the
// charger-day; two concurrent creations for the same charger-day then write
// the same guard doc, so one of them aborts with a transient error, retries,
// and sees the committed booking in its overlap check.
func (r *mongoBookingRepo) CreateWithOverlapGuard(ctx context.Context, b *models.Booking) error {
	client := r.coll.Database().Client()

	var lastErr error
	for attempt := 0; attempt < createTxnAttempts; attempt++ {
		sess, err := client.StartSession()
		if err != nil {
			return fmt.Errorf("could not start mongo session: %w", err)
		}

		err = mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
			if err := sc.StartTransaction(); err != nil {
				return err
			}
			if err := r.createInTxn(sc, b); err != nil {
				_ = sc.AbortTransaction(sc)
				return err
			}
			return sc.CommitTransaction(sc)
		})
		sess.EndSession(ctx)

		if err == nil {
			return nil
		}
		if errors.Is(err, ErrOverlap) {
			return ErrOverlap
		}
		if !isTransientTxnError(err) {
			return fmt.Errorf("booking creation transaction failed: %w", err)
		}
		lastErr = err
		time.Sleep(time.Duration(attempt+1) * 50 * time.Millisecond)
	}
	return fmt.Errorf("booking creation transaction failed after retries: %w", lastErr)
}

func (r *mongoBookingRepo) createInTxn(sc mongo.SessionContext, b *models.Booking) error {
	guard := bson.M{"charger_id": b.ChargerID, "date": b.BookingDate}
	_, err := r.guardColl.UpdateOne(sc, guard,
		bson.M{"$inc": bson.M{"version": 1}},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to bump charger-day guard: %w", err)
	}

	n, err := r.coll.CountDocuments(sc,
		overlapFilter(b.ChargerID, b.BookingDate, b.Start, b.End, ""),
		options.Count().SetLimit(1))
	if err != nil {
		return fmt.Errorf("overlap check failed: %w", err)
	}
	if n > 0 {
		return ErrOverlap
	}

	if _, err := r.coll.InsertOne(sc, b); err != nil {
		return fmt.Errorf("insert booking failed: %w", err)
	}
	return nil
}

func isTransientTxnError(err error) bool {
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.HasErrorLabel("TransientTransactionError") {
		return true
	}
	var we mongo.WriteException
	return errors.As(err, &we) && we.HasErrorLabel("TransientTransactionError")
}

// File: database/repository/booking/crud.go
package bookingRepo

import (
	"context"
	"errors"
	"time"

	"chargehub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *mongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var b models.Booking
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&b)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *mongoBookingRepo) TransitionStatus(ctx context.Context, id string, from, to models.BookingStatus, upd TransitionUpdate) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{
		"status":     to,
		"updated_at": time.Now(),
	}
	if upd.CheckInTime != nil {
		set["check_in_time"] = *upd.CheckInTime
	}
	if upd.CheckOutTime != nil {
		set["check_out_time"] = *upd.CheckOutTime
	}
	if upd.Subtotal != nil {
		set["subtotal"] = *upd.Subtotal
	}
	if upd.PlatformFee != nil {
		set["platform_fee"] = *upd.PlatformFee
	}
	if upd.TotalAmount != nil {
		set["total_amount"] = *upd.TotalAmount
	}

	// Conditional update keeps concurrent transitions from both applying.
	filter := bson.M{"id": id, "status": from}
	after := options.After
	var b models.Booking
	err := r.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": set},
		&options.FindOneAndUpdateOptions{ReturnDocument: &after}).Decode(&b)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// Either the booking is missing or its status moved under us.
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return nil, ErrNotFound
		}
		return nil, ErrStateChanged
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *mongoBookingRepo) MarkPaid(ctx context.Context, id, paymentRef string, paidAt time.Time) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id, "status": models.BookingCompleted, "is_paid": false}
	set := bson.M{
		"is_paid":      true,
		"payment_ref":  paymentRef,
		"payment_date": paidAt,
		"updated_at":   time.Now(),
	}
	after := options.After
	var b models.Booking
	err := r.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": set},
		&options.FindOneAndUpdateOptions{ReturnDocument: &after}).Decode(&b)
	if errors.Is(err, mongo.ErrNoDocuments) {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return nil, ErrNotFound
		}
		return nil, ErrStateChanged
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *mongoBookingRepo) AppendStatusRecord(ctx context.Context, rec models.BookingStatusRecord) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.historyColl.InsertOne(ctx, rec)
	return err
}

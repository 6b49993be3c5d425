// File: database/repository/payout/crud.go
package payoutRepo

import (
	"context"
	"errors"
	"time"

	"chargehub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *mongoPayoutRepo) GetByID(ctx context.Context, id string) (*models.Payout, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var p models.Payout
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *mongoPayoutRepo) GetByTransferRef(ctx context.Context, transferRef string) (*models.Payout, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var p models.Payout
	err := r.coll.FindOne(ctx, bson.M{"transfer_ref": transferRef}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *mongoPayoutRepo) SetTransfer(ctx context.Context, payoutID, transferRef string, status models.PayoutStatus, expectedArrival *time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{"transfer_ref": transferRef, "status": status}
	if expectedArrival != nil {
		set["expected_arrival"] = *expectedArrival
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": payoutID}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoPayoutRepo) UpdateStatus(ctx context.Context, payoutID string, status models.PayoutStatus, arrival *time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{"status": status}
	if arrival != nil {
		set["arrival_date"] = *arrival
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": payoutID}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoPayoutRepo) OldestPendingByHost(ctx context.Context, hostID string) (*models.Payout, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"host_id": hostID,
		"status":  bson.M{"$in": []models.PayoutStatus{models.PayoutPending, models.PayoutInTransit}},
	}
	var p models.Payout
	err := r.coll.FindOne(ctx, filter,
		options.FindOne().SetSort(bson.D{{Key: "created_at", Value: 1}})).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *mongoPayoutRepo) PendingWithoutTransfer(ctx context.Context, hostID string) (*models.Payout, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"host_id": hostID,
		"status":  models.PayoutPending,
		"$or": []bson.M{
			{"transfer_ref": bson.M{"$exists": false}},
			{"transfer_ref": ""},
		},
	}
	var p models.Payout
	err := r.coll.FindOne(ctx, filter,
		options.FindOne().SetSort(bson.D{{Key: "created_at", Value: 1}})).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *mongoPayoutRepo) RecentByHost(ctx context.Context, hostID string, limit int64) ([]models.Payout, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{"host_id": hostID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var payouts []models.Payout
	if err := cursor.All(ctx, &payouts); err != nil {
		return nil, err
	}
	return payouts, nil
}

func (r *mongoPayoutRepo) CreatePayment(ctx context.Context, p *models.Payment) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.paymentColl.InsertOne(ctx, p)
	return err
}

func (r *mongoPayoutRepo) ListPaymentsByUser(ctx context.Context, userID string) ([]models.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.paymentColl.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var payments []models.Payment
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *mongoPayoutRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "host_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
		{
			Keys:    bson.D{{Key: "transfer_ref", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}
	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	return err
}

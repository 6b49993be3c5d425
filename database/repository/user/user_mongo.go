// File: database/repository/user/user_mongo.go
package userRepo

import (
	"context"
	"errors"
	"time"

	"chargehub/database"
	"chargehub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFound is returned when no user matches the query.
var ErrNotFound = errors.New("user not found")

// UserRepository reads the account fields the booking and payout flows need.
// Account lifecycle management lives outside this service.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	SetAccountRef(ctx context.Context, id, accountRef string) error
	SetCustomerRef(ctx context.Context, id, customerRef string) error
}

type mongoUserRepo struct {
	coll *mongo.Collection
}

// NewMongoUserRepo creates a new instance of UserRepository using MongoDB.
func NewMongoUserRepo() UserRepository {
	coll := database.MongoClient.Database("chargehub").Collection("users")
	return &mongoUserRepo{coll: coll}
}

func (r *mongoUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var u models.User
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *mongoUserRepo) SetAccountRef(ctx context.Context, id, accountRef string) error {
	return r.setField(ctx, id, "account_ref", accountRef)
}

func (r *mongoUserRepo) SetCustomerRef(ctx context.Context, id, customerRef string) error {
	return r.setField(ctx, id, "customer_ref", customerRef)
}

func (r *mongoUserRepo) setField(ctx context.Context, id, field, value string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": bson.M{field: value}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// File: database/repository/station/crud.go
package stationRepo

import (
	"context"
	"errors"
	"time"

	"chargehub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *mongoStationRepo) GetStationByID(ctx context.Context, id string) (*models.ChargingStation, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var s models.ChargingStation
	err := r.stationColl.FindOne(ctx, bson.M{"id": id}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *mongoStationRepo) GetChargerByID(ctx context.Context, id string) (*models.Charger, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var c models.Charger
	err := r.chargerColl.FindOne(ctx, bson.M{"id": id}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *mongoStationRepo) ListStations(ctx context.Context, search string) ([]models.ChargingStation, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{}
	if search != "" {
		regex := bson.M{"$regex": search, "$options": "i"}
		filter["$or"] = []bson.M{
			{"name": regex},
			{"location_area": regex},
			{"address": regex},
		}
	}
	cursor, err := r.stationColl.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var stations []models.ChargingStation
	if err := cursor.All(ctx, &stations); err != nil {
		return nil, err
	}
	return stations, nil
}

func (r *mongoStationRepo) ListStationsByHost(ctx context.Context, hostID string) ([]models.ChargingStation, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.stationColl.Find(ctx, bson.M{"host_id": hostID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var stations []models.ChargingStation
	if err := cursor.All(ctx, &stations); err != nil {
		return nil, err
	}
	return stations, nil
}

func (r *mongoStationRepo) ListChargersByStation(ctx context.Context, stationID string) ([]models.Charger, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.chargerColl.Find(ctx, bson.M{"station_id": stationID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var chargers []models.Charger
	if err := cursor.All(ctx, &chargers); err != nil {
		return nil, err
	}
	return chargers, nil
}

func (r *mongoStationRepo) SetChargerAvailability(ctx context.Context, chargerID string, available bool) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.chargerColl.UpdateOne(ctx,
		bson.M{"id": chargerID},
		bson.M{"$set": bson.M{"available": available}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

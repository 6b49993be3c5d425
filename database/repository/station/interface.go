// File: database/repository/station/interface.go
package stationRepo

import (
	"context"
	"errors"

	"chargehub/database"
	"chargehub/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFound is returned when no station or charger matches the query.
var ErrNotFound = errors.New("station or charger not found")

type StationRepository interface {
	GetStationByID(ctx context.Context, id string) (*models.ChargingStation, error)
	GetChargerByID(ctx context.Context, id string) (*models.Charger, error)
	ListStations(ctx context.Context, search string) ([]models.ChargingStation, error)
	ListStationsByHost(ctx context.Context, hostID string) ([]models.ChargingStation, error)
	ListChargersByStation(ctx context.Context, stationID string) ([]models.Charger, error)
	SetChargerAvailability(ctx context.Context, chargerID string, available bool) error
}

type mongoStationRepo struct {
	stationColl *mongo.Collection
	chargerColl *mongo.Collection
}

// NewMongoStationRepo constructs a new MongoDB StationRepository.
func NewMongoStationRepo() StationRepository {
	db := database.MongoClient.Database("chargehub")
	return &mongoStationRepo{
		stationColl: db.Collection("stations"),
		chargerColl: db.Collection("chargers"),
	}
}

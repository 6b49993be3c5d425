package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StationStatus is the operating state of a charging station.
type StationStatus string

const (
	StationOpen        StationStatus = "OP"
	StationClosed      StationStatus = "CL"
	StationMaintenance StationStatus = "MA"
)

// ChargingStation is a host-operated site holding one or more chargers.
type ChargingStation struct {
	ID           string        `bson:"id" json:"id"`
	HostID       string        `bson:"host_id" json:"host_id"`
	Name         string        `bson:"name" json:"name"`
	LocationArea string        `bson:"location_area" json:"location_area"`
	Address      string        `bson:"address,omitempty" json:"address,omitempty"`
	Status       StationStatus `bson:"status" json:"status"`
	OpeningTime  string        `bson:"opening_time" json:"opening_time"` // "15:04"
	ClosingTime  string        `bson:"closing_time" json:"closing_time"`
	Latitude     float64       `bson:"latitude" json:"latitude"`
	Longitude    float64       `bson:"longitude" json:"longitude"`
	CreatedAt    time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time     `bson:"updated_at" json:"updated_at"`
}

// Charger is a single charging unit at a station, priced per hour.
type Charger struct {
	ID          string          `bson:"id" json:"id"`
	StationID   string          `bson:"station_id" json:"station_id"`
	Name        string          `bson:"name" json:"name"`
	PlugTypes   []string        `bson:"plug_types,omitempty" json:"plug_types,omitempty"`
	Price       decimal.Decimal `bson:"price" json:"price"` // hourly rate
	PowerRating decimal.Decimal `bson:"power_rating" json:"power_rating"` // kW, for usage estimates
	Available   bool            `bson:"available" json:"available"`
	Open247     bool            `bson:"open_24_7" json:"open_24_7"`
	IsActive    bool            `bson:"is_active" json:"is_active"`
}

// User carries the account fields the booking and payout flows need.
// Identity management lives outside this service.
type User struct {
	ID          string    `bson:"id" json:"id"`
	Email       string    `bson:"email" json:"email"`
	FullName    string    `bson:"full_name" json:"full_name"`
	Role        string    `bson:"role" json:"role"` // "user", "host", "admin"
	CustomerRef string    `bson:"customer_ref,omitempty" json:"customer_ref,omitempty"` // gateway customer id
	AccountRef  string    `bson:"account_ref,omitempty" json:"account_ref,omitempty"`   // gateway connected account id (hosts)
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}

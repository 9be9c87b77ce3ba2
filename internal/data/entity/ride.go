package entity

import (
	"time"

	"github.com/google/uuid"
)

type RideStatus string

const (
	RideStatusScheduled  RideStatus = "SCHEDULED"
	RideStatusFull       RideStatus = "FULL"
	RideStatusInProgress RideStatus = "IN_PROGRESS"
	RideStatusCompleted  RideStatus = "COMPLETED"
	RideStatusCancelled  RideStatus = "CANCELLED"
)

// IsTerminal reports whether no further transition is allowed.
func (s RideStatus) IsTerminal() bool {
	return s == RideStatusCompleted || s == RideStatusCancelled
}

type GenderPreference string

const (
	GenderPreferenceAny        GenderPreference = "ANY"
	GenderPreferenceMaleOnly   GenderPreference = "MALE_ONLY"
	GenderPreferenceFemaleOnly GenderPreference = "FEMALE_ONLY"
)

// Admits reports whether a passenger of the given gender may book.
func (p GenderPreference) Admits(g Gender) bool {
	switch p {
	case GenderPreferenceFemaleOnly:
		return g == GenderFemale
	case GenderPreferenceMaleOnly:
		return g == GenderMale
	}
	return true
}

type LuggageSize string

const (
	LuggageSmall  LuggageSize = "SMALL"
	LuggageMedium LuggageSize = "MEDIUM"
	LuggageLarge  LuggageSize = "LARGE"
)

// GeoPoint is a WGS84 coordinate.
type GeoPoint struct {
	Lat float64
	Lon float64
}

type Ride struct {
	Base
	DriverID         uuid.UUID        `db:"driver_id"`
	VehicleID        *uuid.UUID       `db:"vehicle_id"`
	OriginName       string           `db:"origin_name"`
	Origin           GeoPoint         `db:"origin_point"`
	DestinationName  string           `db:"destination_name"`
	Destination      GeoPoint         `db:"destination_point"`
	DepartureTime    time.Time        `db:"departure_time"`
	TotalSeats       int              `db:"total_seats"`
	AvailableSeats   int              `db:"available_seats"`
	PricePerSeat     float64          `db:"price_per_seat"`
	AllowsSmoking    bool             `db:"allows_smoking"`
	AllowsMusic      bool             `db:"allows_music"`
	AllowsPets       bool             `db:"allows_pets"`
	LuggageSize      LuggageSize      `db:"luggage_size"`
	GenderPreference GenderPreference `db:"gender_preference"`
	Status           RideStatus       `db:"status"`
	Version          int64            `db:"version"`
}

func (r *Ride) IsDrivenBy(userID uuid.UUID) bool {
	return r.DriverID == userID
}

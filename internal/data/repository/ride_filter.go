package repository

import (
	"slices"
	"time"

	"ride-booking/internal/data/entity"
	"ride-booking/pkg/utils"
)

type RideSortField string

const (
	SortByDeparture RideSortField = "departure"
	SortByPrice     RideSortField = "price"
)

type RideSort struct {
	Field RideSortField
	Desc  bool
}

func (s RideSort) orderBy() string {
	column := "departure_time"
	if s.Field == SortByPrice {
		column = "price_per_seat"
	}
	if s.Desc {
		return column + " DESC, id"
	}
	return column + " ASC, id"
}

// RideFilter is the search predicate. The postgres repository evaluates it
// with ST_DWithin; Matches evaluates the same predicate in memory.
type RideFilter struct {
	Origin              entity.GeoPoint
	Destination         entity.GeoPoint
	PickupRadiusMeters  float64
	DropoffRadiusMeters float64
	DepartureFrom       time.Time
	DepartureTo         time.Time
	Status              entity.RideStatus
	MinSeats            int
	Preferences         []entity.GenderPreference
}

func (f RideFilter) Matches(r *entity.Ride) bool {
	if r.Status != f.Status || r.AvailableSeats < f.MinSeats {
		return false
	}
	if r.DepartureTime.Before(f.DepartureFrom) || r.DepartureTime.After(f.DepartureTo) {
		return false
	}
	if !slices.Contains(f.Preferences, r.GenderPreference) {
		return false
	}
	return utils.WithinMeters(f.Origin.Lat, f.Origin.Lon, r.Origin.Lat, r.Origin.Lon, f.PickupRadiusMeters) &&
		utils.WithinMeters(f.Destination.Lat, f.Destination.Lon, r.Destination.Lat, r.Destination.Lon, f.DropoffRadiusMeters)
}

// PreferenceNames returns the allowed preferences as a text array argument.
func (f RideFilter) PreferenceNames() []string {
	return toStrings(f.Preferences)
}

package usecase

import (
	"time"

	"ride-booking/internal/data/entity"
	"ride-booking/internal/data/repository"
)

const (
	DefaultPickupRadiusKm = 3.0
	DropoffRadiusMeters   = 5000.0

	departureWindow = 2 * time.Hour
)

// SearchQuery is what a caller asks for when looking for a ride.
type SearchQuery struct {
	Origin        entity.GeoPoint
	Destination   entity.GeoPoint
	DepartureTime *time.Time
	Seats         int
	RadiusKm      *float64
	// GenderFilter is only honoured for anonymous callers.
	GenderFilter entity.GenderPreference
}

// MatchRides turns a search query into the repository predicate. It is pure.
func MatchRides(q SearchQuery, actor entity.Actor, now time.Time) repository.RideFilter {
	from, to := now, now.AddDate(1, 0, 0)
	if q.DepartureTime != nil {
		from = q.DepartureTime.Add(-departureWindow)
		to = q.DepartureTime.Add(departureWindow)
	}

	radiusKm := DefaultPickupRadiusKm
	if q.RadiusKm != nil && *q.RadiusKm > 0 {
		radiusKm = *q.RadiusKm
	}

	seats := q.Seats
	if seats < 1 {
		seats = 1
	}

	return repository.RideFilter{
		Origin:              q.Origin,
		Destination:         q.Destination,
		PickupRadiusMeters:  radiusKm * 1000,
		DropoffRadiusMeters: DropoffRadiusMeters,
		DepartureFrom:       from,
		DepartureTo:         to,
		Status:              entity.RideStatusScheduled,
		MinSeats:            seats,
		Preferences:         allowedPreferences(actor, q.GenderFilter),
	}
}

func allowedPreferences(actor entity.Actor, filter entity.GenderPreference) []entity.GenderPreference {
	if actor.IsAuthenticated() {
		if own, ok := actor.Gender.OnlyPreference(); ok {
			return []entity.GenderPreference{entity.GenderPreferenceAny, own}
		}
		return []entity.GenderPreference{entity.GenderPreferenceAny}
	}

	switch filter {
	case entity.GenderPreferenceMaleOnly, entity.GenderPreferenceFemaleOnly:
		return []entity.GenderPreference{entity.GenderPreferenceAny, filter}
	}

	return []entity.GenderPreference{
		entity.GenderPreferenceAny,
		entity.GenderPreferenceMaleOnly,
		entity.GenderPreferenceFemaleOnly,
	}
}

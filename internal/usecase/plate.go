package usecase

import (
	"time"

	"ride-booking/internal/data/entity"
)

const plateRevealWindow = 60 * time.Minute

// revealPlate decides how much of the plate a passenger may see. The full
// plate shows once the ride is active or close to departure; a confirmed
// passenger sees a masked plate before that.
func revealPlate(ride *entity.Ride, booking *entity.Booking, vehicle *entity.Vehicle, now time.Time) *string {
	if vehicle == nil || vehicle.LicensePlate == "" {
		return nil
	}

	active := ride.Status == entity.RideStatusInProgress || ride.Status == entity.RideStatusCompleted
	if active || ride.DepartureTime.Sub(now) <= plateRevealWindow {
		plate := vehicle.LicensePlate
		return &plate
	}

	if booking.Status == entity.BookingStatusConfirmed {
		masked := vehicle.MaskedPlate()
		return &masked
	}

	return nil
}

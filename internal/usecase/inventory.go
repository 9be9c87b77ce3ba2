package usecase

import (
	"context"
	"time"

	"ride-booking/internal/data/entity"
	"ride-booking/internal/data/repository"

	"go.uber.org/zap"
)

// InventoryGuard is the only writer of a ride's seat count. Every write is a
// version-checked update; a concurrent writer turns into ErrSeatConflict.
type InventoryGuard struct {
	log *zap.Logger
	now func() time.Time
}

func NewInventoryGuard(log *zap.Logger, now func() time.Time) *InventoryGuard {
	return &InventoryGuard{
		log: log.With(zap.String("component", "inventory")),
		now: now,
	}
}

func (g *InventoryGuard) Reserve(ctx context.Context, rides repository.RideRepository, ride *entity.Ride, seats int) error {
	if seats < 1 || ride.AvailableSeats < seats {
		return ErrNotEnoughSeats
	}

	ride.AvailableSeats -= seats
	if ride.AvailableSeats == 0 && ride.Status == entity.RideStatusScheduled {
		ride.Status = entity.RideStatusFull
	}

	return g.persist(ctx, rides, ride, "reserve", seats)
}

func (g *InventoryGuard) Release(ctx context.Context, rides repository.RideRepository, ride *entity.Ride, seats int) error {
	ride.AvailableSeats = min(ride.AvailableSeats+seats, ride.TotalSeats)
	if ride.Status == entity.RideStatusFull {
		ride.Status = entity.RideStatusScheduled
	}

	return g.persist(ctx, rides, ride, "release", seats)
}

func (g *InventoryGuard) persist(ctx context.Context, rides repository.RideRepository, ride *entity.Ride, op string, seats int) error {
	ride.UpdatedAt = g.now()
	if err := saveRide(ctx, rides, ride); err != nil {
		g.log.Warn("Seat update rejected",
			zap.Error(err),
			zap.String("op", op),
			zap.String("ride_id", ride.ID.String()),
			zap.Int("seats", seats),
			zap.Int64("version", ride.Version),
		)
		return err
	}

	g.log.Debug("Seats updated",
		zap.String("op", op),
		zap.String("ride_id", ride.ID.String()),
		zap.Int("seats", seats),
		zap.Int("available", ride.AvailableSeats),
		zap.String("status", string(ride.Status)),
	)
	return nil
}

// saveRide writes the ride with its version check.
func saveRide(ctx context.Context, rides repository.RideRepository, ride *entity.Ride) error {
	if err := rides.Update(ctx, ride); err != nil {
		return conflictAs(err, ErrSeatConflict)
	}
	return nil
}

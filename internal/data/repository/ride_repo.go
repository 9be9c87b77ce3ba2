package repository

import (
	"context"
	"errors"
	"fmt"

	"ride-booking/internal/data/entity"
	"ride-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type RideRepository interface {
	Create(ctx context.Context, ride *entity.Ride) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Ride, error)
	FindByDriverID(ctx context.Context, driverID uuid.UUID, limit, offset int) ([]*entity.Ride, error)
	CountByDriverID(ctx context.Context, driverID uuid.UUID) (int64, error)

	// Update persists every mutable column only if the stored version still
	// equals ride.Version, then increments ride.Version. A stale version
	// yields ErrVersionConflict.
	Update(ctx context.Context, ride *entity.Ride) error

	Search(ctx context.Context, filter RideFilter, sort RideSort, limit, offset int) ([]*entity.Ride, error)
	CountSearch(ctx context.Context, filter RideFilter) (int64, error)
}

type rideRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewRideRepository(db database.Querier, log *zap.Logger) RideRepository {
	return &rideRepository{
		db:  db,
		log: log.With(zap.String("repository", "ride")),
	}
}

const rideColumns = `
	id, driver_id, vehicle_id,
	origin_name, ST_Y(origin_point::geometry), ST_X(origin_point::geometry),
	destination_name, ST_Y(destination_point::geometry), ST_X(destination_point::geometry),
	departure_time, total_seats, available_seats, price_per_seat,
	allows_smoking, allows_music, allows_pets, luggage_size,
	gender_preference, status, version, created_at, updated_at`

// rideSearchWhere binds $1..$11 in the order produced by searchArgs.
const rideSearchWhere = `
	WHERE ST_DWithin(origin_point, ST_SetSRID(ST_MakePoint($2, $1), 4326)::geography, $3)
	  AND ST_DWithin(destination_point, ST_SetSRID(ST_MakePoint($5, $4), 4326)::geography, $6)
	  AND departure_time BETWEEN $7 AND $8
	  AND status = $9
	  AND available_seats >= $10
	  AND gender_preference = ANY($11)`

func scanRide(row pgx.Row) (*entity.Ride, error) {
	var ride entity.Ride
	err := row.Scan(
		&ride.ID,
		&ride.DriverID,
		&ride.VehicleID,
		&ride.OriginName,
		&ride.Origin.Lat,
		&ride.Origin.Lon,
		&ride.DestinationName,
		&ride.Destination.Lat,
		&ride.Destination.Lon,
		&ride.DepartureTime,
		&ride.TotalSeats,
		&ride.AvailableSeats,
		&ride.PricePerSeat,
		&ride.AllowsSmoking,
		&ride.AllowsMusic,
		&ride.AllowsPets,
		&ride.LuggageSize,
		&ride.GenderPreference,
		&ride.Status,
		&ride.Version,
		&ride.CreatedAt,
		&ride.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ride, nil
}

func (r *rideRepository) scanRides(rows pgx.Rows) ([]*entity.Ride, error) {
	defer rows.Close()

	var rides []*entity.Ride
	for rows.Next() {
		ride, err := scanRide(rows)
		if err != nil {
			r.log.Error("Failed to scan ride row", zap.Error(err))
			return nil, fmt.Errorf("scan ride row: %w", err)
		}
		rides = append(rides, ride)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ride rows: %w", err)
	}

	return rides, nil
}

func (r *rideRepository) Create(ctx context.Context, ride *entity.Ride) error {
	query := `
		INSERT INTO rides (
			id, driver_id, vehicle_id,
			origin_name, origin_point, destination_name, destination_point,
			departure_time, total_seats, available_seats, price_per_seat,
			allows_smoking, allows_music, allows_pets, luggage_size,
			gender_preference, status, version, created_at, updated_at
		) VALUES (
			$1, $2, $3,
			$4, ST_SetSRID(ST_MakePoint($6, $5), 4326)::geography,
			$7, ST_SetSRID(ST_MakePoint($9, $8), 4326)::geography,
			$10, $11, $12, $13,
			$14, $15, $16, $17,
			$18, $19, $20, $21, $22
		)
	`

	_, err := r.db.Exec(ctx, query,
		ride.ID,
		ride.DriverID,
		ride.VehicleID,
		ride.OriginName,
		ride.Origin.Lat,
		ride.Origin.Lon,
		ride.DestinationName,
		ride.Destination.Lat,
		ride.Destination.Lon,
		ride.DepartureTime,
		ride.TotalSeats,
		ride.AvailableSeats,
		ride.PricePerSeat,
		ride.AllowsSmoking,
		ride.AllowsMusic,
		ride.AllowsPets,
		ride.LuggageSize,
		ride.GenderPreference,
		ride.Status,
		ride.Version,
		ride.CreatedAt,
		ride.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create ride",
			zap.Error(err),
			zap.String("ride_id", ride.ID.String()),
			zap.String("driver_id", ride.DriverID.String()),
		)
		return fmt.Errorf("create ride %s: %w", ride.ID.String(), err)
	}

	return nil
}

func (r *rideRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE id = $1`

	ride, err := scanRide(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find ride by ID",
			zap.Error(err),
			zap.String("ride_id", id.String()),
		)
		return nil, fmt.Errorf("find ride by ID %s: %w", id.String(), err)
	}

	return ride, nil
}

func (r *rideRepository) FindByDriverID(ctx context.Context, driverID uuid.UUID, limit, offset int) ([]*entity.Ride, error) {
	query := `SELECT ` + rideColumns + `
		FROM rides
		WHERE driver_id = $1
		ORDER BY departure_time DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, driverID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find rides by driver ID",
			zap.Error(err),
			zap.String("driver_id", driverID.String()),
		)
		return nil, fmt.Errorf("find rides by driver ID %s: %w", driverID.String(), err)
	}

	return r.scanRides(rows)
}

func (r *rideRepository) CountByDriverID(ctx context.Context, driverID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM rides WHERE driver_id = $1`

	var count int64
	if err := r.db.QueryRow(ctx, query, driverID).Scan(&count); err != nil {
		r.log.Error("Failed to count rides by driver ID",
			zap.Error(err),
			zap.String("driver_id", driverID.String()),
		)
		return 0, fmt.Errorf("count rides by driver ID %s: %w", driverID.String(), err)
	}

	return count, nil
}

func (r *rideRepository) Update(ctx context.Context, ride *entity.Ride) error {
	query := `
		UPDATE rides
		SET vehicle_id = $3,
		    origin_name = $4,
		    origin_point = ST_SetSRID(ST_MakePoint($6, $5), 4326)::geography,
		    destination_name = $7,
		    destination_point = ST_SetSRID(ST_MakePoint($9, $8), 4326)::geography,
		    departure_time = $10,
		    total_seats = $11,
		    available_seats = $12,
		    price_per_seat = $13,
		    allows_smoking = $14,
		    allows_music = $15,
		    allows_pets = $16,
		    luggage_size = $17,
		    gender_preference = $18,
		    status = $19,
		    updated_at = $20,
		    version = version + 1
		WHERE id = $1 AND version = $2
	`

	result, err := r.db.Exec(ctx, query,
		ride.ID,
		ride.Version,
		ride.VehicleID,
		ride.OriginName,
		ride.Origin.Lat,
		ride.Origin.Lon,
		ride.DestinationName,
		ride.Destination.Lat,
		ride.Destination.Lon,
		ride.DepartureTime,
		ride.TotalSeats,
		ride.AvailableSeats,
		ride.PricePerSeat,
		ride.AllowsSmoking,
		ride.AllowsMusic,
		ride.AllowsPets,
		ride.LuggageSize,
		ride.GenderPreference,
		ride.Status,
		ride.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to update ride",
			zap.Error(err),
			zap.String("ride_id", ride.ID.String()),
			zap.Int64("version", ride.Version),
		)
		return fmt.Errorf("update ride %s: %w", ride.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		r.log.Warn("Stale ride version",
			zap.String("ride_id", ride.ID.String()),
			zap.Int64("version", ride.Version),
		)
		return fmt.Errorf("update ride %s at version %d: %w", ride.ID.String(), ride.Version, ErrVersionConflict)
	}

	ride.Version++
	return nil
}

func searchArgs(f RideFilter) []any {
	return []any{
		f.Origin.Lat,
		f.Origin.Lon,
		f.PickupRadiusMeters,
		f.Destination.Lat,
		f.Destination.Lon,
		f.DropoffRadiusMeters,
		f.DepartureFrom,
		f.DepartureTo,
		f.Status,
		f.MinSeats,
		f.PreferenceNames(),
	}
}

func (r *rideRepository) Search(ctx context.Context, filter RideFilter, sort RideSort, limit, offset int) ([]*entity.Ride, error) {
	args := searchArgs(filter)
	query := fmt.Sprintf(`SELECT %s FROM rides %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		rideColumns, rideSearchWhere, sort.orderBy(), len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to search rides",
			zap.Error(err),
			zap.Int("min_seats", filter.MinSeats),
			zap.Time("from", filter.DepartureFrom),
			zap.Time("to", filter.DepartureTo),
		)
		return nil, fmt.Errorf("search rides: %w", err)
	}

	return r.scanRides(rows)
}

func (r *rideRepository) CountSearch(ctx context.Context, filter RideFilter) (int64, error) {
	query := `SELECT COUNT(*) FROM rides ` + rideSearchWhere

	var count int64
	if err := r.db.QueryRow(ctx, query, searchArgs(filter)...).Scan(&count); err != nil {
		r.log.Error("Failed to count ride search", zap.Error(err))
		return 0, fmt.Errorf("count ride search: %w", err)
	}

	return count, nil
}

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

type BookingRepository interface {
	// Save inserts the booking or overwrites the row with the same id.
	Save(ctx context.Context, booking *entity.Booking) error
	// UpdateStatus writes booking.Status only while the stored status is
	// still from. A concurrent transition yields ErrVersionConflict.
	UpdateStatus(ctx context.Context, booking *entity.Booking, from entity.BookingStatus) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindByRideAndPassenger(ctx context.Context, rideID, passengerID uuid.UUID) (*entity.Booking, error)
	FindByRideID(ctx context.Context, rideID uuid.UUID, statuses ...entity.BookingStatus) ([]*entity.Booking, error)
	CountByRideID(ctx context.Context, rideID uuid.UUID, status entity.BookingStatus) (int64, error)
	FindByPassengerID(ctx context.Context, passengerID uuid.UUID, limit, offset int) ([]*entity.Booking, error)
	CountByPassengerID(ctx context.Context, passengerID uuid.UUID) (int64, error)
	FindBookedRideIDs(ctx context.Context, passengerID uuid.UUID) ([]uuid.UUID, error)

	// CancelByRideID cancels every booking of the ride that is not already
	// cancelled and returns the rows it changed.
	CancelByRideID(ctx context.Context, rideID uuid.UUID) ([]*entity.Booking, error)
}

type bookingRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewBookingRepository(db database.Querier, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

const bookingColumns = `id, ride_id, passenger_id, seats_booked, price_total, status, created_at, updated_at`

func scanBooking(row pgx.Row) (*entity.Booking, error) {
	var booking entity.Booking
	err := row.Scan(
		&booking.ID,
		&booking.RideID,
		&booking.PassengerID,
		&booking.SeatsBooked,
		&booking.PriceTotal,
		&booking.Status,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) scanBookings(rows pgx.Rows) ([]*entity.Booking, error) {
	defer rows.Close()

	var bookings []*entity.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			r.log.Error("Failed to scan booking row", zap.Error(err))
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate booking rows: %w", err)
	}

	return bookings, nil
}

func (r *bookingRepository) Save(ctx context.Context, booking *entity.Booking) error {
	query := `
		INSERT INTO bookings (` + bookingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE
		SET seats_booked = EXCLUDED.seats_booked,
		    price_total = EXCLUDED.price_total,
		    status = EXCLUDED.status,
		    updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.Exec(ctx, query,
		booking.ID,
		booking.RideID,
		booking.PassengerID,
		booking.SeatsBooked,
		booking.PriceTotal,
		booking.Status,
		booking.CreatedAt,
		booking.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to save booking",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
			zap.String("ride_id", booking.RideID.String()),
			zap.String("passenger_id", booking.PassengerID.String()),
		)
		return fmt.Errorf("save booking %s: %w", booking.ID.String(), err)
	}

	return nil
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, booking *entity.Booking, from entity.BookingStatus) error {
	query := `UPDATE bookings SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2`

	result, err := r.db.Exec(ctx, query, booking.ID, from, booking.Status, booking.UpdatedAt)
	if err != nil {
		r.log.Error("Failed to update booking status",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
			zap.String("from", string(from)),
			zap.String("to", string(booking.Status)),
		)
		return fmt.Errorf("update booking %s status to %s: %w", booking.ID.String(), booking.Status, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking %s left %s concurrently: %w", booking.ID.String(), from, ErrVersionConflict)
	}

	return nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by ID",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return nil, fmt.Errorf("find booking by ID %s: %w", id.String(), err)
	}

	return booking, nil
}

func (r *bookingRepository) FindByRideAndPassenger(ctx context.Context, rideID, passengerID uuid.UUID) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE ride_id = $1 AND passenger_id = $2`

	booking, err := scanBooking(r.db.QueryRow(ctx, query, rideID, passengerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by ride and passenger",
			zap.Error(err),
			zap.String("ride_id", rideID.String()),
			zap.String("passenger_id", passengerID.String()),
		)
		return nil, fmt.Errorf("find booking for ride %s: %w", rideID.String(), err)
	}

	return booking, nil
}

// FindByRideID returns every booking of the ride when no status is given.
func (r *bookingRepository) FindByRideID(ctx context.Context, rideID uuid.UUID, statuses ...entity.BookingStatus) ([]*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE ride_id = $1`
	args := []any{rideID}
	if len(statuses) > 0 {
		query += ` AND status = ANY($2)`
		args = append(args, toStrings(statuses))
	}
	query += ` ORDER BY created_at`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to find bookings by ride ID",
			zap.Error(err),
			zap.String("ride_id", rideID.String()),
		)
		return nil, fmt.Errorf("find bookings by ride ID %s: %w", rideID.String(), err)
	}

	return r.scanBookings(rows)
}

func (r *bookingRepository) CountByRideID(ctx context.Context, rideID uuid.UUID, status entity.BookingStatus) (int64, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE ride_id = $1 AND status = $2`

	var count int64
	if err := r.db.QueryRow(ctx, query, rideID, status).Scan(&count); err != nil {
		r.log.Error("Failed to count bookings by ride ID",
			zap.Error(err),
			zap.String("ride_id", rideID.String()),
			zap.String("status", string(status)),
		)
		return 0, fmt.Errorf("count bookings by ride ID %s: %w", rideID.String(), err)
	}

	return count, nil
}

func (r *bookingRepository) FindByPassengerID(ctx context.Context, passengerID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE passenger_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, passengerID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find bookings by passenger ID",
			zap.Error(err),
			zap.String("passenger_id", passengerID.String()),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("find bookings by passenger ID %s: %w", passengerID.String(), err)
	}

	return r.scanBookings(rows)
}

func (r *bookingRepository) CountByPassengerID(ctx context.Context, passengerID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE passenger_id = $1`

	var count int64
	if err := r.db.QueryRow(ctx, query, passengerID).Scan(&count); err != nil {
		r.log.Error("Failed to count bookings by passenger ID",
			zap.Error(err),
			zap.String("passenger_id", passengerID.String()),
		)
		return 0, fmt.Errorf("count bookings by passenger ID %s: %w", passengerID.String(), err)
	}

	return count, nil
}

func (r *bookingRepository) FindBookedRideIDs(ctx context.Context, passengerID uuid.UUID) ([]uuid.UUID, error) {
	query := `SELECT ride_id FROM bookings WHERE passenger_id = $1 AND status <> $2`

	rows, err := r.db.Query(ctx, query, passengerID, entity.BookingStatusCancelled)
	if err != nil {
		r.log.Error("Failed to find booked ride IDs",
			zap.Error(err),
			zap.String("passenger_id", passengerID.String()),
		)
		return nil, fmt.Errorf("find booked ride IDs for %s: %w", passengerID.String(), err)
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan ride ID: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func (r *bookingRepository) CancelByRideID(ctx context.Context, rideID uuid.UUID) ([]*entity.Booking, error) {
	query := `
		UPDATE bookings
		SET status = $2, updated_at = NOW()
		WHERE ride_id = $1 AND status <> $2
		RETURNING ` + bookingColumns

	rows, err := r.db.Query(ctx, query, rideID, entity.BookingStatusCancelled)
	if err != nil {
		r.log.Error("Failed to cancel bookings by ride ID",
			zap.Error(err),
			zap.String("ride_id", rideID.String()),
		)
		return nil, fmt.Errorf("cancel bookings of ride %s: %w", rideID.String(), err)
	}

	return r.scanBookings(rows)
}

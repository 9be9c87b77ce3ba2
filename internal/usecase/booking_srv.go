package usecase

import (
	"context"
	"fmt"
	"time"

	"ride-booking/internal/data/entity"
	"ride-booking/internal/data/repository"
	"ride-booking/internal/dto/request"
	"ride-booking/internal/dto/response"
	"ride-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingService interface {
	// Passenger side
	CreateBooking(ctx context.Context, actor entity.Actor, req *request.CreateBookingRequest) (*response.BookingResponse, error)
	CancelBooking(ctx context.Context, actor entity.Actor, bookingID string) (*response.BookingResponse, error)
	CancelBookingByRide(ctx context.Context, actor entity.Actor, rideID string) (*response.BookingResponse, error)
	GetMyBookings(ctx context.Context, actor entity.Actor, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error)
	GetMyBookingForRide(ctx context.Context, actor entity.Actor, rideID string) (*response.BookingResponse, error)
	GetMyBookedRideIDs(ctx context.Context, actor entity.Actor) (*response.BookedRideIDsResponse, error)

	// Driver side
	AcceptBooking(ctx context.Context, actor entity.Actor, bookingID string) (*response.BookingResponse, error)
	RejectBooking(ctx context.Context, actor entity.Actor, bookingID string) (*response.BookingResponse, error)
}

type bookingService struct {
	repo     *repository.Repository
	guard    *InventoryGuard
	notifier Notifier
	now      func() time.Time
	log      *zap.Logger
}

func NewBookingService(repo *repository.Repository, notifier Notifier, log *zap.Logger, now func() time.Time) BookingService {
	return &bookingService{
		repo:     repo,
		guard:    NewInventoryGuard(log, now),
		notifier: notifier,
		now:      now,
		log:      log.With(zap.String("service", "booking")),
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, actor entity.Actor, req *request.CreateBookingRequest) (*response.BookingResponse, error) {
	if !actor.IsAuthenticated() {
		return nil, ErrAuthenticationRequired
	}

	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create booking validation failed", zap.Any("errors", errs))
		return nil, ValidationError(errs)
	}

	rideID, err := uuid.Parse(req.RideID)
	if err != nil {
		return nil, invalidID("ride_id", req.RideID)
	}

	now := s.now()
	var (
		out     outbox
		booking *entity.Booking
		ride    *entity.Ride
	)

	err = s.repo.Tx.WithTx(ctx, func(tx *repository.Repository) error {
		out.reset()

		r, err := findRide(ctx, tx.Ride, rideID)
		if err != nil {
			return err
		}

		if err := checkBookable(r, actor, req.Seats, now); err != nil {
			return err
		}

		existing, err := tx.Booking.FindByRideAndPassenger(ctx, r.ID, actor.UserID)
		if err != nil {
			return fmt.Errorf("load existing booking: %w", err)
		}
		if existing != nil && existing.Status != entity.BookingStatusCancelled {
			return ErrPassengerAlreadyBooked
		}

		if err := s.guard.Reserve(ctx, tx.Ride, r, req.Seats); err != nil {
			return err
		}

		// A previously cancelled booking is revived so the pair keeps one row.
		b := existing
		if b == nil {
			b = &entity.Booking{
				Base: entity.Base{
					ID:        uuid.New(),
					CreatedAt: now,
				},
				RideID:      r.ID,
				PassengerID: actor.UserID,
			}
		}
		b.SeatsBooked = req.Seats
		b.PriceTotal = float64(req.Seats) * r.PricePerSeat
		b.Status = entity.BookingStatusPending
		b.UpdatedAt = now

		if err := tx.Booking.Save(ctx, b); err != nil {
			return fmt.Errorf("save booking: %w", err)
		}

		out.add(r.DriverID, entity.NotificationNewBooking,
			"Booking request",
			fmt.Sprintf("New booking request from %s", s.displayName(ctx, tx.User, actor.UserID)),
			rideLink(r.ID, ""),
		)

		booking, ride = b, r
		return nil
	})
	if err != nil {
		s.logFailure("create booking", err, zap.String("ride_id", req.RideID), zap.String("passenger_id", actor.UserID.String()))
		return nil, err
	}

	out.flush(ctx, s.notifier)

	s.log.Info("Booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("ride_id", ride.ID.String()),
		zap.String("passenger_id", actor.UserID.String()),
		zap.Int("seats", booking.SeatsBooked),
		zap.Int("available_seats", ride.AvailableSeats),
		zap.String("ride_status", string(ride.Status)),
	)

	resp := s.buildBookingResponse(ctx, booking, ride)
	return &resp, nil
}

// checkBookable applies the booking rules in the order callers observe them.
func checkBookable(ride *entity.Ride, actor entity.Actor, seats int, now time.Time) error {
	switch {
	case ride.IsDrivenBy(actor.UserID):
		return ErrDriverCannotBook
	case ride.Status != entity.RideStatusScheduled:
		return ErrRideNotBookable
	case !ride.DepartureTime.After(now):
		return ErrRideAlreadyDeparted
	case ride.AvailableSeats < seats:
		return ErrNotEnoughSeats
	case !ride.GenderPreference.Admits(actor.Gender):
		return ErrGenderNotAllowed
	}
	return nil
}

func (s *bookingService) AcceptBooking(ctx context.Context, actor entity.Actor, bookingID string) (*response.BookingResponse, error) {
	return s.decide(ctx, actor, bookingID, entity.BookingStatusConfirmed)
}

func (s *bookingService) RejectBooking(ctx context.Context, actor entity.Actor, bookingID string) (*response.BookingResponse, error) {
	return s.decide(ctx, actor, bookingID, entity.BookingStatusRejected)
}

// decide moves a pending booking to the driver's verdict.
func (s *bookingService) decide(ctx context.Context, actor entity.Actor, bookingID string, verdict entity.BookingStatus) (*response.BookingResponse, error) {
	if !actor.IsAuthenticated() {
		return nil, ErrAuthenticationRequired
	}

	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, invalidID("booking_id", bookingID)
	}

	var (
		out     outbox
		booking *entity.Booking
		ride    *entity.Ride
	)

	err = s.repo.Tx.WithTx(ctx, func(tx *repository.Repository) error {
		out.reset()

		b, err := findBooking(ctx, tx.Booking, id)
		if err != nil {
			return err
		}

		r, err := findRide(ctx, tx.Ride, b.RideID)
		if err != nil {
			return err
		}

		if !actor.Is(r.DriverID) {
			return ErrNotAuthorized
		}
		if b.Status != entity.BookingStatusPending {
			return ErrBookingNotPending
		}

		if verdict == entity.BookingStatusRejected {
			if err := s.guard.Release(ctx, tx.Ride, r, b.SeatsBooked); err != nil {
				return err
			}
		}

		b.Status = verdict
		b.UpdatedAt = s.now()
		if err := tx.Booking.UpdateStatus(ctx, b, entity.BookingStatusPending); err != nil {
			return conflictAs(err, ErrBookingConflict)
		}

		route := routeLabel(r)
		if verdict == entity.BookingStatusConfirmed {
			out.add(b.PassengerID, entity.NotificationBookingAccepted,
				"Booking accepted",
				fmt.Sprintf("Your booking for %s has been accepted", route),
				rideLink(r.ID, ""),
			)
		} else {
			out.add(b.PassengerID, entity.NotificationBookingRejected,
				"Booking declined",
				fmt.Sprintf("Your request for %s was declined", route),
				nil,
			)
		}

		booking, ride = b, r
		return nil
	})
	if err != nil {
		s.logFailure("decide booking", err, zap.String("booking_id", bookingID), zap.String("verdict", string(verdict)))
		return nil, err
	}

	out.flush(ctx, s.notifier)

	s.log.Info("Booking decided",
		zap.String("booking_id", booking.ID.String()),
		zap.String("ride_id", ride.ID.String()),
		zap.String("status", string(booking.Status)),
		zap.Int("available_seats", ride.AvailableSeats),
	)

	resp := s.buildBookingResponse(ctx, booking, ride)
	return &resp, nil
}

func (s *bookingService) CancelBooking(ctx context.Context, actor entity.Actor, bookingID string) (*response.BookingResponse, error) {
	if !actor.IsAuthenticated() {
		return nil, ErrAuthenticationRequired
	}

	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, invalidID("booking_id", bookingID)
	}

	return s.cancel(ctx, actor, func(tx *repository.Repository) (*entity.Booking, error) {
		return findBooking(ctx, tx.Booking, id)
	})
}

func (s *bookingService) CancelBookingByRide(ctx context.Context, actor entity.Actor, rideID string) (*response.BookingResponse, error) {
	if !actor.IsAuthenticated() {
		return nil, ErrAuthenticationRequired
	}

	id, err := uuid.Parse(rideID)
	if err != nil {
		return nil, invalidID("ride_id", rideID)
	}

	return s.cancel(ctx, actor, func(tx *repository.Repository) (*entity.Booking, error) {
		b, err := tx.Booking.FindByRideAndPassenger(ctx, id, actor.UserID)
		if err != nil {
			return nil, fmt.Errorf("load booking for ride: %w", err)
		}
		if b == nil {
			return nil, ErrBookingNotFound
		}
		return b, nil
	})
}

func (s *bookingService) cancel(ctx context.Context, actor entity.Actor, lookup func(tx *repository.Repository) (*entity.Booking, error)) (*response.BookingResponse, error) {
	var (
		out     outbox
		booking *entity.Booking
		ride    *entity.Ride
	)

	err := s.repo.Tx.WithTx(ctx, func(tx *repository.Repository) error {
		out.reset()

		b, err := lookup(tx)
		if err != nil {
			return err
		}

		if !actor.Is(b.PassengerID) {
			return ErrNotAuthorizedToCancel
		}
		if b.Status == entity.BookingStatusCancelled {
			return ErrAlreadyCancelled
		}
		if !b.Status.HoldsSeats() {
			return ErrBookingNotCancellable
		}

		r, err := findRide(ctx, tx.Ride, b.RideID)
		if err != nil {
			return err
		}
		if r.Status == entity.RideStatusInProgress || r.Status == entity.RideStatusCompleted {
			return ErrCannotCancelActive
		}

		if err := s.guard.Release(ctx, tx.Ride, r, b.SeatsBooked); err != nil {
			return err
		}

		from := b.Status
		b.Status = entity.BookingStatusCancelled
		b.UpdatedAt = s.now()
		if err := tx.Booking.UpdateStatus(ctx, b, from); err != nil {
			return conflictAs(err, ErrBookingConflict)
		}

		out.add(r.DriverID, entity.NotificationPassengerCancelled,
			"Booking cancelled",
			fmt.Sprintf("%s cancelled their booking for %s", s.displayName(ctx, tx.User, b.PassengerID), routeLabel(r)),
			rideLink(r.ID, ""),
		)

		booking, ride = b, r
		return nil
	})
	if err != nil {
		s.logFailure("cancel booking", err, zap.String("passenger_id", actor.UserID.String()))
		return nil, err
	}

	out.flush(ctx, s.notifier)

	s.log.Info("Booking cancelled",
		zap.String("booking_id", booking.ID.String()),
		zap.String("ride_id", ride.ID.String()),
		zap.Int("seats_released", booking.SeatsBooked),
		zap.Int("available_seats", ride.AvailableSeats),
	)

	resp := s.buildBookingResponse(ctx, booking, ride)
	return &resp, nil
}

func (s *bookingService) GetMyBookings(ctx context.Context, actor entity.Actor, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	if !actor.IsAuthenticated() {
		return nil, ErrAuthenticationRequired
	}

	limit := req.Limit()
	offset := req.Offset()

	bookings, err := s.repo.Booking.FindByPassengerID(ctx, actor.UserID, limit, offset)
	if err != nil {
		s.log.Error("Failed to get passenger bookings",
			zap.Error(err),
			zap.String("passenger_id", actor.UserID.String()),
			zap.Int("page", req.Page),
			zap.Int("per_page", req.PerPage),
		)
		return nil, fmt.Errorf("get passenger bookings: %w", err)
	}

	total, err := s.repo.Booking.CountByPassengerID(ctx, actor.UserID)
	if err != nil {
		s.log.Error("Failed to count passenger bookings", zap.Error(err))
		return nil, fmt.Errorf("count passenger bookings: %w", err)
	}

	rides := make(map[uuid.UUID]*entity.Ride)
	bookingResponses := make([]response.BookingResponse, len(bookings))
	for i, booking := range bookings {
		ride, ok := rides[booking.RideID]
		if !ok {
			ride, err = s.repo.Ride.FindByID(ctx, booking.RideID)
			if err != nil {
				s.log.Error("Failed to load ride for booking", zap.Error(err), zap.String("booking_id", booking.ID.String()))
				return nil, fmt.Errorf("load ride %s: %w", booking.RideID.String(), err)
			}
			rides[booking.RideID] = ride
		}
		bookingResponses[i] = s.buildBookingResponse(ctx, booking, ride)
	}

	return response.NewPaginatedResponse(bookingResponses, req.Page, limit, total), nil
}

func (s *bookingService) GetMyBookingForRide(ctx context.Context, actor entity.Actor, rideID string) (*response.BookingResponse, error) {
	if !actor.IsAuthenticated() {
		return nil, ErrAuthenticationRequired
	}

	id, err := uuid.Parse(rideID)
	if err != nil {
		return nil, invalidID("ride_id", rideID)
	}

	booking, err := s.repo.Booking.FindByRideAndPassenger(ctx, id, actor.UserID)
	if err != nil {
		s.log.Error("Failed to get booking for ride", zap.Error(err), zap.String("ride_id", rideID))
		return nil, fmt.Errorf("get booking for ride: %w", err)
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}

	ride, err := s.repo.Ride.FindByID(ctx, booking.RideID)
	if err != nil {
		return nil, fmt.Errorf("load ride %s: %w", rideID, err)
	}

	resp := s.buildBookingResponse(ctx, booking, ride)
	return &resp, nil
}

func (s *bookingService) GetMyBookedRideIDs(ctx context.Context, actor entity.Actor) (*response.BookedRideIDsResponse, error) {
	if !actor.IsAuthenticated() {
		return nil, ErrAuthenticationRequired
	}

	ids, err := s.repo.Booking.FindBookedRideIDs(ctx, actor.UserID)
	if err != nil {
		s.log.Error("Failed to get booked ride IDs", zap.Error(err), zap.String("passenger_id", actor.UserID.String()))
		return nil, fmt.Errorf("get booked ride IDs: %w", err)
	}

	resp := &response.BookedRideIDsResponse{RideIDs: make([]string, len(ids))}
	for i, id := range ids {
		resp.RideIDs[i] = id.String()
	}
	return resp, nil
}

// buildBookingResponse decorates a booking with ride, driver and car details.
// A missing ride yields a bare response.
func (s *bookingService) buildBookingResponse(ctx context.Context, booking *entity.Booking, ride *entity.Ride) response.BookingResponse {
	resp := response.BookingResponse{
		ID:          booking.ID.String(),
		RideID:      booking.RideID.String(),
		SeatsBooked: booking.SeatsBooked,
		PriceTotal:  booking.PriceTotal,
		Status:      booking.Status,
		CreatedAt:   booking.CreatedAt,
	}
	if ride == nil {
		return resp
	}

	resp.RideSummary = routeLabel(ride)
	resp.DepartureTime = ride.DepartureTime
	resp.RideStatus = ride.Status

	driver, err := s.repo.User.FindByID(ctx, ride.DriverID)
	if err != nil {
		s.log.Warn("Failed to load driver profile", zap.Error(err), zap.String("driver_id", ride.DriverID.String()))
	}
	if driver != nil {
		resp.DriverName = driver.FullName()
	}

	if ride.VehicleID != nil {
		vehicle, err := s.repo.Vehicle.FindByID(ctx, *ride.VehicleID)
		if err != nil {
			s.log.Warn("Failed to load vehicle", zap.Error(err), zap.String("vehicle_id", ride.VehicleID.String()))
		}
		if vehicle != nil {
			description := vehicle.Description()
			resp.CarDescription = &description
			resp.CarLicensePlate = revealPlate(ride, booking, vehicle, s.now())
		}
	}

	return resp
}

func (s *bookingService) displayName(ctx context.Context, users repository.UserRepository, id uuid.UUID) string {
	user, err := users.FindByID(ctx, id)
	if err != nil {
		s.log.Warn("Failed to load user profile", zap.Error(err), zap.String("user_id", id.String()))
	}
	if user == nil {
		return "A passenger"
	}
	return user.FullName()
}

// logFailure logs rule violations at warn and everything else at error.
func (s *bookingService) logFailure(operation string, err error, fields ...zap.Field) {
	logFailure(s.log, operation, err, fields...)
}

func logFailure(log *zap.Logger, operation string, err error, fields ...zap.Field) {
	fields = append(fields, zap.Error(err), zap.String("operation", operation))
	if KindOf(err) != 0 {
		log.Warn(operation+" rejected", fields...)
		return
	}
	log.Error("Failed to "+operation, fields...)
}

func findRide(ctx context.Context, rides repository.RideRepository, id uuid.UUID) (*entity.Ride, error) {
	ride, err := rides.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load ride %s: %w", id.String(), err)
	}
	if ride == nil {
		return nil, ErrRideNotFound
	}
	return ride, nil
}

func findBooking(ctx context.Context, bookings repository.BookingRepository, id uuid.UUID) (*entity.Booking, error) {
	booking, err := bookings.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load booking %s: %w", id.String(), err)
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}
	return booking, nil
}

func routeLabel(ride *entity.Ride) string {
	return ride.OriginName + " -> " + ride.DestinationName
}

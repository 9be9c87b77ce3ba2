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

type RideService interface {
	// Public endpoints
	GetRide(ctx context.Context, rideID string) (*response.RideResponse, error)

	// Driver endpoints
	CreateRide(ctx context.Context, actor entity.Actor, req *request.RideRequest) (*response.RideResponse, error)
	GetMyRides(ctx context.Context, actor entity.Actor, req *request.PaginatedRequest) (*response.PaginatedResponse[response.RideResponse], error)
	GetRidePassengers(ctx context.Context, actor entity.Actor, rideID string) ([]response.RidePassengerResponse, error)
	UpdateRide(ctx context.Context, actor entity.Actor, rideID string, req *request.RideRequest) (*response.RideResponse, error)
	UpdateRideStatus(ctx context.Context, actor entity.Actor, rideID string, req *request.UpdateRideStatusRequest) (*response.RideStatusResponse, error)
	StartRide(ctx context.Context, actor entity.Actor, rideID string) (*response.RideStatusResponse, error)
	CompleteRide(ctx context.Context, actor entity.Actor, rideID string) (*response.RideStatusResponse, error)
	CancelRide(ctx context.Context, actor entity.Actor, rideID string) (*response.RideResponse, error)
}

type rideService struct {
	repo     *repository.Repository
	notifier Notifier
	now      func() time.Time
	log      *zap.Logger
}

func NewRideService(repo *repository.Repository, notifier Notifier, log *zap.Logger, now func() time.Time) RideService {
	return &rideService{
		repo:     repo,
		notifier: notifier,
		now:      now,
		log:      log.With(zap.String("service", "ride")),
	}
}

func (s *rideService) CreateRide(ctx context.Context, actor entity.Actor, req *request.RideRequest) (*response.RideResponse, error) {
	if !actor.IsAuthenticated() {
		return nil, ErrAuthenticationRequired
	}

	now := s.now()
	details, err := s.checkRideRequest(ctx, actor, req, now)
	if err != nil {
		s.logRejected("create ride", err, zap.String("driver_id", actor.UserID.String()))
		return nil, err
	}

	ride := &entity.Ride{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		DriverID: actor.UserID,
		Status:   entity.RideStatusScheduled,
	}
	details.applyTo(ride, req)

	if err := s.repo.Ride.Create(ctx, ride); err != nil {
		s.log.Error("Failed to create ride",
			zap.Error(err),
			zap.String("driver_id", actor.UserID.String()),
		)
		return nil, fmt.Errorf("create ride: %w", err)
	}

	s.log.Info("Ride created",
		zap.String("ride_id", ride.ID.String()),
		zap.String("driver_id", actor.UserID.String()),
		zap.Time("departure_time", ride.DepartureTime),
		zap.Int("total_seats", ride.TotalSeats),
	)

	resp := s.buildRideResponse(ctx, ride)
	return &resp, nil
}

// rideDetails holds the parts of a ride request that need a lookup or a default.
type rideDetails struct {
	preference entity.GenderPreference
	luggage    entity.LuggageSize
	vehicleID  *uuid.UUID
}

func (d rideDetails) applyTo(ride *entity.Ride, req *request.RideRequest) {
	ride.VehicleID = d.vehicleID
	ride.OriginName = req.OriginName
	ride.Origin = entity.GeoPoint{Lat: req.OriginLat, Lon: req.OriginLon}
	ride.DestinationName = req.DestinationName
	ride.Destination = entity.GeoPoint{Lat: req.DestinationLat, Lon: req.DestinationLon}
	ride.DepartureTime = req.DepartureTime
	ride.TotalSeats = req.TotalSeats
	// Only sound while no booking holds seats; callers guarantee that.
	ride.AvailableSeats = req.TotalSeats
	ride.PricePerSeat = req.PricePerSeat
	ride.AllowsSmoking = req.AllowsSmoking
	ride.AllowsMusic = req.AllowsMusic
	ride.AllowsPets = req.AllowsPets
	ride.LuggageSize = d.luggage
	ride.GenderPreference = d.preference
}

func (s *rideService) checkRideRequest(ctx context.Context, actor entity.Actor, req *request.RideRequest, now time.Time) (rideDetails, error) {
	var details rideDetails

	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return details, ValidationError(errs)
	}

	if !req.DepartureTime.After(now) {
		return details, ErrDepartureInPast
	}

	details.preference = entity.GenderPreferenceAny
	if req.GenderPreference != "" {
		details.preference = entity.GenderPreference(req.GenderPreference)
	}
	if details.preference != entity.GenderPreferenceAny {
		own, ok := actor.Gender.OnlyPreference()
		if !ok || own != details.preference {
			return details, ErrGenderPrefForbidden
		}
	}

	details.luggage = entity.LuggageMedium
	if req.LuggageSize != "" {
		details.luggage = entity.LuggageSize(req.LuggageSize)
	}

	if req.VehicleID != nil {
		vehicleID, err := uuid.Parse(*req.VehicleID)
		if err != nil {
			return details, invalidID("vehicle_id", *req.VehicleID)
		}
		vehicle, err := s.repo.Vehicle.FindByID(ctx, vehicleID)
		if err != nil {
			return details, fmt.Errorf("load vehicle %s: %w", vehicleID.String(), err)
		}
		if vehicle == nil || vehicle.OwnerID != actor.UserID {
			return details, ErrVehicleNotOwned
		}
		details.vehicleID = &vehicleID
	}

	return details, nil
}

func (s *rideService) GetRide(ctx context.Context, rideID string) (*response.RideResponse, error) {
	id, err := uuid.Parse(rideID)
	if err != nil {
		return nil, invalidID("ride_id", rideID)
	}

	ride, err := findRide(ctx, s.repo.Ride, id)
	if err != nil {
		return nil, err
	}

	resp := s.buildRideResponse(ctx, ride)
	return &resp, nil
}

func (s *rideService) GetMyRides(ctx context.Context, actor entity.Actor, req *request.PaginatedRequest) (*response.PaginatedResponse[response.RideResponse], error) {
	if !actor.IsAuthenticated() {
		return nil, ErrAuthenticationRequired
	}

	limit := req.Limit()
	offset := req.Offset()

	rides, err := s.repo.Ride.FindByDriverID(ctx, actor.UserID, limit, offset)
	if err != nil {
		s.log.Error("Failed to get driver rides",
			zap.Error(err),
			zap.String("driver_id", actor.UserID.String()),
			zap.Int("page", req.Page),
			zap.Int("per_page", req.PerPage),
		)
		return nil, fmt.Errorf("get driver rides: %w", err)
	}

	total, err := s.repo.Ride.CountByDriverID(ctx, actor.UserID)
	if err != nil {
		s.log.Error("Failed to count driver rides", zap.Error(err))
		return nil, fmt.Errorf("count driver rides: %w", err)
	}

	driver, err := s.repo.User.FindByID(ctx, actor.UserID)
	if err != nil {
		s.log.Warn("Failed to load driver profile", zap.Error(err))
	}

	rideResponses := make([]response.RideResponse, len(rides))
	for i, ride := range rides {
		rideResponses[i] = response.RideToResponse(ride, driver)
	}

	return response.NewPaginatedResponse(rideResponses, req.Page, limit, total), nil
}

func (s *rideService) GetRidePassengers(ctx context.Context, actor entity.Actor, rideID string) ([]response.RidePassengerResponse, error) {
	if !actor.IsAuthenticated() {
		return nil, ErrAuthenticationRequired
	}

	id, err := uuid.Parse(rideID)
	if err != nil {
		return nil, invalidID("ride_id", rideID)
	}

	ride, err := findRide(ctx, s.repo.Ride, id)
	if err != nil {
		return nil, err
	}
	if !actor.Is(ride.DriverID) {
		return nil, ErrNotAuthorized
	}

	bookings, err := s.repo.Booking.FindByRideID(ctx, ride.ID, entity.BookingStatusPending, entity.BookingStatusConfirmed)
	if err != nil {
		s.log.Error("Failed to get ride passengers", zap.Error(err), zap.String("ride_id", rideID))
		return nil, fmt.Errorf("get ride passengers: %w", err)
	}

	passengers := make([]response.RidePassengerResponse, len(bookings))
	for i, booking := range bookings {
		passenger, err := s.repo.User.FindByID(ctx, booking.PassengerID)
		if err != nil {
			s.log.Warn("Failed to load passenger profile", zap.Error(err), zap.String("passenger_id", booking.PassengerID.String()))
		}
		passengers[i] = response.PassengerToResponse(booking, passenger)
	}

	return passengers, nil
}

func (s *rideService) UpdateRide(ctx context.Context, actor entity.Actor, rideID string, req *request.RideRequest) (*response.RideResponse, error) {
	ride, err := s.mutate(ctx, actor, rideID, "update ride", func(tx *repository.Repository, ride *entity.Ride, _ *outbox) error {
		if ride.Status != entity.RideStatusScheduled {
			return ErrRideNotEditable
		}

		confirmed, err := tx.Booking.CountByRideID(ctx, ride.ID, entity.BookingStatusConfirmed)
		if err != nil {
			return fmt.Errorf("count confirmed bookings: %w", err)
		}
		if confirmed > 0 {
			return ErrRideHasPassengers
		}

		now := s.now()
		details, err := s.checkRideRequest(ctx, actor, req, now)
		if err != nil {
			return err
		}

		details.applyTo(ride, req)
		ride.UpdatedAt = now
		return saveRide(ctx, tx.Ride, ride)
	})
	if err != nil {
		return nil, err
	}

	resp := s.buildRideResponse(ctx, ride)
	return &resp, nil
}

func (s *rideService) StartRide(ctx context.Context, actor entity.Actor, rideID string) (*response.RideStatusResponse, error) {
	ride, err := s.mutate(ctx, actor, rideID, "start ride", func(tx *repository.Repository, ride *entity.Ride, out *outbox) error {
		if ride.Status != entity.RideStatusScheduled && ride.Status != entity.RideStatusFull {
			return ErrRideNotStartable
		}

		return s.moveAndNotify(ctx, tx, ride, out, entity.RideStatusInProgress, entity.NotificationRideStarted,
			"Ride started", fmt.Sprintf("The ride %s has started", routeLabel(ride)), rideLink(ride.ID, ""))
	})
	if err != nil {
		return nil, err
	}

	return &response.RideStatusResponse{ID: ride.ID.String(), Status: ride.Status}, nil
}

func (s *rideService) CompleteRide(ctx context.Context, actor entity.Actor, rideID string) (*response.RideStatusResponse, error) {
	ride, err := s.mutate(ctx, actor, rideID, "complete ride", func(tx *repository.Repository, ride *entity.Ride, out *outbox) error {
		if ride.Status != entity.RideStatusInProgress {
			return ErrRideNotInProgress
		}

		return s.moveAndNotify(ctx, tx, ride, out, entity.RideStatusCompleted, entity.NotificationRideCompleted,
			"Ride completed", fmt.Sprintf("The ride %s is over. Don't forget to leave a review!", routeLabel(ride)), rideLink(ride.ID, "/review"))
	})
	if err != nil {
		return nil, err
	}

	return &response.RideStatusResponse{ID: ride.ID.String(), Status: ride.Status}, nil
}

// moveAndNotify sets the ride status and queues a notice for every confirmed passenger.
func (s *rideService) moveAndNotify(ctx context.Context, tx *repository.Repository, ride *entity.Ride, out *outbox,
	status entity.RideStatus, kind entity.NotificationType, title, body string, link *string) error {
	ride.Status = status
	ride.UpdatedAt = s.now()
	if err := saveRide(ctx, tx.Ride, ride); err != nil {
		return err
	}

	confirmed, err := tx.Booking.FindByRideID(ctx, ride.ID, entity.BookingStatusConfirmed)
	if err != nil {
		return fmt.Errorf("load confirmed bookings: %w", err)
	}
	for _, booking := range confirmed {
		out.add(booking.PassengerID, kind, title, body, link)
	}
	return nil
}

func (s *rideService) CancelRide(ctx context.Context, actor entity.Actor, rideID string) (*response.RideResponse, error) {
	ride, err := s.mutate(ctx, actor, rideID, "cancel ride", func(tx *repository.Repository, ride *entity.Ride, out *outbox) error {
		if ride.Status.IsTerminal() {
			return ErrRideNotCancellable
		}
		return s.cascadeCancel(ctx, tx, ride, out)
	})
	if err != nil {
		return nil, err
	}

	resp := s.buildRideResponse(ctx, ride)
	return &resp, nil
}

// cascadeCancel retires the ride with all of its bookings. Seats are left as
// they are since the ride no longer takes bookings.
func (s *rideService) cascadeCancel(ctx context.Context, tx *repository.Repository, ride *entity.Ride, out *outbox) error {
	ride.Status = entity.RideStatusCancelled
	ride.UpdatedAt = s.now()
	if err := saveRide(ctx, tx.Ride, ride); err != nil {
		return err
	}

	cancelled, err := tx.Booking.CancelByRideID(ctx, ride.ID)
	if err != nil {
		return fmt.Errorf("cancel ride bookings: %w", err)
	}

	body := fmt.Sprintf("The ride %s was cancelled by the driver", routeLabel(ride))
	for _, booking := range cancelled {
		out.add(booking.PassengerID, entity.NotificationRideCancelled, "Ride cancelled", body, nil)
	}

	s.log.Info("Ride bookings cancelled",
		zap.String("ride_id", ride.ID.String()),
		zap.Int("bookings", len(cancelled)),
	)
	return nil
}

func (s *rideService) UpdateRideStatus(ctx context.Context, actor entity.Actor, rideID string, req *request.UpdateRideStatusRequest) (*response.RideStatusResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, ValidationError(errs)
	}
	target := entity.RideStatus(req.Status)

	ride, err := s.mutate(ctx, actor, rideID, "update ride status", func(tx *repository.Repository, ride *entity.Ride, out *outbox) error {
		if ride.Status.IsTerminal() {
			return ErrRideStatusFinal
		}
		if ride.Status == entity.RideStatusScheduled && target == entity.RideStatusCompleted {
			return ErrRideNotStarted
		}

		switch target {
		case entity.RideStatusScheduled, entity.RideStatusFull:
			if target != ride.Status {
				return ErrRideStatusSeatBased
			}
			return nil
		case entity.RideStatusCancelled:
			return s.cascadeCancel(ctx, tx, ride, out)
		}

		ride.Status = target
		ride.UpdatedAt = s.now()
		return saveRide(ctx, tx.Ride, ride)
	})
	if err != nil {
		return nil, err
	}

	return &response.RideStatusResponse{ID: ride.ID.String(), Status: ride.Status}, nil
}

// mutate runs fn inside a transaction on a ride owned by the actor and sends
// the queued notices once it commits.
func (s *rideService) mutate(ctx context.Context, actor entity.Actor, rideID, operation string,
	fn func(tx *repository.Repository, ride *entity.Ride, out *outbox) error) (*entity.Ride, error) {
	if !actor.IsAuthenticated() {
		return nil, ErrAuthenticationRequired
	}

	id, err := uuid.Parse(rideID)
	if err != nil {
		return nil, invalidID("ride_id", rideID)
	}

	var (
		out  outbox
		ride *entity.Ride
	)

	err = s.repo.Tx.WithTx(ctx, func(tx *repository.Repository) error {
		out.reset()

		r, err := findRide(ctx, tx.Ride, id)
		if err != nil {
			return err
		}
		if !actor.Is(r.DriverID) {
			return ErrNotAuthorized
		}

		if err := fn(tx, r, &out); err != nil {
			return err
		}

		ride = r
		return nil
	})
	if err != nil {
		s.logRejected(operation, err, zap.String("ride_id", rideID), zap.String("actor_id", actor.UserID.String()))
		return nil, err
	}

	out.flush(ctx, s.notifier)

	s.log.Info("Ride updated",
		zap.String("operation", operation),
		zap.String("ride_id", ride.ID.String()),
		zap.String("status", string(ride.Status)),
		zap.Int64("version", ride.Version),
	)

	return ride, nil
}

func (s *rideService) buildRideResponse(ctx context.Context, ride *entity.Ride) response.RideResponse {
	driver, err := s.repo.User.FindByID(ctx, ride.DriverID)
	if err != nil {
		s.log.Warn("Failed to load driver profile", zap.Error(err), zap.String("driver_id", ride.DriverID.String()))
	}
	return response.RideToResponse(ride, driver)
}

func (s *rideService) logRejected(operation string, err error, fields ...zap.Field) {
	logFailure(s.log, operation, err, fields...)
}

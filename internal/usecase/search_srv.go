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

type SearchService interface {
	SearchRides(ctx context.Context, actor entity.Actor, req *request.SearchRideRequest) (*response.PaginatedResponse[response.RideResponse], error)
}

type searchService struct {
	repo *repository.Repository
	now  func() time.Time
	log  *zap.Logger
}

func NewSearchService(repo *repository.Repository, log *zap.Logger, now func() time.Time) SearchService {
	return &searchService{
		repo: repo,
		now:  now,
		log:  log.With(zap.String("service", "search")),
	}
}

func (s *searchService) SearchRides(ctx context.Context, actor entity.Actor, req *request.SearchRideRequest) (*response.PaginatedResponse[response.RideResponse], error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Search validation failed", zap.Any("errors", errs))
		return nil, ValidationError(errs)
	}

	filter := MatchRides(SearchQuery{
		Origin:        entity.GeoPoint{Lat: req.OriginLat, Lon: req.OriginLon},
		Destination:   entity.GeoPoint{Lat: req.DestinationLat, Lon: req.DestinationLon},
		DepartureTime: req.DepartureTime,
		Seats:         req.Seats,
		RadiusKm:      req.RadiusKm,
		GenderFilter:  entity.GenderPreference(req.GenderFilter),
	}, actor, s.now())

	sort := repository.RideSort{Field: repository.SortByDeparture, Desc: req.SortDir == "desc"}
	if req.SortBy == string(repository.SortByPrice) {
		sort.Field = repository.SortByPrice
	}

	limit := req.Limit()
	offset := req.Offset()

	rides, err := s.repo.Ride.Search(ctx, filter, sort, limit, offset)
	if err != nil {
		s.log.Error("Failed to search rides",
			zap.Error(err),
			zap.Float64("pickup_radius_m", filter.PickupRadiusMeters),
			zap.Int("seats", filter.MinSeats),
		)
		return nil, fmt.Errorf("search rides: %w", err)
	}

	total, err := s.repo.Ride.CountSearch(ctx, filter)
	if err != nil {
		s.log.Error("Failed to count search results", zap.Error(err))
		return nil, fmt.Errorf("count search results: %w", err)
	}

	drivers := make(map[uuid.UUID]*entity.User)
	rideResponses := make([]response.RideResponse, len(rides))
	for i, ride := range rides {
		driver, ok := drivers[ride.DriverID]
		if !ok {
			driver, err = s.repo.User.FindByID(ctx, ride.DriverID)
			if err != nil {
				s.log.Warn("Failed to load driver profile", zap.Error(err), zap.String("driver_id", ride.DriverID.String()))
			}
			drivers[ride.DriverID] = driver
		}
		rideResponses[i] = response.RideToResponse(ride, driver)
	}

	s.log.Debug("Rides searched",
		zap.Int("count", len(rides)),
		zap.Int64("total", total),
		zap.Strings("preferences", filter.PreferenceNames()),
	)

	return response.NewPaginatedResponse(rideResponses, req.Page, limit, total), nil
}

package adaptor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ride-booking/internal/data/entity"
	"ride-booking/internal/dto/request"
	"ride-booking/internal/dto/response"
	"ride-booking/internal/usecase"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubRideService struct {
	err       error
	gotActor  entity.Actor
	gotID     string
	gotRide   *request.RideRequest
	gotStatus *request.UpdateRideStatusRequest
}

func (s *stubRideService) ride(actor entity.Actor, id string) (*response.RideResponse, error) {
	s.gotActor, s.gotID = actor, id
	if s.err != nil {
		return nil, s.err
	}
	return &response.RideResponse{ID: id}, nil
}

func (s *stubRideService) status(actor entity.Actor, id string, status entity.RideStatus) (*response.RideStatusResponse, error) {
	s.gotActor, s.gotID = actor, id
	if s.err != nil {
		return nil, s.err
	}
	return &response.RideStatusResponse{ID: id, Status: status}, nil
}

func (s *stubRideService) GetRide(_ context.Context, id string) (*response.RideResponse, error) {
	return s.ride(entity.Anonymous, id)
}

func (s *stubRideService) CreateRide(_ context.Context, actor entity.Actor, req *request.RideRequest) (*response.RideResponse, error) {
	s.gotRide = req
	return s.ride(actor, uuid.NewString())
}

func (s *stubRideService) GetMyRides(_ context.Context, actor entity.Actor, req *request.PaginatedRequest) (*response.PaginatedResponse[response.RideResponse], error) {
	s.gotActor = actor
	if s.err != nil {
		return nil, s.err
	}
	return response.NewPaginatedResponse([]response.RideResponse{}, req.Page, req.Limit(), 0), nil
}

func (s *stubRideService) GetRidePassengers(_ context.Context, actor entity.Actor, id string) ([]response.RidePassengerResponse, error) {
	s.gotActor, s.gotID = actor, id
	return []response.RidePassengerResponse{}, s.err
}

func (s *stubRideService) UpdateRide(_ context.Context, actor entity.Actor, id string, req *request.RideRequest) (*response.RideResponse, error) {
	s.gotRide = req
	return s.ride(actor, id)
}

func (s *stubRideService) UpdateRideStatus(_ context.Context, actor entity.Actor, id string, req *request.UpdateRideStatusRequest) (*response.RideStatusResponse, error) {
	s.gotStatus = req
	return s.status(actor, id, entity.RideStatus(req.Status))
}

func (s *stubRideService) StartRide(_ context.Context, actor entity.Actor, id string) (*response.RideStatusResponse, error) {
	return s.status(actor, id, entity.RideStatusInProgress)
}

func (s *stubRideService) CompleteRide(_ context.Context, actor entity.Actor, id string) (*response.RideStatusResponse, error) {
	return s.status(actor, id, entity.RideStatusCompleted)
}

func (s *stubRideService) CancelRide(_ context.Context, actor entity.Actor, id string) (*response.RideResponse, error) {
	return s.ride(actor, id)
}

func newRideRouter(service usecase.RideService, actor entity.Actor) http.Handler {
	h := NewRideHandler(service, zap.NewNop())

	r := chi.NewRouter()
	r.Use(withActor(actor))
	r.Post("/api/rides", h.CreateRide)
	r.Get("/api/rides/{id}", h.GetRide)
	r.Put("/api/rides/{id}", h.UpdateRide)
	r.Patch("/api/rides/{id}/status", h.UpdateRideStatus)
	r.Post("/api/rides/{id}/start", h.StartRide)
	return r
}

const rideBody = `{"origin_name":"Paris","origin_lat":48.8566,"origin_lon":2.3522,` +
	`"destination_name":"Lyon","destination_lat":45.764,"destination_lon":4.8357,` +
	`"departure_time":"2026-03-04T08:00:00Z","total_seats":%SEATS%,"price_per_seat":15}`

func rideJSON(seats string) string {
	return strings.Replace(rideBody, "%SEATS%", seats, 1)
}

func TestCreateRideHandler(t *testing.T) {
	actor := entity.Authenticated(uuid.New(), entity.GenderMale)

	tests := []struct {
		name       string
		body       string
		status     int
		fieldError string
	}{
		{name: "created", body: rideJSON("3"), status: http.StatusCreated},
		{name: "malformed json", body: `{"origin_name":`, status: http.StatusBadRequest},
		{name: "too many seats", body: rideJSON("9"), status: http.StatusBadRequest, fieldError: "TotalSeats"},
		{name: "missing seats", body: rideJSON("0"), status: http.StatusBadRequest, fieldError: "TotalSeats"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &stubRideService{}
			rec := httptest.NewRecorder()
			newRideRouter(service, actor).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/rides", strings.NewReader(tt.body)))

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusCreated {
				require.NotNil(t, service.gotRide)
				assert.Equal(t, 3, service.gotRide.TotalSeats)
				assert.Equal(t, actor, service.gotActor)
				return
			}
			assert.Nil(t, service.gotRide)
			if tt.fieldError != "" {
				errs, ok := decode(t, rec)["errors"].(map[string]any)
				require.True(t, ok)
				assert.Contains(t, errs, tt.fieldError)
			}
		})
	}
}

func TestRideHandler_StatusRoutes(t *testing.T) {
	actor := entity.Authenticated(uuid.New(), entity.GenderFemale)
	rideID := uuid.NewString()

	t.Run("explicit status write", func(t *testing.T) {
		service := &stubRideService{}
		rec := httptest.NewRecorder()
		newRideRouter(service, actor).ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/api/rides/"+rideID+"/status", strings.NewReader(`{"status":"IN_PROGRESS"}`)))

		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, service.gotStatus)
		assert.Equal(t, "IN_PROGRESS", service.gotStatus.Status)
		assert.Equal(t, rideID, service.gotID)

		data := decode(t, rec)["data"].(map[string]any)
		assert.Equal(t, "IN_PROGRESS", data["status"])
	})

	t.Run("seat based status", func(t *testing.T) {
		service := &stubRideService{err: usecase.ErrRideStatusSeatBased}
		rec := httptest.NewRecorder()
		newRideRouter(service, actor).ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/api/rides/"+rideID+"/status", strings.NewReader(`{"status":"FULL"}`)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		errs := decode(t, rec)["errors"].(map[string]any)
		assert.Equal(t, "RIDE_STATUS_SEAT_BASED", errs["code"])
	})

	t.Run("start by someone else", func(t *testing.T) {
		service := &stubRideService{err: usecase.ErrNotAuthorized}
		rec := httptest.NewRecorder()
		newRideRouter(service, actor).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/rides/"+rideID+"/start", nil))

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, actor, service.gotActor)
	})

	t.Run("stale ride", func(t *testing.T) {
		service := &stubRideService{err: usecase.ErrSeatConflict}
		rec := httptest.NewRecorder()
		newRideRouter(service, actor).ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/rides/"+rideID, strings.NewReader(rideJSON("4"))))

		assert.Equal(t, http.StatusConflict, rec.Code)
		require.NotNil(t, service.gotRide)
		assert.Equal(t, 4, service.gotRide.TotalSeats)
	})

	t.Run("missing ride", func(t *testing.T) {
		service := &stubRideService{err: usecase.ErrRideNotFound}
		rec := httptest.NewRecorder()
		newRideRouter(service, entity.Anonymous).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/rides/"+rideID, nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, rideID, service.gotID)
	})
}

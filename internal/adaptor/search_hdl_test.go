package adaptor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

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

type stubSearchService struct {
	err      error
	gotActor entity.Actor
	gotReq   *request.SearchRideRequest
}

func (s *stubSearchService) SearchRides(_ context.Context, actor entity.Actor, req *request.SearchRideRequest) (*response.PaginatedResponse[response.RideResponse], error) {
	s.gotActor, s.gotReq = actor, req
	if s.err != nil {
		return nil, s.err
	}
	return response.NewPaginatedResponse([]response.RideResponse{}, req.Page, req.Limit(), 0), nil
}

func newSearchRouter(service usecase.SearchService, actor entity.Actor) http.Handler {
	h := NewSearchHandler(service, zap.NewNop())

	r := chi.NewRouter()
	r.Use(withActor(actor))
	r.Get("/api/rides/search", h.SearchRides)
	return r
}

const coordinates = "origin_lat=48.8566&origin_lon=2.3522&destination_lat=45.764&destination_lon=4.8357"

func TestSearchHandler_QueryParsing(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		status     int
		fieldError string
	}{
		{name: "coordinates only", query: coordinates, status: http.StatusOK},
		{name: "all filters", query: coordinates + "&departure_time=2026-03-03T09:00:00Z&radius_km=10&seats=2&sort_by=price&sort_dir=desc", status: http.StatusOK},
		{name: "bad departure time", query: coordinates + "&departure_time=tomorrow", status: http.StatusBadRequest, fieldError: "departure_time"},
		{name: "date without time", query: coordinates + "&departure_time=2026-03-03", status: http.StatusBadRequest, fieldError: "departure_time"},
		{name: "bad radius", query: coordinates + "&radius_km=far", status: http.StatusBadRequest, fieldError: "radius_km"},
		{name: "missing origin", query: "destination_lat=45.764&destination_lon=4.8357&origin_lon=2.3522", status: http.StatusBadRequest, fieldError: "origin_lat"},
		{name: "non numeric coordinate", query: "origin_lat=north&origin_lon=2.3522&destination_lat=45.764&destination_lon=4.8357", status: http.StatusBadRequest, fieldError: "origin_lat"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &stubSearchService{}
			rec := httptest.NewRecorder()
			newSearchRouter(service, entity.Anonymous).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/rides/search?"+tt.query, nil))

			assert.Equal(t, tt.status, rec.Code)
			if tt.fieldError == "" {
				require.NotNil(t, service.gotReq)
				return
			}
			assert.Nil(t, service.gotReq, "service is not called on a malformed query")
			errs, ok := decode(t, rec)["errors"].(map[string]any)
			require.True(t, ok)
			assert.Contains(t, errs, tt.fieldError)
		})
	}
}

func TestSearchHandler_Defaults(t *testing.T) {
	service := &stubSearchService{}
	rec := httptest.NewRecorder()
	newSearchRouter(service, entity.Anonymous).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/rides/search?"+coordinates+"&seats=0", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	req := service.gotReq
	require.NotNil(t, req)
	assert.Equal(t, 48.8566, req.OriginLat)
	assert.Equal(t, 4.8357, req.DestinationLon)
	assert.Equal(t, 1, req.Seats, "seats falls back to one")
	assert.Nil(t, req.DepartureTime)
	assert.Nil(t, req.RadiusKm)
	assert.Empty(t, req.SortBy)
	assert.Equal(t, 1, req.Page)
	assert.False(t, service.gotActor.IsAuthenticated())
}

func TestSearchHandler_ParsedFilters(t *testing.T) {
	service := &stubSearchService{}
	actor := entity.Authenticated(uuid.New(), entity.GenderFemale)
	query := coordinates + "&departure_time=2026-03-03T09:00:00Z&radius_km=7.5&seats=3&gender_filter=FEMALE_ONLY&page=2&per_page=5"

	rec := httptest.NewRecorder()
	newSearchRouter(service, actor).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/rides/search?"+query, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	req := service.gotReq
	require.NotNil(t, req)
	require.NotNil(t, req.DepartureTime)
	assert.True(t, req.DepartureTime.Equal(time.Date(2026, time.March, 3, 9, 0, 0, 0, time.UTC)))
	require.NotNil(t, req.RadiusKm)
	assert.Equal(t, 7.5, *req.RadiusKm)
	assert.Equal(t, 3, req.Seats)
	assert.Equal(t, "FEMALE_ONLY", req.GenderFilter)
	assert.Equal(t, 2, req.Page)
	assert.Equal(t, 5, req.Limit())
	assert.Equal(t, actor, service.gotActor)
}

func TestSearchHandler_ServiceValidation(t *testing.T) {
	service := &stubSearchService{err: usecase.ValidationError(map[string]string{"Seats": "Must be at most 8"})}
	rec := httptest.NewRecorder()
	newSearchRouter(service, entity.Anonymous).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/rides/search?"+coordinates+"&seats=12", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	errs, ok := decode(t, rec)["errors"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, errs, "Seats")
}

package usecase

import (
	"context"
	"testing"
	"time"

	"ride-booking/internal/data/entity"
	"ride-booking/internal/dto/request"
	"ride-booking/internal/dto/response"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func searchRequest(seats int) *request.SearchRideRequest {
	return &request.SearchRideRequest{
		OriginLat:        48.8566,
		OriginLon:        2.3522,
		DestinationLat:   45.7640,
		DestinationLon:   4.8357,
		Seats:            seats,
		PaginatedRequest: request.NewPaginatedRequest(1, 10),
	}
}

func rideIDs(rides []response.RideResponse) []string {
	ids := make([]string, len(rides))
	for i, r := range rides {
		ids[i] = r.ID
	}
	return ids
}

func TestSearchRides_SeatCountExcludes(t *testing.T) {
	f := newFixture(t)
	driver := f.addUser("Driver", entity.GenderMale)
	departure := testNow.Add(6 * time.Hour)
	rideID := f.addRide(driver, 3, func(r *entity.Ride) {
		r.AvailableSeats = 1
		r.DepartureTime = departure
	})
	ctx := context.Background()

	req := searchRequest(2)
	req.DepartureTime = &departure
	resp, err := f.service.Search.SearchRides(ctx, entity.Anonymous, req)
	require.NoError(t, err)
	assert.Empty(t, resp.Data)
	assert.Zero(t, resp.Pagination.Total)

	req.Seats = 1
	resp, err = f.service.Search.SearchRides(ctx, entity.Anonymous, req)
	require.NoError(t, err)
	assert.Equal(t, []string{rideID.String()}, rideIDs(resp.Data))
}

func TestSearchRides_Filters(t *testing.T) {
	f := newFixture(t)
	driver := f.addUser("Driver", entity.GenderMale)
	ctx := context.Background()

	anyRide := f.addRide(driver, 3, func(r *entity.Ride) { r.PricePerSeat = 10 })
	womenRide := f.addRide(driver, 3, func(r *entity.Ride) {
		r.GenderPreference = entity.GenderPreferenceFemaleOnly
		r.PricePerSeat = 30
	})
	menRide := f.addRide(driver, 3, func(r *entity.Ride) {
		r.GenderPreference = entity.GenderPreferenceMaleOnly
		r.PricePerSeat = 20
	})
	// Versailles is about 17 km from the search origin.
	farRide := f.addRide(driver, 3, func(r *entity.Ride) {
		r.Origin = entity.GeoPoint{Lat: 48.8049, Lon: 2.1204}
	})
	f.addRide(driver, 3, func(r *entity.Ride) { r.Status = entity.RideStatusInProgress })
	f.addRide(driver, 3, func(r *entity.Ride) { r.DepartureTime = testNow.Add(-time.Hour) })

	t.Run("anonymous sees every tier", func(t *testing.T) {
		resp, err := f.service.Search.SearchRides(ctx, entity.Anonymous, searchRequest(1))
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{anyRide.String(), womenRide.String(), menRide.String()}, rideIDs(resp.Data))
	})

	t.Run("anonymous gender filter", func(t *testing.T) {
		req := searchRequest(1)
		req.GenderFilter = string(entity.GenderPreferenceFemaleOnly)
		resp, err := f.service.Search.SearchRides(ctx, entity.Anonymous, req)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{anyRide.String(), womenRide.String()}, rideIDs(resp.Data))
	})

	t.Run("male passenger", func(t *testing.T) {
		bob := f.addUser("Bob", entity.GenderMale)
		req := searchRequest(1)
		req.GenderFilter = string(entity.GenderPreferenceFemaleOnly)
		resp, err := f.service.Search.SearchRides(ctx, bob, req)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{anyRide.String(), menRide.String()}, rideIDs(resp.Data))
	})

	t.Run("wider pickup radius", func(t *testing.T) {
		req := searchRequest(1)
		radius := 20.0
		req.RadiusKm = &radius
		resp, err := f.service.Search.SearchRides(ctx, entity.Anonymous, req)
		require.NoError(t, err)
		assert.Contains(t, rideIDs(resp.Data), farRide.String())
		assert.Equal(t, int64(4), resp.Pagination.Total)
	})

	t.Run("sorted by price descending", func(t *testing.T) {
		req := searchRequest(1)
		req.SortBy = "price"
		req.SortDir = "desc"
		resp, err := f.service.Search.SearchRides(ctx, entity.Anonymous, req)
		require.NoError(t, err)
		assert.Equal(t, []string{womenRide.String(), menRide.String(), anyRide.String()}, rideIDs(resp.Data))
		assert.Equal(t, "Driver T.", resp.Data[0].DriverName)
	})

	t.Run("paginated", func(t *testing.T) {
		req := searchRequest(1)
		req.PaginatedRequest = request.NewPaginatedRequest(2, 2)
		resp, err := f.service.Search.SearchRides(ctx, entity.Anonymous, req)
		require.NoError(t, err)
		assert.Len(t, resp.Data, 1)
		assert.Equal(t, int64(3), resp.Pagination.Total)
		assert.Equal(t, 2, resp.Pagination.TotalPages)
	})

	t.Run("invalid input", func(t *testing.T) {
		req := searchRequest(0)
		req.OriginLat = 95
		_, err := f.service.Search.SearchRides(ctx, entity.Anonymous, req)
		require.Error(t, err)

		var domainErr *Error
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, KindValidation, domainErr.Kind)
		assert.Contains(t, domainErr.Fields, "OriginLat")
		assert.Contains(t, domainErr.Fields, "Seats")
	})
}

func TestNotificationService(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser("Alice", entity.GenderFemale)
	bob := f.addUser("Bob", entity.GenderMale)
	ctx := context.Background()

	var ids []uuid.UUID
	for i := range 3 {
		n := &entity.Notification{
			BaseSimple: entity.BaseSimple{ID: uuid.New(), CreatedAt: testNow.Add(time.Duration(i) * time.Minute)},
			UserID:     alice.UserID,
			Type:       entity.NotificationNewBooking,
			Title:      "Booking request",
		}
		require.NoError(t, f.repo.Notification.Create(ctx, n))
		ids = append(ids, n.ID)
	}

	unread, err := f.service.Notification.CountUnread(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(3), unread.Unread)

	require.NoError(t, f.service.Notification.MarkRead(ctx, alice, ids[0].String()))
	assert.ErrorIs(t, f.service.Notification.MarkRead(ctx, bob, ids[1].String()), ErrNotificationNotFound)

	req := request.NewPaginatedRequest(1, 10)
	list, err := f.service.Notification.ListNotifications(ctx, alice, &req)
	require.NoError(t, err)
	require.Len(t, list.Data, 3)
	assert.Equal(t, ids[2].String(), list.Data[0].ID)

	updated, err := f.service.Notification.MarkAllRead(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	unread, err = f.service.Notification.CountUnread(ctx, alice)
	require.NoError(t, err)
	assert.Zero(t, unread.Unread)

	_, err = f.service.Notification.CountUnread(ctx, entity.Anonymous)
	assert.ErrorIs(t, err, ErrAuthenticationRequired)
}

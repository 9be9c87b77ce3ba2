package usecase

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"ride-booking/internal/data/entity"
	"ride-booking/internal/data/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memStore is an in-memory ride store. Rides use the same version check as
// the postgres repository. Transactions run concurrently and a failed one
// restores only the rows it wrote.
type memStore struct {
	mu sync.Mutex

	rides         map[uuid.UUID]entity.Ride
	bookings      map[uuid.UUID]entity.Booking
	users         map[uuid.UUID]entity.User
	vehicles      map[uuid.UUID]entity.Vehicle
	notifications map[uuid.UUID]entity.Notification

	// failRideUpdates makes the next n ride updates report a stale version.
	failRideUpdates int

	// rideReads, when set, parks each transaction after its first ride read
	// until every participant has read.
	rideReads *sync.WaitGroup
}

func newMemStore() *memStore {
	return &memStore{
		rides:         make(map[uuid.UUID]entity.Ride),
		bookings:      make(map[uuid.UUID]entity.Booking),
		users:         make(map[uuid.UUID]entity.User),
		vehicles:      make(map[uuid.UUID]entity.Vehicle),
		notifications: make(map[uuid.UUID]entity.Notification),
	}
}

func (s *memStore) repository() *repository.Repository {
	repo := s.bound(nil)
	repo.Tx = memTransactor{s: s}
	return repo
}

func (s *memStore) bound(tx *memTx) *repository.Repository {
	return &repository.Repository{
		Ride:         memRides{s: s, tx: tx},
		Booking:      memBookings{s: s, tx: tx},
		User:         memUsers{s: s},
		Vehicle:      memVehicles{s: s},
		Notification: memNotifications{s: s},
	}
}

// memTx keeps the prior value of every row it writes. A nil entry means the
// row did not exist.
type memTx struct {
	rides    map[uuid.UUID]*entity.Ride
	bookings map[uuid.UUID]*entity.Booking
	read     bool
}

// keepRide and keepBooking must be called with the store lock held.
func (tx *memTx) keepRide(s *memStore, id uuid.UUID) {
	if tx == nil {
		return
	}
	if _, kept := tx.rides[id]; kept {
		return
	}
	tx.rides[id] = nil
	if prev, ok := s.rides[id]; ok {
		tx.rides[id] = &prev
	}
}

func (tx *memTx) keepBooking(s *memStore, id uuid.UUID) {
	if tx == nil {
		return
	}
	if _, kept := tx.bookings[id]; kept {
		return
	}
	tx.bookings[id] = nil
	if prev, ok := s.bookings[id]; ok {
		tx.bookings[id] = &prev
	}
}

func (tx *memTx) undo(s *memStore) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, prev := range tx.rides {
		if prev == nil {
			delete(s.rides, id)
			continue
		}
		s.rides[id] = *prev
	}
	for id, prev := range tx.bookings {
		if prev == nil {
			delete(s.bookings, id)
			continue
		}
		s.bookings[id] = *prev
	}
}

type memTransactor struct {
	s *memStore
}

func (t memTransactor) WithTx(_ context.Context, fn func(tx *repository.Repository) error) error {
	tx := &memTx{
		rides:    make(map[uuid.UUID]*entity.Ride),
		bookings: make(map[uuid.UUID]*entity.Booking),
	}
	if err := fn(t.s.bound(tx)); err != nil {
		tx.undo(t.s)
		return err
	}
	return nil
}

type memRides struct {
	s  *memStore
	tx *memTx
}

func (r memRides) Create(_ context.Context, ride *entity.Ride) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.tx.keepRide(r.s, ride.ID)
	r.s.rides[ride.ID] = *ride
	return nil
}

func (r memRides) FindByID(_ context.Context, id uuid.UUID) (*entity.Ride, error) {
	r.s.mu.Lock()
	ride, ok := r.s.rides[id]
	barrier := r.s.rideReads
	r.s.mu.Unlock()

	if r.tx != nil && barrier != nil && !r.tx.read {
		r.tx.read = true
		barrier.Done()
		barrier.Wait()
	}

	if !ok {
		return nil, nil
	}
	return &ride, nil
}

func (r memRides) FindByDriverID(_ context.Context, driverID uuid.UUID, limit, offset int) ([]*entity.Ride, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Ride
	for _, ride := range r.s.rides {
		if ride.DriverID == driverID {
			out = append(out, &ride)
		}
	}
	slices.SortFunc(out, func(a, b *entity.Ride) int { return b.DepartureTime.Compare(a.DepartureTime) })
	return page(out, limit, offset), nil
}

func (r memRides) CountByDriverID(_ context.Context, driverID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, ride := range r.s.rides {
		if ride.DriverID == driverID {
			n++
		}
	}
	return n, nil
}

func (r memRides) Update(_ context.Context, ride *entity.Ride) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.rides[ride.ID]
	if r.s.failRideUpdates > 0 {
		r.s.failRideUpdates--
		ok = false
	}
	if !ok || stored.Version != ride.Version {
		return fmt.Errorf("update ride %s: %w", ride.ID, repository.ErrVersionConflict)
	}
	r.tx.keepRide(r.s, ride.ID)
	ride.Version++
	r.s.rides[ride.ID] = *ride
	return nil
}

func (r memRides) matching(filter repository.RideFilter) []*entity.Ride {
	var out []*entity.Ride
	for _, ride := range r.s.rides {
		if filter.Matches(&ride) {
			out = append(out, &ride)
		}
	}
	return out
}

func (r memRides) Search(_ context.Context, filter repository.RideFilter, sort repository.RideSort, limit, offset int) ([]*entity.Ride, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := r.matching(filter)
	slices.SortFunc(out, func(a, b *entity.Ride) int {
		c := a.DepartureTime.Compare(b.DepartureTime)
		if sort.Field == repository.SortByPrice {
			c = cmpFloat(a.PricePerSeat, b.PricePerSeat)
		}
		if sort.Desc {
			c = -c
		}
		if c == 0 {
			c = strings.Compare(a.ID.String(), b.ID.String())
		}
		return c
	})
	return page(out, limit, offset), nil
}

func (r memRides) CountSearch(_ context.Context, filter repository.RideFilter) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.matching(filter))), nil
}

type memBookings struct {
	s  *memStore
	tx *memTx
}

func (b memBookings) Save(_ context.Context, booking *entity.Booking) error {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	for _, existing := range b.s.bookings {
		if existing.ID != booking.ID && existing.RideID == booking.RideID && existing.PassengerID == booking.PassengerID {
			return fmt.Errorf("duplicate booking for ride %s", booking.RideID)
		}
	}
	b.tx.keepBooking(b.s, booking.ID)
	b.s.bookings[booking.ID] = *booking
	return nil
}

func (b memBookings) UpdateStatus(_ context.Context, booking *entity.Booking, from entity.BookingStatus) error {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	stored, ok := b.s.bookings[booking.ID]
	if !ok || stored.Status != from {
		return fmt.Errorf("booking %s: %w", booking.ID, repository.ErrVersionConflict)
	}
	b.tx.keepBooking(b.s, booking.ID)
	stored.Status = booking.Status
	stored.UpdatedAt = booking.UpdatedAt
	b.s.bookings[booking.ID] = stored
	return nil
}

func (b memBookings) FindByID(_ context.Context, id uuid.UUID) (*entity.Booking, error) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	booking, ok := b.s.bookings[id]
	if !ok {
		return nil, nil
	}
	return &booking, nil
}

func (b memBookings) FindByRideAndPassenger(_ context.Context, rideID, passengerID uuid.UUID) (*entity.Booking, error) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	for _, booking := range b.s.bookings {
		if booking.RideID == rideID && booking.PassengerID == passengerID {
			return &booking, nil
		}
	}
	return nil, nil
}

func (b memBookings) FindByRideID(_ context.Context, rideID uuid.UUID, statuses ...entity.BookingStatus) ([]*entity.Booking, error) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	var out []*entity.Booking
	for _, booking := range b.s.bookings {
		if booking.RideID != rideID {
			continue
		}
		if len(statuses) > 0 && !slices.Contains(statuses, booking.Status) {
			continue
		}
		out = append(out, &booking)
	}
	slices.SortFunc(out, func(x, y *entity.Booking) int { return x.CreatedAt.Compare(y.CreatedAt) })
	return out, nil
}

func (b memBookings) CountByRideID(_ context.Context, rideID uuid.UUID, status entity.BookingStatus) (int64, error) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	var n int64
	for _, booking := range b.s.bookings {
		if booking.RideID == rideID && booking.Status == status {
			n++
		}
	}
	return n, nil
}

func (b memBookings) FindByPassengerID(_ context.Context, passengerID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	var out []*entity.Booking
	for _, booking := range b.s.bookings {
		if booking.PassengerID == passengerID {
			out = append(out, &booking)
		}
	}
	slices.SortFunc(out, func(x, y *entity.Booking) int { return y.CreatedAt.Compare(x.CreatedAt) })
	return page(out, limit, offset), nil
}

func (b memBookings) CountByPassengerID(_ context.Context, passengerID uuid.UUID) (int64, error) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	var n int64
	for _, booking := range b.s.bookings {
		if booking.PassengerID == passengerID {
			n++
		}
	}
	return n, nil
}

func (b memBookings) FindBookedRideIDs(_ context.Context, passengerID uuid.UUID) ([]uuid.UUID, error) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	ids := []uuid.UUID{}
	for _, booking := range b.s.bookings {
		if booking.PassengerID == passengerID && booking.Status != entity.BookingStatusCancelled {
			ids = append(ids, booking.RideID)
		}
	}
	return ids, nil
}

func (b memBookings) CancelByRideID(_ context.Context, rideID uuid.UUID) ([]*entity.Booking, error) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	var out []*entity.Booking
	for id, booking := range b.s.bookings {
		if booking.RideID != rideID || booking.Status == entity.BookingStatusCancelled {
			continue
		}
		b.tx.keepBooking(b.s, id)
		booking.Status = entity.BookingStatusCancelled
		b.s.bookings[id] = booking
		out = append(out, &booking)
	}
	return out, nil
}

type memUsers struct{ s *memStore }

func (u memUsers) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	user, ok := u.s.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

type memVehicles struct{ s *memStore }

func (v memVehicles) FindByID(_ context.Context, id uuid.UUID) (*entity.Vehicle, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	vehicle, ok := v.s.vehicles[id]
	if !ok {
		return nil, nil
	}
	return &vehicle, nil
}

type memNotifications struct{ s *memStore }

func (n memNotifications) Create(_ context.Context, notification *entity.Notification) error {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	n.s.notifications[notification.ID] = *notification
	return nil
}

func (n memNotifications) userNotifications(userID uuid.UUID) []*entity.Notification {
	var out []*entity.Notification
	for _, notification := range n.s.notifications {
		if notification.UserID == userID {
			out = append(out, &notification)
		}
	}
	slices.SortFunc(out, func(a, b *entity.Notification) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out
}

func (n memNotifications) FindByUserID(_ context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Notification, error) {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	return page(n.userNotifications(userID), limit, offset), nil
}

func (n memNotifications) CountByUserID(_ context.Context, userID uuid.UUID) (int64, error) {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	return int64(len(n.userNotifications(userID))), nil
}

func (n memNotifications) CountUnread(_ context.Context, userID uuid.UUID) (int64, error) {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	var count int64
	for _, notification := range n.userNotifications(userID) {
		if !notification.IsRead {
			count++
		}
	}
	return count, nil
}

func (n memNotifications) MarkRead(_ context.Context, id, userID uuid.UUID) (bool, error) {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	notification, ok := n.s.notifications[id]
	if !ok || notification.UserID != userID {
		return false, nil
	}
	notification.IsRead = true
	n.s.notifications[id] = notification
	return true, nil
}

func (n memNotifications) MarkAllRead(_ context.Context, userID uuid.UUID) (int64, error) {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()
	var count int64
	for id, notification := range n.s.notifications {
		if notification.UserID == userID && !notification.IsRead {
			notification.IsRead = true
			n.s.notifications[id] = notification
			count++
		}
	}
	return count, nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	return items[offset:min(offset+limit, len(items))]
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

type sentNotice struct {
	UserID uuid.UUID
	Kind   entity.NotificationType
	Title  string
	Body   string
	Link   *string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotice
}

func (n *recordingNotifier) Notify(_ context.Context, userID uuid.UUID, kind entity.NotificationType, title, body string, link *string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotice{UserID: userID, Kind: kind, Title: title, Body: body, Link: link})
}

func (n *recordingNotifier) notices() []sentNotice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return slices.Clone(n.sent)
}

var testNow = time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)

type fixture struct {
	store    *memStore
	repo     *repository.Repository
	notifier *recordingNotifier
	service  *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := newMemStore()
	repo := store.repository()
	notifier := &recordingNotifier{}
	log := zap.NewNop()
	now := func() time.Time { return testNow }

	return &fixture{
		store:    store,
		repo:     repo,
		notifier: notifier,
		service: &Service{
			Ride:         NewRideService(repo, notifier, log, now),
			Booking:      NewBookingService(repo, notifier, log, now),
			Search:       NewSearchService(repo, log, now),
			Notification: NewNotificationService(repo.Notification, log),
		},
	}
}

func (f *fixture) addUser(first string, gender entity.Gender) entity.Actor {
	user := entity.User{
		Base:      entity.Base{ID: uuid.New(), CreatedAt: testNow},
		FirstName: first,
		LastName:  "Tester",
		Email:     strings.ToLower(first) + "@example.com",
		Gender:    gender,
	}
	f.store.mu.Lock()
	f.store.users[user.ID] = user
	f.store.mu.Unlock()
	return entity.Authenticated(user.ID, gender)
}

func (f *fixture) addVehicle(owner entity.Actor, plate string) uuid.UUID {
	vehicle := entity.Vehicle{
		BaseSimple:   entity.BaseSimple{ID: uuid.New(), CreatedAt: testNow},
		OwnerID:      owner.UserID,
		Make:         "Renault",
		Model:        "Clio",
		Color:        "Blue",
		LicensePlate: plate,
	}
	f.store.mu.Lock()
	f.store.vehicles[vehicle.ID] = vehicle
	f.store.mu.Unlock()
	return vehicle.ID
}

func (f *fixture) addRide(driver entity.Actor, seats int, opts ...func(*entity.Ride)) uuid.UUID {
	ride := entity.Ride{
		Base:             entity.Base{ID: uuid.New(), CreatedAt: testNow, UpdatedAt: testNow},
		DriverID:         driver.UserID,
		OriginName:       "Paris",
		Origin:           entity.GeoPoint{Lat: 48.8566, Lon: 2.3522},
		DestinationName:  "Lyon",
		Destination:      entity.GeoPoint{Lat: 45.7640, Lon: 4.8357},
		DepartureTime:    testNow.Add(24 * time.Hour),
		TotalSeats:       seats,
		AvailableSeats:   seats,
		PricePerSeat:     15,
		LuggageSize:      entity.LuggageMedium,
		GenderPreference: entity.GenderPreferenceAny,
		Status:           entity.RideStatusScheduled,
		Version:          1,
	}
	for _, opt := range opts {
		opt(&ride)
	}
	f.store.mu.Lock()
	f.store.rides[ride.ID] = ride
	f.store.mu.Unlock()
	return ride.ID
}

func (f *fixture) ride(t *testing.T, id uuid.UUID) entity.Ride {
	t.Helper()
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	ride, ok := f.store.rides[id]
	require.True(t, ok, "ride %s not stored", id)
	return ride
}

func (f *fixture) booking(t *testing.T, id string) entity.Booking {
	t.Helper()
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	booking, ok := f.store.bookings[uuid.MustParse(id)]
	require.True(t, ok, "booking %s not stored", id)
	return booking
}

func (f *fixture) bookingCount() int {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	return len(f.store.bookings)
}

package wire

import (
	"ride-booking/internal/adaptor"
	"ride-booking/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireBooking(
	r chi.Router,
	bookingHandler *adaptor.BookingHandler,
	verifier *middleware.TokenVerifier,
	log *zap.Logger,
) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(verifier, log))

		// Passenger
		r.Post("/api/bookings", bookingHandler.CreateBooking)
		r.Get("/api/bookings/me", bookingHandler.GetMyBookings)
		r.Get("/api/bookings/me/ride-ids", bookingHandler.GetMyBookedRideIDs)
		r.Post("/api/bookings/{id}/cancel", bookingHandler.CancelBooking)
		r.Get("/api/rides/{id}/my-booking", bookingHandler.GetMyBookingForRide)
		r.Delete("/api/rides/{id}/my-booking", bookingHandler.CancelBookingByRide)

		// Driver
		r.Post("/api/bookings/{id}/accept", bookingHandler.AcceptBooking)
		r.Post("/api/bookings/{id}/reject", bookingHandler.RejectBooking)
	})
}

package wire

import (
	"ride-booking/internal/adaptor"
	"ride-booking/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireRide(
	r chi.Router,
	rideHandler *adaptor.RideHandler,
	searchHandler *adaptor.SearchHandler,
	verifier *middleware.TokenVerifier,
	log *zap.Logger,
) {
	// Public, results depend on the caller when signed in
	r.With(middleware.OptionalAuth(verifier, log)).Get("/api/rides/search", searchHandler.SearchRides)
	r.Get("/api/rides/{id}", rideHandler.GetRide)

	// Driver routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(verifier, log))

		r.Post("/api/rides", rideHandler.CreateRide)
		r.Get("/api/driver/rides", rideHandler.GetMyRides)

		r.Put("/api/rides/{id}", rideHandler.UpdateRide)
		r.Patch("/api/rides/{id}/status", rideHandler.UpdateRideStatus)
		r.Post("/api/rides/{id}/start", rideHandler.StartRide)
		r.Post("/api/rides/{id}/complete", rideHandler.CompleteRide)
		r.Post("/api/rides/{id}/cancel", rideHandler.CancelRide)
		r.Get("/api/rides/{id}/passengers", rideHandler.GetRidePassengers)
	})
}

package adaptor

import (
	"encoding/json"
	"net/http"

	"ride-booking/internal/dto/request"
	"ride-booking/internal/usecase"
	"ride-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type BookingHandler struct {
	service usecase.BookingService
	log     *zap.Logger
}

func NewBookingHandler(service usecase.BookingService, log *zap.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log.With(zap.String("handler", "booking")),
	}
}

// CreateBooking handles POST /api/bookings
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req request.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	booking, err := h.service.CreateBooking(r.Context(), utils.ActorFromContext(r.Context()), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create booking")
		return
	}

	utils.ResponseCreated(w, "success", booking)
}

// AcceptBooking handles POST /api/bookings/{id}/accept
func (h *BookingHandler) AcceptBooking(w http.ResponseWriter, r *http.Request) {
	booking, err := h.service.AcceptBooking(r.Context(), utils.ActorFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "accept booking")
		return
	}

	utils.ResponseSuccess(w, "success", booking)
}

// RejectBooking handles POST /api/bookings/{id}/reject
func (h *BookingHandler) RejectBooking(w http.ResponseWriter, r *http.Request) {
	booking, err := h.service.RejectBooking(r.Context(), utils.ActorFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "reject booking")
		return
	}

	utils.ResponseSuccess(w, "success", booking)
}

// CancelBooking handles POST /api/bookings/{id}/cancel
func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	booking, err := h.service.CancelBooking(r.Context(), utils.ActorFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "cancel booking")
		return
	}

	utils.ResponseSuccess(w, "success", booking)
}

// CancelBookingByRide handles DELETE /api/rides/{id}/my-booking
func (h *BookingHandler) CancelBookingByRide(w http.ResponseWriter, r *http.Request) {
	booking, err := h.service.CancelBookingByRide(r.Context(), utils.ActorFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "cancel booking by ride")
		return
	}

	utils.ResponseSuccess(w, "success", booking)
}

// GetMyBookings handles GET /api/bookings/me
func (h *BookingHandler) GetMyBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.service.GetMyBookings(r.Context(), utils.ActorFromContext(r.Context()), paginationFromQuery(r))
	if err != nil {
		handleServiceError(w, h.log, err, "get my bookings")
		return
	}

	utils.ResponseSuccess(w, "success", bookings)
}

// GetMyBookingForRide handles GET /api/rides/{id}/my-booking
func (h *BookingHandler) GetMyBookingForRide(w http.ResponseWriter, r *http.Request) {
	booking, err := h.service.GetMyBookingForRide(r.Context(), utils.ActorFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get my booking for ride")
		return
	}

	utils.ResponseSuccess(w, "success", booking)
}

// GetMyBookedRideIDs handles GET /api/bookings/me/ride-ids
func (h *BookingHandler) GetMyBookedRideIDs(w http.ResponseWriter, r *http.Request) {
	ids, err := h.service.GetMyBookedRideIDs(r.Context(), utils.ActorFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, h.log, err, "get booked ride ids")
		return
	}

	utils.ResponseSuccess(w, "success", ids)
}

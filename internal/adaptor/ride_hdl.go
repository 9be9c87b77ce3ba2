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

type RideHandler struct {
	service usecase.RideService
	log     *zap.Logger
}

func NewRideHandler(service usecase.RideService, log *zap.Logger) *RideHandler {
	return &RideHandler{
		service: service,
		log:     log.With(zap.String("handler", "ride")),
	}
}

// CreateRide handles POST /api/rides
func (h *RideHandler) CreateRide(w http.ResponseWriter, r *http.Request) {
	var req request.RideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	ride, err := h.service.CreateRide(r.Context(), utils.ActorFromContext(r.Context()), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create ride")
		return
	}

	utils.ResponseCreated(w, "success", ride)
}

// GetRide handles GET /api/rides/{id}
func (h *RideHandler) GetRide(w http.ResponseWriter, r *http.Request) {
	ride, err := h.service.GetRide(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get ride")
		return
	}

	utils.ResponseSuccess(w, "success", ride)
}

// GetMyRides handles GET /api/driver/rides
func (h *RideHandler) GetMyRides(w http.ResponseWriter, r *http.Request) {
	rides, err := h.service.GetMyRides(r.Context(), utils.ActorFromContext(r.Context()), paginationFromQuery(r))
	if err != nil {
		handleServiceError(w, h.log, err, "get my rides")
		return
	}

	utils.ResponseSuccess(w, "success", rides)
}

// GetRidePassengers handles GET /api/rides/{id}/passengers
func (h *RideHandler) GetRidePassengers(w http.ResponseWriter, r *http.Request) {
	passengers, err := h.service.GetRidePassengers(r.Context(), utils.ActorFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get ride passengers")
		return
	}

	utils.ResponseSuccess(w, "success", passengers)
}

// UpdateRide handles PUT /api/rides/{id}
func (h *RideHandler) UpdateRide(w http.ResponseWriter, r *http.Request) {
	var req request.RideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	ride, err := h.service.UpdateRide(r.Context(), utils.ActorFromContext(r.Context()), chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update ride")
		return
	}

	utils.ResponseSuccess(w, "success", ride)
}

// UpdateRideStatus handles PATCH /api/rides/{id}/status
func (h *RideHandler) UpdateRideStatus(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateRideStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	status, err := h.service.UpdateRideStatus(r.Context(), utils.ActorFromContext(r.Context()), chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update ride status")
		return
	}

	utils.ResponseSuccess(w, "success", status)
}

// StartRide handles POST /api/rides/{id}/start
func (h *RideHandler) StartRide(w http.ResponseWriter, r *http.Request) {
	status, err := h.service.StartRide(r.Context(), utils.ActorFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "start ride")
		return
	}

	utils.ResponseSuccess(w, "success", status)
}

// CompleteRide handles POST /api/rides/{id}/complete
func (h *RideHandler) CompleteRide(w http.ResponseWriter, r *http.Request) {
	status, err := h.service.CompleteRide(r.Context(), utils.ActorFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "complete ride")
		return
	}

	utils.ResponseSuccess(w, "success", status)
}

// CancelRide handles POST /api/rides/{id}/cancel
func (h *RideHandler) CancelRide(w http.ResponseWriter, r *http.Request) {
	ride, err := h.service.CancelRide(r.Context(), utils.ActorFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "cancel ride")
		return
	}

	utils.ResponseSuccess(w, "success", ride)
}

package adaptor

import (
	"errors"
	"net/http"

	"ride-booking/internal/dto/request"
	"ride-booking/internal/notification"
	"ride-booking/internal/usecase"
	"ride-booking/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Ride         *RideHandler
	Booking      *BookingHandler
	Search       *SearchHandler
	Notification *NotificationHandler
}

func NewHandler(service *usecase.Service, hub *notification.Hub, log *zap.Logger) *Handler {
	return &Handler{
		Ride:         NewRideHandler(service.Ride, log),
		Booking:      NewBookingHandler(service.Booking, log),
		Search:       NewSearchHandler(service.Search, log),
		Notification: NewNotificationHandler(service.Notification, hub, log),
	}
}

// handleServiceError maps domain error kinds onto the response envelope.
// Anything that is not a domain error is reported as a 500.
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	var domainErr *usecase.Error
	if !errors.As(err, &domainErr) {
		log.Error("Failed to "+operation,
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
		return
	}

	log.Warn(operation+" rejected",
		zap.String("code", domainErr.Code),
		zap.String("kind", domainErr.Kind.String()),
		zap.String("operation", operation))

	body := utils.ErrorBody{Code: domainErr.Code}
	switch domainErr.Kind {
	case usecase.KindValidation:
		utils.ResponseBadRequest(w, domainErr.Message, domainErr.Fields)
	case usecase.KindUnauthenticated:
		utils.ResponseUnauthorized(w, domainErr.Message)
	case usecase.KindForbidden:
		utils.ResponseForbidden(w, domainErr.Message, body)
	case usecase.KindNotFound:
		utils.ResponseNotFound(w, domainErr.Message, body)
	case usecase.KindConflict, usecase.KindConcurrency:
		utils.ResponseConflict(w, domainErr.Message, body)
	default:
		utils.ResponseBadRequest(w, domainErr.Message, body)
	}
}

func paginationFromQuery(r *http.Request) *request.PaginatedRequest {
	query := r.URL.Query()
	req := request.NewPaginatedRequest(
		utils.ParseInt(query.Get("page"), 1),
		utils.ParseInt(query.Get("per_page"), 10),
	)
	return &req
}

package adaptor

import (
	"net/http"

	"ride-booking/internal/dto/request"
	"ride-booking/internal/usecase"
	"ride-booking/pkg/utils"

	"go.uber.org/zap"
)

type SearchHandler struct {
	service usecase.SearchService
	log     *zap.Logger
}

func NewSearchHandler(service usecase.SearchService, log *zap.Logger) *SearchHandler {
	return &SearchHandler{
		service: service,
		log:     log.With(zap.String("handler", "search")),
	}
}

// SearchRides handles GET /api/rides/search (public, identity optional)
func (h *SearchHandler) SearchRides(w http.ResponseWriter, r *http.Request) {
	req, fieldErrors := parseSearchQuery(r)
	if len(fieldErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", fieldErrors)
		return
	}

	rides, err := h.service.SearchRides(r.Context(), utils.ActorFromContext(r.Context()), req)
	if err != nil {
		handleServiceError(w, h.log, err, "search rides")
		return
	}

	utils.ResponseSuccess(w, "success", rides)
}

func parseSearchQuery(r *http.Request) (*request.SearchRideRequest, map[string]string) {
	query := r.URL.Query()
	fieldErrors := make(map[string]string)

	coordinate := func(name string) float64 {
		v, err := utils.ParseFloat(query.Get(name))
		switch {
		case err != nil:
			fieldErrors[name] = "Must be a number"
		case v == nil:
			fieldErrors[name] = "This field is required"
		default:
			return *v
		}
		return 0
	}

	req := &request.SearchRideRequest{
		OriginLat:        coordinate("origin_lat"),
		OriginLon:        coordinate("origin_lon"),
		DestinationLat:   coordinate("destination_lat"),
		DestinationLon:   coordinate("destination_lon"),
		Seats:            utils.ParseInt(query.Get("seats"), 1),
		GenderFilter:     query.Get("gender_filter"),
		SortBy:           query.Get("sort_by"),
		SortDir:          query.Get("sort_dir"),
		PaginatedRequest: *paginationFromQuery(r),
	}

	departure, err := utils.ParseTime(query.Get("departure_time"))
	if err != nil {
		fieldErrors["departure_time"] = "Must be an RFC3339 timestamp"
	}
	req.DepartureTime = departure

	radius, err := utils.ParseFloat(query.Get("radius_km"))
	if err != nil {
		fieldErrors["radius_km"] = "Must be a number"
	}
	req.RadiusKm = radius

	return req, fieldErrors
}

package request

import (
	"time"
)

// RideRequest is used both to publish and to edit a ride.
type RideRequest struct {
	OriginName       string    `json:"origin_name" validate:"required,max=255"`
	OriginLat        float64   `json:"origin_lat" validate:"latitude"`
	OriginLon        float64   `json:"origin_lon" validate:"longitude"`
	DestinationName  string    `json:"destination_name" validate:"required,max=255"`
	DestinationLat   float64   `json:"destination_lat" validate:"latitude"`
	DestinationLon   float64   `json:"destination_lon" validate:"longitude"`
	DepartureTime    time.Time `json:"departure_time" validate:"required"`
	TotalSeats       int       `json:"total_seats" validate:"required,min=1,max=8"`
	PricePerSeat     float64   `json:"price_per_seat" validate:"gte=0"`
	AllowsSmoking    bool      `json:"allows_smoking"`
	AllowsMusic      bool      `json:"allows_music"`
	AllowsPets       bool      `json:"allows_pets"`
	LuggageSize      string    `json:"luggage_size" validate:"omitempty,oneof=SMALL MEDIUM LARGE"`
	GenderPreference string    `json:"gender_preference" validate:"omitempty,oneof=ANY MALE_ONLY FEMALE_ONLY"`
	VehicleID        *string   `json:"vehicle_id" validate:"omitempty,uuid"`
}

type UpdateRideStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=SCHEDULED FULL IN_PROGRESS COMPLETED CANCELLED"`
}

type SearchRideRequest struct {
	OriginLat      float64    `validate:"latitude"`
	OriginLon      float64    `validate:"longitude"`
	DestinationLat float64    `validate:"latitude"`
	DestinationLon float64    `validate:"longitude"`
	DepartureTime  *time.Time `validate:"-"`
	Seats          int        `validate:"min=1,max=8"`
	RadiusKm       *float64   `validate:"omitempty,gt=0,max=100"`
	GenderFilter   string     `validate:"omitempty,oneof=ANY MALE_ONLY FEMALE_ONLY"`
	SortBy         string     `validate:"omitempty,oneof=price departure"`
	SortDir        string     `validate:"omitempty,oneof=asc desc"`
	PaginatedRequest
}

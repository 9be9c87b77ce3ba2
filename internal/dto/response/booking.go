package response

import (
	"time"

	"ride-booking/internal/data/entity"
)

type BookingResponse struct {
	ID              string               `json:"id"`
	RideID          string               `json:"ride_id"`
	RideSummary     string               `json:"ride_summary"`
	DriverName      string               `json:"driver_name,omitempty"`
	DepartureTime   time.Time            `json:"departure_time"`
	SeatsBooked     int                  `json:"seats_booked"`
	PriceTotal      float64              `json:"price_total"`
	Status          entity.BookingStatus `json:"status"`
	RideStatus      entity.RideStatus    `json:"ride_status"`
	CreatedAt       time.Time            `json:"created_at"`
	CarLicensePlate *string              `json:"car_license_plate,omitempty"`
	CarDescription  *string              `json:"car_description,omitempty"`
}

type BookedRideIDsResponse struct {
	RideIDs []string `json:"ride_ids"`
}

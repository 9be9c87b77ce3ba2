package response

import (
	"time"

	"ride-booking/internal/data/entity"
)

type RideResponse struct {
	ID               string                  `json:"id"`
	DriverID         string                  `json:"driver_id"`
	DriverName       string                  `json:"driver_name,omitempty"`
	VehicleID        *string                 `json:"vehicle_id,omitempty"`
	OriginName       string                  `json:"origin_name"`
	OriginLat        float64                 `json:"origin_lat"`
	OriginLon        float64                 `json:"origin_lon"`
	DestinationName  string                  `json:"destination_name"`
	DestinationLat   float64                 `json:"destination_lat"`
	DestinationLon   float64                 `json:"destination_lon"`
	DepartureTime    time.Time               `json:"departure_time"`
	TotalSeats       int                     `json:"total_seats"`
	AvailableSeats   int                     `json:"available_seats"`
	PricePerSeat     float64                 `json:"price_per_seat"`
	AllowsSmoking    bool                    `json:"allows_smoking"`
	AllowsMusic      bool                    `json:"allows_music"`
	AllowsPets       bool                    `json:"allows_pets"`
	LuggageSize      entity.LuggageSize      `json:"luggage_size,omitempty"`
	GenderPreference entity.GenderPreference `json:"gender_preference"`
	Status           entity.RideStatus       `json:"status"`
	CreatedAt        time.Time               `json:"created_at"`
}

type RideStatusResponse struct {
	ID     string            `json:"id"`
	Status entity.RideStatus `json:"status"`
}

type RidePassengerResponse struct {
	BookingID      string               `json:"booking_id"`
	PassengerID    string               `json:"passenger_id"`
	PassengerName  string               `json:"passenger_name,omitempty"`
	PassengerEmail string               `json:"passenger_email,omitempty"`
	PassengerPhone *string              `json:"passenger_phone,omitempty"`
	FacebookURL    *string              `json:"facebook_url,omitempty"`
	InstagramURL   *string              `json:"instagram_url,omitempty"`
	SeatsBooked    int                  `json:"seats_booked"`
	Status         entity.BookingStatus `json:"status"`
}

// RideToResponse renders a ride; driver may be nil when the profile is unavailable.
func RideToResponse(ride *entity.Ride, driver *entity.User) RideResponse {
	resp := RideResponse{
		ID:               ride.ID.String(),
		DriverID:         ride.DriverID.String(),
		OriginName:       ride.OriginName,
		OriginLat:        ride.Origin.Lat,
		OriginLon:        ride.Origin.Lon,
		DestinationName:  ride.DestinationName,
		DestinationLat:   ride.Destination.Lat,
		DestinationLon:   ride.Destination.Lon,
		DepartureTime:    ride.DepartureTime,
		TotalSeats:       ride.TotalSeats,
		AvailableSeats:   ride.AvailableSeats,
		PricePerSeat:     ride.PricePerSeat,
		AllowsSmoking:    ride.AllowsSmoking,
		AllowsMusic:      ride.AllowsMusic,
		AllowsPets:       ride.AllowsPets,
		LuggageSize:      ride.LuggageSize,
		GenderPreference: ride.GenderPreference,
		Status:           ride.Status,
		CreatedAt:        ride.CreatedAt,
	}
	if ride.VehicleID != nil {
		id := ride.VehicleID.String()
		resp.VehicleID = &id
	}
	if driver != nil {
		resp.DriverName = driver.ShortName()
	}
	return resp
}

func PassengerToResponse(booking *entity.Booking, passenger *entity.User) RidePassengerResponse {
	resp := RidePassengerResponse{
		BookingID:   booking.ID.String(),
		PassengerID: booking.PassengerID.String(),
		SeatsBooked: booking.SeatsBooked,
		Status:      booking.Status,
	}
	if passenger != nil {
		resp.PassengerName = passenger.FullName()
		resp.PassengerEmail = passenger.Email
		resp.PassengerPhone = passenger.Phone
		resp.FacebookURL = passenger.FacebookURL
		resp.InstagramURL = passenger.InstagramURL
	}
	return resp
}

package entity

import (
	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusRejected  BookingStatus = "REJECTED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

// HoldsSeats reports whether the booking counts against the ride inventory.
func (s BookingStatus) HoldsSeats() bool {
	return s == BookingStatusPending || s == BookingStatusConfirmed
}

type Booking struct {
	Base
	RideID      uuid.UUID     `db:"ride_id"`
	PassengerID uuid.UUID     `db:"passenger_id"`
	SeatsBooked int           `db:"seats_booked"`
	PriceTotal  float64       `db:"price_total"`
	Status      BookingStatus `db:"status"`
}

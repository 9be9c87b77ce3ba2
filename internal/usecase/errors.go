package usecase

import (
	"errors"
	"fmt"

	"ride-booking/internal/data/repository"
)

// ErrorKind classifies domain failures so the transport layer can pick a status.
type ErrorKind int

const (
	KindBusinessRule ErrorKind = iota + 1
	KindValidation
	KindUnauthenticated
	KindForbidden
	KindConflict
	KindConcurrency
	KindNotFound
)

func (k ErrorKind) String() string {
	switch k {
	case KindBusinessRule:
		return "business_rule"
	case KindValidation:
		return "validation"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	case KindConcurrency:
		return "concurrency"
	case KindNotFound:
		return "not_found"
	}
	return "unknown"
}

// Error is a coded domain failure. Sentinels are compared by identity with
// errors.Is; use errors.As to read the kind and code.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
	Fields  map[string]string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind ErrorKind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

var (
	ErrAuthenticationRequired = newError(KindUnauthenticated, "AUTHENTICATION_REQUIRED", "Authentication required")

	ErrRideNotFound         = newError(KindNotFound, "RIDE_NOT_FOUND", "Ride not found")
	ErrBookingNotFound      = newError(KindNotFound, "BOOKING_NOT_FOUND", "Booking not found")
	ErrNotificationNotFound = newError(KindNotFound, "NOTIFICATION_NOT_FOUND", "Notification not found")

	ErrDriverCannotBook    = newError(KindBusinessRule, "DRIVER_CANNOT_BOOK", "Drivers cannot book their own ride")
	ErrRideNotBookable     = newError(KindBusinessRule, "RIDE_NOT_BOOKABLE", "Ride is not open for booking")
	ErrRideAlreadyDeparted = newError(KindBusinessRule, "RIDE_ALREADY_DEPARTED", "Ride has already departed")
	ErrNotEnoughSeats      = newError(KindBusinessRule, "NOT_ENOUGH_SEATS", "Not enough seats available")
	ErrGenderNotAllowed    = newError(KindBusinessRule, "GENDER_NOT_ALLOWED", "Ride is restricted to another gender")
	ErrCannotCancelActive  = newError(KindBusinessRule, "CANNOT_CANCEL_ACTIVE_RIDE", "Cannot cancel a booking once the ride has started")

	ErrNotAuthorized         = newError(KindForbidden, "NOT_AUTHORIZED", "Only the driver of this ride can do that")
	ErrNotAuthorizedToCancel = newError(KindForbidden, "NOT_AUTHORIZED_TO_CANCEL", "Only the passenger can cancel this booking")
	ErrVehicleNotOwned       = newError(KindForbidden, "VEHICLE_NOT_OWNED", "Vehicle does not belong to the driver")

	ErrPassengerAlreadyBooked = newError(KindConflict, "PASSENGER_ALREADY_BOOKED", "You already have a booking on this ride")
	ErrBookingNotPending      = newError(KindConflict, "BOOKING_NOT_PENDING", "Booking is no longer pending")
	ErrAlreadyCancelled       = newError(KindConflict, "ALREADY_CANCELLED", "Booking is already cancelled")
	ErrBookingNotCancellable  = newError(KindConflict, "BOOKING_NOT_CANCELLABLE", "A rejected booking cannot be cancelled")

	ErrSeatConflict    = newError(KindConcurrency, "SEAT_CONFLICT", "Ride was modified concurrently, please retry")
	ErrBookingConflict = newError(KindConcurrency, "BOOKING_CONFLICT", "Booking was modified concurrently, please retry")

	ErrRideNotStartable    = newError(KindBusinessRule, "RIDE_NOT_STARTABLE", "Can only start a scheduled or full ride")
	ErrRideNotInProgress   = newError(KindBusinessRule, "RIDE_NOT_IN_PROGRESS", "Can only complete a ride that is in progress")
	ErrRideNotCancellable  = newError(KindBusinessRule, "RIDE_NOT_CANCELLABLE", "Cannot cancel a ride that is already completed or cancelled")
	ErrRideNotEditable     = newError(KindBusinessRule, "RIDE_NOT_EDITABLE", "Only scheduled rides can be edited")
	ErrRideHasPassengers   = newError(KindBusinessRule, "RIDE_HAS_PASSENGERS", "Cannot modify a ride that already has passengers booked")
	ErrRideStatusFinal     = newError(KindBusinessRule, "RIDE_STATUS_FINAL", "Cannot change status of a completed or cancelled ride")
	ErrRideNotStarted      = newError(KindBusinessRule, "RIDE_NOT_STARTED", "Cannot complete a ride that hasn't started yet")
	ErrRideStatusSeatBased = newError(KindBusinessRule, "RIDE_STATUS_SEAT_BASED", "Scheduled and full follow seat availability and cannot be set directly")
	ErrDepartureInPast     = newError(KindBusinessRule, "DEPARTURE_IN_PAST", "Departure time must be in the future")
	ErrGenderPrefForbidden = newError(KindBusinessRule, "GENDER_PREFERENCE_NOT_ALLOWED", "You cannot publish a ride restricted to the other gender")
)

// ValidationError reports malformed input field by field.
func ValidationError(fields map[string]string) error {
	return &Error{
		Kind:    KindValidation,
		Code:    "VALIDATION_FAILED",
		Message: "Validation failed",
		Fields:  fields,
	}
}

func invalidID(field, value string) error {
	return ValidationError(map[string]string{field: fmt.Sprintf("%q is not a valid UUID", value)})
}

// KindOf returns the kind of a domain error, or zero for infrastructure errors.
func KindOf(err error) ErrorKind {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Kind
	}
	return 0
}

// conflictAs maps a repository CAS miss onto the given domain conflict.
func conflictAs(err error, domainErr *Error) error {
	if errors.Is(err, repository.ErrVersionConflict) {
		return domainErr
	}
	return err
}

package entity

import (
	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationNewBooking         NotificationType = "NEW_BOOKING"
	NotificationBookingAccepted    NotificationType = "BOOKING_ACCEPTED"
	NotificationBookingRejected    NotificationType = "BOOKING_REJECTED"
	NotificationRideStarted        NotificationType = "RIDE_STARTED"
	NotificationRideCompleted      NotificationType = "RIDE_COMPLETED"
	NotificationRideCancelled      NotificationType = "RIDE_CANCELLED"
	NotificationPassengerCancelled NotificationType = "PASSENGER_CANCELLED"
	NotificationNewReview          NotificationType = "NEW_REVIEW"
)

type Notification struct {
	BaseSimple
	UserID uuid.UUID        `db:"user_id" json:"user_id"`
	Type   NotificationType `db:"type" json:"type"`
	Title  string           `db:"title" json:"title"`
	Body   string           `db:"body" json:"body"`
	Link   *string          `db:"link" json:"link,omitempty"`
	IsRead bool             `db:"is_read" json:"is_read"`
}

package usecase

import (
	"time"

	"ride-booking/internal/data/repository"

	"go.uber.org/zap"
)

type Service struct {
	Ride         RideService
	Booking      BookingService
	Search       SearchService
	Notification NotificationService
}

func NewService(repo *repository.Repository, notifier Notifier, log *zap.Logger) *Service {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	now := time.Now

	return &Service{
		Ride:         NewRideService(repo, notifier, log, now),
		Booking:      NewBookingService(repo, notifier, log, now),
		Search:       NewSearchService(repo, log, now),
		Notification: NewNotificationService(repo.Notification, log),
	}
}

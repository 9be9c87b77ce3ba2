package wire

import (
	"ride-booking/internal/adaptor"
	"ride-booking/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireNotification(
	r chi.Router,
	notificationHandler *adaptor.NotificationHandler,
	verifier *middleware.TokenVerifier,
	log *zap.Logger,
) {
	r.Route("/api/notifications", func(r chi.Router) {
		r.Use(middleware.Authenticate(verifier, log))

		r.Get("/", notificationHandler.ListNotifications)
		r.Get("/unread-count", notificationHandler.CountUnread)
		r.Put("/read-all", notificationHandler.MarkAllRead)
		r.Put("/{id}/read", notificationHandler.MarkRead)
		r.Get("/stream", notificationHandler.Stream)
	})
}

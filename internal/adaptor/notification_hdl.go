package adaptor

import (
	"net/http"

	"ride-booking/internal/notification"
	"ride-booking/internal/usecase"
	"ride-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type NotificationHandler struct {
	service usecase.NotificationService
	hub     *notification.Hub
	log     *zap.Logger
}

func NewNotificationHandler(service usecase.NotificationService, hub *notification.Hub, log *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		service: service,
		hub:     hub,
		log:     log.With(zap.String("handler", "notification")),
	}
}

// ListNotifications handles GET /api/notifications
func (h *NotificationHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	notifications, err := h.service.ListNotifications(r.Context(), utils.ActorFromContext(r.Context()), paginationFromQuery(r))
	if err != nil {
		handleServiceError(w, h.log, err, "list notifications")
		return
	}

	utils.ResponseSuccess(w, "success", notifications)
}

// CountUnread handles GET /api/notifications/unread-count
func (h *NotificationHandler) CountUnread(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.CountUnread(r.Context(), utils.ActorFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, h.log, err, "count unread notifications")
		return
	}

	utils.ResponseSuccess(w, "success", count)
}

// MarkRead handles PUT /api/notifications/{id}/read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	if err := h.service.MarkRead(r.Context(), utils.ActorFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, h.log, err, "mark notification read")
		return
	}

	utils.ResponseSuccess(w, "success", nil)
}

// MarkAllRead handles PUT /api/notifications/read-all
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	updated, err := h.service.MarkAllRead(r.Context(), utils.ActorFromContext(r.Context()))
	if err != nil {
		handleServiceError(w, h.log, err, "mark all notifications read")
		return
	}

	utils.ResponseSuccess(w, "success", map[string]int64{"updated": updated})
}

// Stream handles GET /api/notifications/stream (websocket)
func (h *NotificationHandler) Stream(w http.ResponseWriter, r *http.Request) {
	actor := utils.ActorFromContext(r.Context())
	if !actor.IsAuthenticated() {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	// Upgrade writes its own error response on failure.
	if err := h.hub.ServeWS(w, r, actor.UserID); err != nil {
		h.log.Warn("Websocket upgrade failed",
			zap.Error(err),
			zap.String("user_id", actor.UserID.String()))
	}
}

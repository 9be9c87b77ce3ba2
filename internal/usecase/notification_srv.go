package usecase

import (
	"context"
	"fmt"

	"ride-booking/internal/data/entity"
	"ride-booking/internal/data/repository"
	"ride-booking/internal/dto/request"
	"ride-booking/internal/dto/response"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type NotificationService interface {
	ListNotifications(ctx context.Context, actor entity.Actor, req *request.PaginatedRequest) (*response.PaginatedResponse[response.NotificationResponse], error)
	CountUnread(ctx context.Context, actor entity.Actor) (*response.UnreadCountResponse, error)
	MarkRead(ctx context.Context, actor entity.Actor, notificationID string) error
	MarkAllRead(ctx context.Context, actor entity.Actor) (int64, error)
}

type notificationService struct {
	repo repository.NotificationRepository
	log  *zap.Logger
}

func NewNotificationService(repo repository.NotificationRepository, log *zap.Logger) NotificationService {
	return &notificationService{
		repo: repo,
		log:  log.With(zap.String("service", "notification")),
	}
}

func (s *notificationService) ListNotifications(ctx context.Context, actor entity.Actor, req *request.PaginatedRequest) (*response.PaginatedResponse[response.NotificationResponse], error) {
	if !actor.IsAuthenticated() {
		return nil, ErrAuthenticationRequired
	}

	limit := req.Limit()

	notifications, err := s.repo.FindByUserID(ctx, actor.UserID, limit, req.Offset())
	if err != nil {
		s.log.Error("Failed to list notifications", zap.Error(err), zap.String("user_id", actor.UserID.String()))
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	total, err := s.repo.CountByUserID(ctx, actor.UserID)
	if err != nil {
		s.log.Error("Failed to count notifications", zap.Error(err))
		return nil, fmt.Errorf("count notifications: %w", err)
	}

	items := make([]response.NotificationResponse, len(notifications))
	for i, n := range notifications {
		items[i] = response.NotificationToResponse(n)
	}

	return response.NewPaginatedResponse(items, req.Page, limit, total), nil
}

func (s *notificationService) CountUnread(ctx context.Context, actor entity.Actor) (*response.UnreadCountResponse, error) {
	if !actor.IsAuthenticated() {
		return nil, ErrAuthenticationRequired
	}

	unread, err := s.repo.CountUnread(ctx, actor.UserID)
	if err != nil {
		s.log.Error("Failed to count unread notifications", zap.Error(err), zap.String("user_id", actor.UserID.String()))
		return nil, fmt.Errorf("count unread notifications: %w", err)
	}

	return &response.UnreadCountResponse{Unread: unread}, nil
}

func (s *notificationService) MarkRead(ctx context.Context, actor entity.Actor, notificationID string) error {
	if !actor.IsAuthenticated() {
		return ErrAuthenticationRequired
	}

	id, err := uuid.Parse(notificationID)
	if err != nil {
		return invalidID("notification_id", notificationID)
	}

	// Scoped by user so nobody can mark someone else's notification.
	found, err := s.repo.MarkRead(ctx, id, actor.UserID)
	if err != nil {
		s.log.Error("Failed to mark notification read", zap.Error(err), zap.String("notification_id", notificationID))
		return fmt.Errorf("mark notification read: %w", err)
	}
	if !found {
		return ErrNotificationNotFound
	}

	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, actor entity.Actor) (int64, error) {
	if !actor.IsAuthenticated() {
		return 0, ErrAuthenticationRequired
	}

	updated, err := s.repo.MarkAllRead(ctx, actor.UserID)
	if err != nil {
		s.log.Error("Failed to mark all notifications read", zap.Error(err), zap.String("user_id", actor.UserID.String()))
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}

	s.log.Info("Notifications marked read", zap.String("user_id", actor.UserID.String()), zap.Int64("count", updated))
	return updated, nil
}

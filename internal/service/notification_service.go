package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vitneshimmanuvel/dsqaubackend/internal/domain"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/mapper"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/repository"
)

// NotificationService exposes the current user's in-app notifications
type NotificationService struct {
	notificationRepo *repository.NotificationRepository
	logger           *zap.Logger
}

// NewNotificationService creates a new NotificationService instance
func NewNotificationService(
	notificationRepo *repository.NotificationRepository,
	logger *zap.Logger,
) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

// GetForCurrentUser returns notifications for the current user with pagination
func (s *NotificationService) GetForCurrentUser(
	ctx context.Context,
	page int,
	pageSize int,
	unreadOnly bool,
	category string,
) (*domain.PaginatedResponse, error) {
	uc, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	page, pageSize = repository.NormalizePage(page, pageSize)
	notifications, total, err := s.notificationRepo.ListByUser(ctx, uc.UserID, page, pageSize, unreadOnly, category)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	dtos := make([]domain.NotificationDTO, len(notifications))
	for i := range notifications {
		dtos[i] = mapper.ToNotificationDTO(&notifications[i])
	}
	return paginated(dtos, total, page, pageSize), nil
}

// MarkAsRead marks one of the current user's notifications as read
func (s *NotificationService) MarkAsRead(ctx context.Context, id uuid.UUID) error {
	uc, err := currentUser(ctx)
	if err != nil {
		return err
	}
	if err := s.notificationRepo.MarkAsRead(ctx, id, uc.UserID); err != nil {
		return err
	}

	s.logger.Debug("notification marked as read",
		zap.String("notificationID", id.String()),
		zap.String("userID", uc.UserID.String()),
	)
	return nil
}

// MarkAllAsReadForUser marks all notifications for the current user as read
func (s *NotificationService) MarkAllAsReadForUser(ctx context.Context) error {
	uc, err := currentUser(ctx)
	if err != nil {
		return err
	}
	if err := s.notificationRepo.MarkAllAsRead(ctx, uc.UserID); err != nil {
		return fmt.Errorf("failed to mark all notifications as read: %w", err)
	}

	s.logger.Info("all notifications marked as read",
		zap.String("userID", uc.UserID.String()),
	)
	return nil
}

// GetUnreadCount returns the count of unread notifications for the current user
func (s *NotificationService) GetUnreadCount(ctx context.Context) (*domain.UnreadCountDTO, error) {
	uc, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	count, err := s.notificationRepo.CountUnread(ctx, uc.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return &domain.UnreadCountDTO{Count: count}, nil
}

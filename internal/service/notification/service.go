package notification

import (
	"context"
	"errors"
	"fmt"

	"human-connection/internal/domain"
	"human-connection/internal/metrics"
	"human-connection/internal/repository"
)

var (
	ErrReasonNotAllowed = errors.New("Notification reason is not allowed!")
	ErrReasonMismatch   = errors.New("Notification does not fit the reason!")
)

type Service interface {
	// Notify writes one notification per recipient for the content identified by
	// kind and id. Recipients who are blocked in the relevant direction are skipped
	// by the store.
	Notify(ctx context.Context, kind domain.EntityKind, id string, recipientIDs []string, reason domain.NotificationReason) error

	List(ctx context.Context, userID string, unreadOnly bool, params domain.PaginationParams) (domain.PaginatedResponse[domain.Notification], error)
	MarkAsRead(ctx context.Context, userID string, input domain.MarkAsReadInput) (*domain.Notification, error)
	MarkAllAsRead(ctx context.Context, userID string) error
	GetUnreadCount(ctx context.Context, userID string) (int64, error)
}

type service struct {
	notifRepo repository.NotificationRepository
	metrics   *metrics.Metrics
}

func NewService(notifRepo repository.NotificationRepository, m *metrics.Metrics) Service {
	return &service{
		notifRepo: notifRepo,
		metrics:   m,
	}
}

// Notify is a no-op for an empty recipient list, whatever the reason.
func (s *service) Notify(ctx context.Context, kind domain.EntityKind, id string, recipientIDs []string, reason domain.NotificationReason) error {
	if len(recipientIDs) == 0 {
		return nil
	}
	if !reason.IsValid() {
		return ErrReasonNotAllowed
	}
	if !reason.Fits(kind) {
		return ErrReasonMismatch
	}

	written, err := s.notifRepo.Notify(ctx, kind, id, recipientIDs, reason)
	if err != nil {
		return fmt.Errorf("failed to write notifications: %w", err)
	}
	s.metrics.NotificationsWritten(string(reason), written)
	return nil
}

func (s *service) List(ctx context.Context, userID string, unreadOnly bool, params domain.PaginationParams) (domain.PaginatedResponse[domain.Notification], error) {
	notifications, total, err := s.notifRepo.ListByUser(ctx, userID, unreadOnly, params)
	if err != nil {
		return domain.PaginatedResponse[domain.Notification]{}, err
	}

	return domain.NewPaginatedResponse(notifications, params.Page, params.PageSize, total), nil
}

func (s *service) MarkAsRead(ctx context.Context, userID string, input domain.MarkAsReadInput) (*domain.Notification, error) {
	if !input.Reason.IsValid() {
		return nil, ErrReasonNotAllowed
	}
	return s.notifRepo.MarkAsRead(ctx, userID, input.SourceID, input.Reason)
}

func (s *service) MarkAllAsRead(ctx context.Context, userID string) error {
	return s.notifRepo.MarkAllAsRead(ctx, userID)
}

func (s *service) GetUnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.notifRepo.CountUnread(ctx, userID)
}

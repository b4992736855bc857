package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"human-connection/internal/domain"
)

type NotificationRepository struct {
	mock.Mock
}

func (m *NotificationRepository) Notify(ctx context.Context, kind domain.EntityKind, sourceID string, userIDs []string, reason domain.NotificationReason) (int64, error) {
	args := m.Called(ctx, kind, sourceID, userIDs, reason)
	return args.Get(0).(int64), args.Error(1)
}

func (m *NotificationRepository) ListByUser(ctx context.Context, userID string, unreadOnly bool, params domain.PaginationParams) ([]domain.Notification, int64, error) {
	args := m.Called(ctx, userID, unreadOnly, params)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]domain.Notification), args.Get(1).(int64), args.Error(2)
}

func (m *NotificationRepository) MarkAsRead(ctx context.Context, userID, sourceID string, reason domain.NotificationReason) (*domain.Notification, error) {
	args := m.Called(ctx, userID, sourceID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Notification), args.Error(1)
}

func (m *NotificationRepository) MarkAllAsRead(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *NotificationRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

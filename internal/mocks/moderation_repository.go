package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"human-connection/internal/domain"
)

type ModerationRepository struct {
	mock.Mock
}

func (m *ModerationRepository) Report(ctx context.Context, report *domain.Report) (*domain.Report, error) {
	args := m.Called(ctx, report)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Report), args.Error(1)
}

func (m *ModerationRepository) Disable(ctx context.Context, moderatorID string, target domain.ModerationTarget) (bool, error) {
	args := m.Called(ctx, moderatorID, target)
	return args.Bool(0), args.Error(1)
}

func (m *ModerationRepository) Release(ctx context.Context, target domain.ModerationTarget) (bool, error) {
	args := m.Called(ctx, target)
	return args.Bool(0), args.Error(1)
}

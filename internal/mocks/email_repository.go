package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"human-connection/internal/domain"
)

type EmailRepository struct {
	mock.Mock
}

func (m *EmailRepository) EmailTaken(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *EmailRepository) CreateRequest(ctx context.Context, req *domain.EmailAddress) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *EmailRepository) Verify(ctx context.Context, userID, email, nonce string) (*domain.EmailAddress, error) {
	args := m.Called(ctx, userID, email, nonce)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EmailAddress), args.Error(1)
}

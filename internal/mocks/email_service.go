package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type EmailService struct {
	mock.Mock
}

func (m *EmailService) SendSignupEmail(ctx context.Context, toEmail, name string) error {
	args := m.Called(ctx, toEmail, name)
	return args.Error(0)
}

func (m *EmailService) SendEmailVerification(ctx context.Context, toEmail, name, nonce string) error {
	args := m.Called(ctx, toEmail, name, nonce)
	return args.Error(0)
}

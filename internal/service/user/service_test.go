package user_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"human-connection/internal/domain"
	"human-connection/internal/mocks"
	"human-connection/internal/service/user"
)

func newService() (user.Service, *mocks.UserRepository, *mocks.EmailRepository, *mocks.EmailService) {
	userRepo := new(mocks.UserRepository)
	emailRepo := new(mocks.EmailRepository)
	emailSvc := new(mocks.EmailService)
	return user.NewService(userRepo, emailRepo, emailSvc, zap.NewNop()), userRepo, emailRepo, emailSvc
}

func TestUserService_Block(t *testing.T) {
	ctx := context.Background()
	viewer := domain.Viewer{ID: "u1", Role: domain.RoleUser}

	t.Run("Block Yourself", func(t *testing.T) {
		svc, userRepo, _, _ := newService()

		_, err := svc.Block(ctx, viewer, "u1")

		assert.ErrorIs(t, err, user.ErrBlockYourself)
		userRepo.AssertNotCalled(t, "Block", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Unknown User", func(t *testing.T) {
		svc, userRepo, _, _ := newService()
		userRepo.On("GetByID", ctx, "ghost").Return(nil, nil).Once()

		_, err := svc.Block(ctx, viewer, "ghost")

		assert.ErrorIs(t, err, user.ErrUserNotFound)
	})

	t.Run("Success Returns Blocked User", func(t *testing.T) {
		svc, userRepo, _, _ := newService()
		target := &domain.User{ID: "u2", Name: "Peter"}
		userRepo.On("GetByID", ctx, "u2").Return(target, nil).Once()
		userRepo.On("Block", ctx, "u1", "u2").Return(nil).Once()

		blocked, err := svc.Block(ctx, viewer, "u2")

		require.NoError(t, err)
		assert.Equal(t, "u2", blocked.ID)
		userRepo.AssertExpectations(t)
	})

	t.Run("Unblock", func(t *testing.T) {
		svc, userRepo, _, _ := newService()
		userRepo.On("GetByID", ctx, "u2").Return(&domain.User{ID: "u2"}, nil).Once()
		userRepo.On("Unblock", ctx, "u1", "u2").Return(nil).Once()

		unblocked, err := svc.Unblock(ctx, viewer, "u2")

		require.NoError(t, err)
		assert.Equal(t, "u2", unblocked.ID)
		userRepo.AssertExpectations(t)
	})
}

func TestUserService_AddEmailAddress(t *testing.T) {
	ctx := context.Background()
	viewer := domain.Viewer{ID: "u1"}

	t.Run("Taken Address Gets No Nonce", func(t *testing.T) {
		svc, _, emailRepo, emailSvc := newService()
		emailRepo.On("EmailTaken", ctx, "taken@example.org").Return(true, nil).Once()

		addr, err := svc.AddEmailAddress(ctx, viewer, domain.AddEmailAddressInput{Email: " Taken@Example.org "})

		require.NoError(t, err)
		assert.Equal(t, "taken@example.org", addr.Email)
		assert.Empty(t, addr.Nonce)
		emailRepo.AssertNotCalled(t, "CreateRequest", mock.Anything, mock.Anything)
		emailSvc.AssertNotCalled(t, "SendEmailVerification", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("New Address Stores Nonce", func(t *testing.T) {
		svc, userRepo, emailRepo, emailSvc := newService()
		emailRepo.On("EmailTaken", ctx, "new@example.org").Return(false, nil).Once()
		emailRepo.On("CreateRequest", ctx, mock.MatchedBy(func(req *domain.EmailAddress) bool {
			return req.Email == "new@example.org" && req.UserID == "u1" && len(req.Nonce) == 6
		})).Return(nil).Once()
		userRepo.On("GetByID", ctx, "u1").Return(&domain.User{ID: "u1", Name: "Jenny"}, nil).Once()
		emailSvc.On("SendEmailVerification", mock.Anything, "new@example.org", "Jenny", mock.AnythingOfType("string")).Return(nil).Maybe()

		addr, err := svc.AddEmailAddress(ctx, viewer, domain.AddEmailAddressInput{Email: "new@example.org"})

		require.NoError(t, err)
		assert.Len(t, addr.Nonce, 6)
		for _, r := range addr.Nonce {
			assert.True(t, r >= '0' && r <= '9')
		}
		emailRepo.AssertExpectations(t)
	})
}

func TestUserService_VerifyEmailAddress(t *testing.T) {
	ctx := context.Background()
	viewer := domain.Viewer{ID: "u1"}
	input := domain.VerifyEmailAddressInput{Email: "New@example.org", Nonce: "123456"}

	t.Run("Wrong Nonce", func(t *testing.T) {
		svc, _, emailRepo, _ := newService()
		emailRepo.On("Verify", ctx, "u1", "new@example.org", "123456").Return(nil, nil).Once()

		_, err := svc.VerifyEmailAddress(ctx, viewer, input)

		assert.ErrorIs(t, err, user.ErrInvalidNonce)
		assert.EqualError(t, err, "Invalid nonce or no email address found.")
	})

	t.Run("Address Claimed Meanwhile", func(t *testing.T) {
		svc, _, emailRepo, _ := newService()
		emailRepo.On("Verify", ctx, "u1", "new@example.org", "123456").Return(nil, domain.ErrEmailExists).Once()

		_, err := svc.VerifyEmailAddress(ctx, viewer, input)

		assert.ErrorIs(t, err, user.ErrEmailExists)
	})

	t.Run("Store Error", func(t *testing.T) {
		svc, _, emailRepo, _ := newService()
		dbErr := errors.New("timeout")
		emailRepo.On("Verify", ctx, "u1", "new@example.org", "123456").Return(nil, dbErr).Once()

		_, err := svc.VerifyEmailAddress(ctx, viewer, input)

		assert.ErrorIs(t, err, dbErr)
	})

	t.Run("Success", func(t *testing.T) {
		svc, _, emailRepo, _ := newService()
		emailRepo.On("Verify", ctx, "u1", "new@example.org", "123456").Return(&domain.EmailAddress{Email: "new@example.org"}, nil).Once()

		addr, err := svc.VerifyEmailAddress(ctx, viewer, input)

		require.NoError(t, err)
		assert.Equal(t, "new@example.org", addr.Email)
	})
}

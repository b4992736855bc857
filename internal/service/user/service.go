package user

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"go.uber.org/zap"

	"human-connection/internal/domain"
	"human-connection/internal/repository"
	"human-connection/internal/service/email"
)

const nonceLength = 6

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrBlockYourself = errors.New("you cannot block yourself")
	ErrEmailExists   = errors.New("A user account with this email already exists.")
	ErrInvalidNonce  = errors.New("Invalid nonce or no email address found.")
)

type Service interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetBySlug(ctx context.Context, slug string) (*domain.User, error)

	Block(ctx context.Context, viewer domain.Viewer, userID string) (*domain.User, error)
	Unblock(ctx context.Context, viewer domain.Viewer, userID string) (*domain.User, error)
	BlockedUsers(ctx context.Context, viewer domain.Viewer) ([]string, error)

	// AddEmailAddress sends a nonce to a new address. Addresses that already
	// belong to an account are answered without a nonce.
	AddEmailAddress(ctx context.Context, viewer domain.Viewer, input domain.AddEmailAddressInput) (*domain.EmailAddress, error)
	VerifyEmailAddress(ctx context.Context, viewer domain.Viewer, input domain.VerifyEmailAddressInput) (*domain.EmailAddress, error)
}

type service struct {
	userRepo  repository.UserRepository
	emailRepo repository.EmailRepository
	emailSvc  email.Service
	logger    *zap.Logger
}

func NewService(userRepo repository.UserRepository, emailRepo repository.EmailRepository, emailSvc email.Service, logger *zap.Logger) Service {
	return &service{
		userRepo:  userRepo,
		emailRepo: emailRepo,
		emailSvc:  emailSvc,
		logger:    logger,
	}
}

func (s *service) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *service) GetBySlug(ctx context.Context, slug string) (*domain.User, error) {
	user, err := s.userRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *service) Block(ctx context.Context, viewer domain.Viewer, userID string) (*domain.User, error) {
	if viewer.ID == userID {
		return nil, ErrBlockYourself
	}
	target, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Block(ctx, viewer.ID, userID); err != nil {
		return nil, fmt.Errorf("failed to block user: %w", err)
	}
	return target, nil
}

func (s *service) Unblock(ctx context.Context, viewer domain.Viewer, userID string) (*domain.User, error) {
	if viewer.ID == userID {
		return nil, ErrBlockYourself
	}
	target, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Unblock(ctx, viewer.ID, userID); err != nil {
		return nil, fmt.Errorf("failed to unblock user: %w", err)
	}
	return target, nil
}

func (s *service) BlockedUsers(ctx context.Context, viewer domain.Viewer) ([]string, error) {
	return s.userRepo.BlockedUserIDs(ctx, viewer.ID)
}

func (s *service) AddEmailAddress(ctx context.Context, viewer domain.Viewer, input domain.AddEmailAddressInput) (*domain.EmailAddress, error) {
	address := strings.ToLower(strings.TrimSpace(input.Email))

	taken, err := s.emailRepo.EmailTaken(ctx, address)
	if err != nil {
		return nil, err
	}
	if taken {
		return &domain.EmailAddress{Email: address}, nil
	}

	nonce, err := generateNonce()
	if err != nil {
		return nil, err
	}

	req := &domain.EmailAddress{Email: address, UserID: viewer.ID, Nonce: nonce}
	if err := s.emailRepo.CreateRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to create email address request: %w", err)
	}

	user, err := s.GetByID(ctx, viewer.ID)
	if err != nil {
		return nil, err
	}
	go func() {
		if err := s.emailSvc.SendEmailVerification(context.Background(), address, user.Name, nonce); err != nil {
			s.logger.Warn("failed to send email verification", zap.String("user_id", viewer.ID), zap.Error(err))
		}
	}()

	return req, nil
}

func (s *service) VerifyEmailAddress(ctx context.Context, viewer domain.Viewer, input domain.VerifyEmailAddressInput) (*domain.EmailAddress, error) {
	verified, err := s.emailRepo.Verify(ctx, viewer.ID, strings.ToLower(strings.TrimSpace(input.Email)), input.Nonce)
	if errors.Is(err, domain.ErrEmailExists) {
		return nil, ErrEmailExists
	}
	if err != nil {
		return nil, fmt.Errorf("failed to verify email address: %w", err)
	}
	if verified == nil {
		return nil, ErrInvalidNonce
	}
	return verified, nil
}

func generateNonce() (string, error) {
	var b strings.Builder
	for i := 0; i < nonceLength; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + n.Int64()))
	}
	return b.String(), nil
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"human-connection/internal/config"
	"human-connection/internal/domain"
	"human-connection/internal/pkg/slug"
	"human-connection/internal/repository"
	"human-connection/internal/service/email"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailExists        = errors.New("email already registered")
	ErrSlugExists         = errors.New("User with this slug already exists!")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUserDisabled       = errors.New("user account is disabled")
)

type Service interface {
	Signup(ctx context.Context, input domain.SignupInput) (*domain.User, *domain.Token, error)
	Login(ctx context.Context, input domain.LoginInput) (*domain.User, *domain.Token, error)
	ValidateAccessToken(token string) (*Claims, error)
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
}

type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type service struct {
	userRepo     repository.UserRepository
	emailService email.Service
	cfg          *config.Config
	logger       *zap.Logger
}

func NewService(userRepo repository.UserRepository, emailService email.Service, cfg *config.Config, logger *zap.Logger) Service {
	return &service{
		userRepo:     userRepo,
		emailService: emailService,
		cfg:          cfg,
		logger:       logger,
	}
}

func (s *service) Signup(ctx context.Context, input domain.SignupInput) (*domain.User, *domain.Token, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	existing, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, nil, err
	}
	if existing != nil {
		return nil, nil, ErrEmailExists
	}

	userSlug := ""
	if input.Slug != nil {
		userSlug = *input.Slug
	}
	if userSlug == "" {
		userSlug, err = slug.Unique(ctx, input.Name, s.userRepo.SlugExists)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to generate slug: %w", err)
		}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, err
	}

	user := &domain.User{
		ID:           uuid.New().String(),
		Slug:         userSlug,
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		Role:         string(domain.RoleUser),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		switch {
		case errors.Is(err, domain.ErrSlugExists):
			return nil, nil, ErrSlugExists
		case errors.Is(err, domain.ErrEmailExists):
			return nil, nil, ErrEmailExists
		}
		return nil, nil, err
	}

	go func() {
		if err := s.emailService.SendSignupEmail(context.Background(), user.Email, user.Name); err != nil {
			s.logger.Warn("failed to send signup email", zap.String("user_id", user.ID), zap.Error(err))
		}
	}()

	token, err := s.generateToken(user)
	if err != nil {
		return nil, nil, err
	}
	return user, token, nil
}

func (s *service) Login(ctx context.Context, input domain.LoginInput) (*domain.User, *domain.Token, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		return nil, nil, err
	}
	if user == nil || user.Deleted {
		return nil, nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}
	if user.Disabled {
		return nil, nil, ErrUserDisabled
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, nil, err
	}
	return user, token, nil
}

func (s *service) ValidateAccessToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func (s *service) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *service) generateToken(user *domain.User) (*domain.Token, error) {
	now := time.Now()
	claims := &Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   user.ID,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, err
	}

	return &domain.Token{
		AccessToken: signed,
		ExpiresIn:   int64(s.cfg.JWTExpiry.Seconds()),
	}, nil
}

package moderation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"human-connection/internal/domain"
	"human-connection/internal/repository"
)

var (
	ErrResourceNotFound = errors.New("resource not found")
	ErrUnknownKind      = errors.New("resource kind must be post, comment or user")
	ErrReportYourself   = errors.New("you cannot report yourself")
)

type Service interface {
	Report(ctx context.Context, viewer domain.Viewer, input domain.ReportInput) (*domain.Report, error)
	Disable(ctx context.Context, viewer domain.Viewer, target domain.ModerationTarget) error
	Release(ctx context.Context, viewer domain.Viewer, target domain.ModerationTarget) error
}

type service struct {
	moderationRepo repository.ModerationRepository
	logger         *zap.Logger
}

func NewService(moderationRepo repository.ModerationRepository, logger *zap.Logger) Service {
	return &service{
		moderationRepo: moderationRepo,
		logger:         logger,
	}
}

// ParseKind maps the path segments used by the moderation routes to an entity kind.
func ParseKind(s string) (domain.EntityKind, error) {
	switch strings.TrimSuffix(strings.ToLower(s), "s") {
	case "post":
		return domain.KindPost, nil
	case "comment":
		return domain.KindComment, nil
	case "user":
		return domain.KindUser, nil
	}
	return "", ErrUnknownKind
}

func (s *service) Report(ctx context.Context, viewer domain.Viewer, input domain.ReportInput) (*domain.Report, error) {
	if input.ResourceID == viewer.ID {
		return nil, ErrReportYourself
	}

	report, err := s.moderationRepo.Report(ctx, &domain.Report{
		ReporterID:        viewer.ID,
		ResourceID:        input.ResourceID,
		ReasonCategory:    input.ReasonCategory,
		ReasonDescription: strings.TrimSpace(input.ReasonDescription),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to file report: %w", err)
	}
	if report == nil {
		return nil, ErrResourceNotFound
	}
	return report, nil
}

func (s *service) Disable(ctx context.Context, viewer domain.Viewer, target domain.ModerationTarget) error {
	if !target.Kind.IsValid() {
		return ErrUnknownKind
	}
	ok, err := s.moderationRepo.Disable(ctx, viewer.ID, target)
	if err != nil {
		return fmt.Errorf("failed to disable %s: %w", strings.ToLower(string(target.Kind)), err)
	}
	if !ok {
		return ErrResourceNotFound
	}
	s.logger.Info("resource disabled",
		zap.String("moderator_id", viewer.ID),
		zap.String("kind", string(target.Kind)),
		zap.String("resource_id", target.ID),
	)
	return nil
}

func (s *service) Release(ctx context.Context, viewer domain.Viewer, target domain.ModerationTarget) error {
	if !target.Kind.IsValid() {
		return ErrUnknownKind
	}
	ok, err := s.moderationRepo.Release(ctx, target)
	if err != nil {
		return fmt.Errorf("failed to release %s: %w", strings.ToLower(string(target.Kind)), err)
	}
	if !ok {
		return ErrResourceNotFound
	}
	s.logger.Info("resource released",
		zap.String("moderator_id", viewer.ID),
		zap.String("kind", string(target.Kind)),
		zap.String("resource_id", target.ID),
	)
	return nil
}

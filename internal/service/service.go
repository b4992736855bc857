package service

import (
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"human-connection/internal/config"
	"human-connection/internal/events"
	"human-connection/internal/metrics"
	"human-connection/internal/pkg/i18n"
	"human-connection/internal/repository"
	"human-connection/internal/service/auth"
	"human-connection/internal/service/comment"
	"human-connection/internal/service/email"
	"human-connection/internal/service/federation"
	"human-connection/internal/service/media"
	"human-connection/internal/service/moderation"
	"human-connection/internal/service/notification"
	"human-connection/internal/service/post"
	"human-connection/internal/service/resolver"
	"human-connection/internal/service/user"
)

type Services struct {
	Auth         auth.Service
	User         user.Service
	Post         post.Service
	Comment      comment.Service
	Notification notification.Service
	Moderation   moderation.Service
	Federation   federation.Service
	Media        media.Service
	Email        email.Service
}

func NewServices(
	repos *repository.Repositories,
	redis *redis.Client,
	minioClient *minio.Client,
	bus events.Bus,
	m *metrics.Metrics,
	cfg *config.Config,
	logger *zap.Logger,
) (*Services, error) {
	catalog, err := i18n.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load translations: %w", err)
	}
	if !catalog.HasLocale(cfg.EmailLocale) {
		logger.Warn("email locale not bundled, falling back", zap.String("locale", cfg.EmailLocale), zap.String("fallback", i18n.DefaultLocale))
	}

	emailService := email.NewService(cfg, catalog, logger.Named("email"))
	notificationService := notification.NewService(repos.Notification, m)
	mutations := resolver.NewMutations(repos.Post.SlugExists, notificationService, repos.Comment, logger.Named("resolver"))

	var mediaService media.Service
	if minioClient != nil {
		mediaService = media.NewService(minioClient, cfg, logger.Named("media"))
	}

	federationService, err := federation.NewService(repos.User, cfg.ClientURI)
	if err != nil {
		return nil, err
	}

	return &Services{
		Auth:         auth.NewService(repos.User, emailService, cfg, logger.Named("auth")),
		User:         user.NewService(repos.User, repos.Email, emailService, logger.Named("user")),
		Post:         post.NewService(repos.Post, repos.User, mutations, bus, redis, mediaService, m, logger.Named("post")),
		Comment:      comment.NewService(repos.Comment, mutations),
		Notification: notificationService,
		Moderation:   moderation.NewService(repos.Moderation, logger.Named("moderation")),
		Federation:   federationService,
		Media:        mediaService,
		Email:        emailService,
	}, nil
}

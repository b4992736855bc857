package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"

	"human-connection/internal/config"
)

const MaxImageSize = 5 << 20

var (
	ErrUnsupportedImage = errors.New("unsupported image type")
	ErrImageTooLarge    = errors.New("image exceeds 5MB")
)

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type Service interface {
	// UploadPostImage stores a post image and returns its public URL.
	UploadPostImage(ctx context.Context, userID string, fileSize int64, mimeType string, reader io.Reader) (string, error)
	// RemoveImage deletes an image previously returned by UploadPostImage.
	// URLs that do not point into the bucket are ignored.
	RemoveImage(ctx context.Context, imageURL string) error
}

type service struct {
	minioClient *minio.Client
	cfg         *config.Config
	logger      *zap.Logger
}

func NewService(minioClient *minio.Client, cfg *config.Config, logger *zap.Logger) Service {
	return &service{
		minioClient: minioClient,
		cfg:         cfg,
		logger:      logger,
	}
}

func (s *service) UploadPostImage(ctx context.Context, userID string, fileSize int64, mimeType string, reader io.Reader) (string, error) {
	ext, ok := imageExtensions[mimeType]
	if !ok {
		return "", ErrUnsupportedImage
	}
	if fileSize > MaxImageSize {
		return "", ErrImageTooLarge
	}

	storagePath := fmt.Sprintf("posts/%s/%s%s", time.Now().Format("2006/01"), uuid.New().String(), ext)

	_, err := s.minioClient.PutObject(ctx, s.cfg.MinIOBucket, storagePath, reader, fileSize, minio.PutObjectOptions{
		ContentType:  mimeType,
		UserMetadata: map[string]string{"uploaded-by": userID},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to MinIO: %w", err)
	}

	return s.publicURL(storagePath), nil
}

func (s *service) RemoveImage(ctx context.Context, imageURL string) error {
	storagePath, ok := s.storagePath(imageURL)
	if !ok {
		return nil
	}
	if err := s.minioClient.RemoveObject(ctx, s.cfg.MinIOBucket, storagePath, minio.RemoveObjectOptions{}); err != nil {
		s.logger.Warn("failed to remove image", zap.String("path", storagePath), zap.Error(err))
		return err
	}
	return nil
}

func (s *service) publicBase() string {
	scheme := "http"
	if s.cfg.MinIOPublicUseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/", scheme, s.cfg.MinIOPublicEndpoint, s.cfg.MinIOBucket)
}

func (s *service) publicURL(storagePath string) string {
	return s.publicBase() + url.PathEscape(storagePath)
}

func (s *service) storagePath(imageURL string) (string, bool) {
	escaped, ok := strings.CutPrefix(imageURL, s.publicBase())
	if !ok || escaped == "" {
		return "", false
	}
	unescaped, err := url.PathUnescape(escaped)
	if err != nil {
		return "", false
	}
	return path.Clean(unescaped), true
}

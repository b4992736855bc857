package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"human-connection/internal/domain"
	"human-connection/internal/repository"
)

type PostRepository struct {
	mock.Mock
}

func (m *PostRepository) Create(ctx context.Context, post *domain.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *PostRepository) Update(ctx context.Context, post *domain.Post, categoryIDs []string) (*domain.Post, error) {
	args := m.Called(ctx, post, categoryIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Post), args.Error(1)
}

func (m *PostRepository) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Post), args.Error(1)
}

func (m *PostRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	args := m.Called(ctx, slug)
	return args.Bool(0), args.Error(1)
}

func (m *PostRepository) SoftDelete(ctx context.Context, id string) (*domain.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Post), args.Error(1)
}

func (m *PostRepository) ClearPins(ctx context.Context) ([]domain.Post, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Post), args.Error(1)
}

func (m *PostRepository) Pin(ctx context.Context, userID, postID string) (*domain.Post, error) {
	args := m.Called(ctx, userID, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Post), args.Error(1)
}

func (m *PostRepository) Unpin(ctx context.Context, postID string) (*domain.Post, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Post), args.Error(1)
}

func (m *PostRepository) AddEmotion(ctx context.Context, userID, postID string, emotion domain.Emotion) (*domain.Emoted, error) {
	args := m.Called(ctx, userID, postID, emotion)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Emoted), args.Error(1)
}

func (m *PostRepository) RemoveEmotion(ctx context.Context, userID, postID string, emotion domain.Emotion) (*domain.Emoted, error) {
	args := m.Called(ctx, userID, postID, emotion)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Emoted), args.Error(1)
}

func (m *PostRepository) CountEmotions(ctx context.Context, postID string, emotion domain.Emotion) (int64, error) {
	args := m.Called(ctx, postID, emotion)
	return args.Get(0).(int64), args.Error(1)
}

func (m *PostRepository) EmotionsByUser(ctx context.Context, userID, postID string) ([]domain.Emotion, error) {
	args := m.Called(ctx, userID, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Emotion), args.Error(1)
}

func (m *PostRepository) List(ctx context.Context, q repository.PostQuery, params domain.PaginationParams) ([]domain.Post, int64, error) {
	args := m.Called(ctx, q, params)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]domain.Post), args.Get(1).(int64), args.Error(2)
}

func (m *PostRepository) RelatedContributions(ctx context.Context, postID string) ([]domain.Post, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Post), args.Error(1)
}

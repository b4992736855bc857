package post

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"human-connection/internal/domain"
	"human-connection/internal/events"
	"human-connection/internal/metrics"
	"human-connection/internal/pkg/htmltext"
	"human-connection/internal/repository"
	"human-connection/internal/service/media"
	"human-connection/internal/service/resolver"
)

const emotionsCacheTTL = 10 * time.Minute

var (
	ErrPostNotFound   = errors.New("post not found")
	ErrNotAuthor      = errors.New("only the author can change this post")
	ErrSlugExists     = errors.New("Post with this slug already exists!")
	ErrInvalidEmotion = errors.New("invalid emotion")
	ErrEmptyQuery     = errors.New("search query is empty")
)

type Service interface {
	Create(ctx context.Context, viewer domain.Viewer, input domain.CreatePostInput) (*domain.Post, error)
	Update(ctx context.Context, viewer domain.Viewer, input domain.UpdatePostInput) (*domain.Post, error)
	Delete(ctx context.Context, viewer domain.Viewer, id string) (*domain.Post, error)
	GetByID(ctx context.Context, viewer domain.Viewer, id string) (*domain.Post, error)

	// List backs the Post query: blocked authors are hidden and the pinned post
	// is always part of the result.
	List(ctx context.Context, viewer domain.Viewer, filter domain.PostFilter, params domain.PaginationParams) (domain.PaginatedResponse[domain.Post], error)
	Search(ctx context.Context, viewer domain.Viewer, query string, params domain.PaginationParams) (domain.PaginatedResponse[domain.Post], error)
	ProfilePosts(ctx context.Context, viewer domain.Viewer, authorID string, params domain.PaginationParams) (domain.PaginatedResponse[domain.Post], error)
	RelatedContributions(ctx context.Context, viewer domain.Viewer, postID string) ([]domain.Post, error)

	Pin(ctx context.Context, viewer domain.Viewer, id string) (*domain.Post, error)
	Unpin(ctx context.Context, id string) (*domain.Post, error)

	AddEmotion(ctx context.Context, viewer domain.Viewer, postID string, emotion domain.Emotion) (*domain.Emoted, error)
	RemoveEmotion(ctx context.Context, viewer domain.Viewer, postID string, emotion domain.Emotion) (*domain.Emoted, error)
	EmotionsCount(ctx context.Context, postID string, emotion domain.Emotion) (int64, error)
	EmotionsByViewer(ctx context.Context, viewer domain.Viewer, postID string) ([]domain.Emotion, error)
}

type service struct {
	postRepo  repository.PostRepository
	userRepo  repository.UserRepository
	mutations *resolver.Mutations
	bus       events.Bus
	redis     *redis.Client
	mediaSvc  media.Service
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

func NewService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	mutations *resolver.Mutations,
	bus events.Bus,
	redis *redis.Client,
	mediaSvc media.Service,
	m *metrics.Metrics,
	logger *zap.Logger,
) Service {
	return &service{
		postRepo:  postRepo,
		userRepo:  userRepo,
		mutations: mutations,
		bus:       bus,
		redis:     redis,
		mediaSvc:  mediaSvc,
		metrics:   m,
		logger:    logger,
	}
}

func (s *service) Create(ctx context.Context, viewer domain.Viewer, input domain.CreatePostInput) (*domain.Post, error) {
	mc := &resolver.MutationContext{
		Viewer:  viewer,
		Content: input.Content,
		Title:   input.Title,
		Slug:    input.Slug,
		Resolve: func(ctx context.Context, mc *resolver.MutationContext) (resolver.Entity, error) {
			id := input.ID
			if id == "" {
				id = uuid.New().String()
			}
			post := &domain.Post{
				ID:             id,
				AuthorID:       viewer.ID,
				Slug:           *mc.Slug,
				Title:          input.Title,
				Content:        input.Content,
				ContentExcerpt: htmltext.Excerpt(input.Content),
				Image:          input.Image,
				Language:       input.Language,
				CategoryIDs:    input.CategoryIDs,
			}
			if err := s.postRepo.Create(ctx, post); err != nil {
				if errors.Is(err, domain.ErrSlugExists) {
					return nil, ErrSlugExists
				}
				return nil, fmt.Errorf("failed to create post: %w", err)
			}

			created, err := s.postRepo.GetByID(ctx, post.ID)
			if err != nil || created == nil {
				return nil, err
			}
			created.CategoryIDs = input.CategoryIDs
			return created, nil
		},
	}

	result, err := s.mutations.CreatePost.Run(ctx, mc)
	if err != nil {
		return nil, err
	}
	post, _ := result.(*domain.Post)
	if post == nil {
		return nil, ErrPostNotFound
	}

	s.publishAdded(ctx, post)
	return post, nil
}

func (s *service) publishAdded(ctx context.Context, post *domain.Post) {
	if s.bus == nil {
		return
	}
	err := s.bus.Publish(ctx, domain.PostAddedTopic, domain.PostAdded{Post: post})
	s.metrics.EventPublished(domain.PostAddedTopic, err)
	if err != nil {
		s.logger.Warn("failed to publish post_added", zap.String("post_id", post.ID), zap.Error(err))
	}
}

func (s *service) Update(ctx context.Context, viewer domain.Viewer, input domain.UpdatePostInput) (*domain.Post, error) {
	current, err := s.postRepo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if current == nil || current.Deleted {
		return nil, ErrPostNotFound
	}
	if current.AuthorID != viewer.ID {
		return nil, ErrNotAuthor
	}

	mc := &resolver.MutationContext{
		Viewer:      viewer,
		Content:     input.Content,
		Title:       input.Title,
		Slug:        input.Slug,
		CurrentSlug: current.Slug,
		Resolve: func(ctx context.Context, mc *resolver.MutationContext) (resolver.Entity, error) {
			post := &domain.Post{
				ID:             current.ID,
				AuthorID:       current.AuthorID,
				Slug:           *mc.Slug,
				Title:          input.Title,
				Content:        input.Content,
				ContentExcerpt: htmltext.Excerpt(input.Content),
				Image:          input.Image,
				Language:       input.Language,
			}
			updated, err := s.postRepo.Update(ctx, post, input.CategoryIDs)
			if errors.Is(err, domain.ErrSlugExists) {
				return nil, ErrSlugExists
			}
			if err != nil {
				return nil, fmt.Errorf("failed to update post: %w", err)
			}
			if updated == nil {
				return nil, nil
			}
			return updated, nil
		},
	}

	result, err := s.mutations.UpdatePost.Run(ctx, mc)
	if err != nil {
		return nil, err
	}
	post, _ := result.(*domain.Post)
	if post == nil {
		return nil, ErrPostNotFound
	}

	if input.Image != nil && current.Image != nil && *current.Image != *input.Image {
		s.removeImage(ctx, *current.Image)
	}
	return post, nil
}

func (s *service) Delete(ctx context.Context, viewer domain.Viewer, id string) (*domain.Post, error) {
	current, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil || current.Deleted {
		return nil, ErrPostNotFound
	}
	if current.AuthorID != viewer.ID {
		return nil, ErrNotAuthor
	}

	deleted, err := s.postRepo.SoftDelete(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to delete post: %w", err)
	}
	if deleted == nil {
		return nil, ErrPostNotFound
	}

	if current.Image != nil {
		s.removeImage(ctx, *current.Image)
	}
	s.invalidateEmotions(ctx, id, "*")
	return deleted, nil
}

func (s *service) removeImage(ctx context.Context, imageURL string) {
	if s.mediaSvc == nil {
		return
	}
	_ = s.mediaSvc.RemoveImage(ctx, imageURL)
}

func (s *service) GetByID(ctx context.Context, viewer domain.Viewer, id string) (*domain.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil || post.Deleted || (post.Disabled && !viewer.CanSeeDisabled()) {
		return nil, ErrPostNotFound
	}

	hidden, err := s.hiddenAuthors(ctx, viewer)
	if err != nil {
		return nil, err
	}
	for _, authorID := range hidden {
		if authorID == post.AuthorID && !post.Pinned {
			return nil, ErrPostNotFound
		}
	}
	return post, nil
}

func (s *service) List(ctx context.Context, viewer domain.Viewer, filter domain.PostFilter, params domain.PaginationParams) (domain.PaginatedResponse[domain.Post], error) {
	filter, err := s.filterForBlockedUsers(ctx, viewer, filter)
	if err != nil {
		return domain.PaginatedResponse[domain.Post]{}, err
	}
	return s.list(ctx, viewer, repository.PostQuery{Filter: domain.WithPinned(filter)}, params)
}

func (s *service) Search(ctx context.Context, viewer domain.Viewer, query string, params domain.PaginationParams) (domain.PaginatedResponse[domain.Post], error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.PaginatedResponse[domain.Post]{}, ErrEmptyQuery
	}
	filter, err := s.filterForBlockedUsers(ctx, viewer, domain.PostFilter{})
	if err != nil {
		return domain.PaginatedResponse[domain.Post]{}, err
	}
	return s.list(ctx, viewer, repository.PostQuery{Filter: filter, Search: query}, params)
}

func (s *service) ProfilePosts(ctx context.Context, viewer domain.Viewer, authorID string, params domain.PaginationParams) (domain.PaginatedResponse[domain.Post], error) {
	filter, err := s.filterForBlockedUsers(ctx, viewer, domain.PostFilter{Author: &domain.AuthorFilter{ID: &authorID}})
	if err != nil {
		return domain.PaginatedResponse[domain.Post]{}, err
	}
	return s.list(ctx, viewer, repository.PostQuery{Filter: filter}, params)
}

// RelatedContributions lists posts sharing a category with postID, minus
// authors hidden from the viewer.
func (s *service) RelatedContributions(ctx context.Context, viewer domain.Viewer, postID string) ([]domain.Post, error) {
	if _, err := s.GetByID(ctx, viewer, postID); err != nil {
		return nil, err
	}

	related, err := s.postRepo.RelatedContributions(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to load related posts: %w", err)
	}

	hidden, err := s.hiddenAuthors(ctx, viewer)
	if err != nil {
		return nil, err
	}
	if len(hidden) == 0 {
		return related, nil
	}

	skip := make(map[string]struct{}, len(hidden))
	for _, id := range hidden {
		skip[id] = struct{}{}
	}
	visible := make([]domain.Post, 0, len(related))
	for _, p := range related {
		if _, ok := skip[p.AuthorID]; !ok {
			visible = append(visible, p)
		}
	}
	return visible, nil
}

func (s *service) list(ctx context.Context, viewer domain.Viewer, q repository.PostQuery, params domain.PaginationParams) (domain.PaginatedResponse[domain.Post], error) {
	params.Validate()
	q.IncludeDisabled = viewer.CanSeeDisabled()

	posts, total, err := s.postRepo.List(ctx, q, params)
	if err != nil {
		return domain.PaginatedResponse[domain.Post]{}, err
	}
	return domain.NewPaginatedResponse(posts, params.Page, params.PageSize, total), nil
}

// filterForBlockedUsers hides posts of users the viewer blocked or is blocked by.
func (s *service) filterForBlockedUsers(ctx context.Context, viewer domain.Viewer, filter domain.PostFilter) (domain.PostFilter, error) {
	hidden, err := s.hiddenAuthors(ctx, viewer)
	if err != nil {
		return filter, err
	}
	if len(hidden) == 0 {
		return filter, nil
	}
	return domain.MergePostFilters(filter, domain.PostFilter{
		AuthorNot: &domain.AuthorFilter{IDIn: hidden},
	}), nil
}

func (s *service) hiddenAuthors(ctx context.Context, viewer domain.Viewer) ([]string, error) {
	if viewer.IsAnonymous() {
		return nil, nil
	}

	var blocked, blockedBy []string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		blocked, err = s.userRepo.BlockedUserIDs(gctx, viewer.ID)
		return err
	})
	g.Go(func() error {
		var err error
		blockedBy, err = s.userRepo.BlockedByUserIDs(gctx, viewer.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load blocked users: %w", err)
	}

	return append(blocked, blockedBy...), nil
}

func (s *service) Pin(ctx context.Context, viewer domain.Viewer, id string) (*domain.Post, error) {
	unpinned, err := s.postRepo.ClearPins(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to clear pinned posts: %w", err)
	}

	post, err := s.postRepo.Pin(ctx, viewer.ID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to pin post: %w", err)
	}
	s.metrics.Pin(post != nil)
	if post == nil {
		s.logger.Info("pin ignored", zap.String("user_id", viewer.ID), zap.String("post_id", id), zap.Int("unpinned", len(unpinned)))
		return nil, nil
	}

	s.logger.Info("post pinned", zap.String("user_id", viewer.ID), zap.String("post_id", id), zap.Int("unpinned", len(unpinned)))
	return post, nil
}

func (s *service) Unpin(ctx context.Context, id string) (*domain.Post, error) {
	post, err := s.postRepo.Unpin(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to unpin post: %w", err)
	}
	return post, nil
}

func (s *service) AddEmotion(ctx context.Context, viewer domain.Viewer, postID string, emotion domain.Emotion) (*domain.Emoted, error) {
	if !emotion.IsValid() {
		return nil, ErrInvalidEmotion
	}
	emoted, err := s.postRepo.AddEmotion(ctx, viewer.ID, postID, emotion)
	if err != nil {
		return nil, fmt.Errorf("failed to add emotion: %w", err)
	}
	if emoted == nil {
		return nil, ErrPostNotFound
	}
	s.invalidateEmotions(ctx, postID, string(emotion))
	return emoted, nil
}

func (s *service) RemoveEmotion(ctx context.Context, viewer domain.Viewer, postID string, emotion domain.Emotion) (*domain.Emoted, error) {
	if !emotion.IsValid() {
		return nil, ErrInvalidEmotion
	}
	emoted, err := s.postRepo.RemoveEmotion(ctx, viewer.ID, postID, emotion)
	if err != nil {
		return nil, fmt.Errorf("failed to remove emotion: %w", err)
	}
	if emoted == nil {
		return nil, ErrPostNotFound
	}
	s.invalidateEmotions(ctx, postID, string(emotion))
	return emoted, nil
}

func emotionsKey(postID, emotion string) string {
	return fmt.Sprintf("emotions:%s:%s", postID, emotion)
}

func (s *service) EmotionsCount(ctx context.Context, postID string, emotion domain.Emotion) (int64, error) {
	if !emotion.IsValid() {
		return 0, ErrInvalidEmotion
	}

	cacheKey := emotionsKey(postID, string(emotion))
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, cacheKey).Int64(); err == nil {
			return cached, nil
		}
	}

	count, err := s.postRepo.CountEmotions(ctx, postID, emotion)
	if err != nil {
		return 0, err
	}

	if s.redis != nil {
		_ = s.redis.Set(ctx, cacheKey, count, emotionsCacheTTL).Err()
	}
	return count, nil
}

func (s *service) EmotionsByViewer(ctx context.Context, viewer domain.Viewer, postID string) ([]domain.Emotion, error) {
	return s.postRepo.EmotionsByUser(ctx, viewer.ID, postID)
}

// invalidateEmotions drops cached counts; emotion may be "*" for all of them.
func (s *service) invalidateEmotions(ctx context.Context, postID, emotion string) {
	if s.redis == nil {
		return
	}
	if emotion != "*" {
		_ = s.redis.Del(ctx, emotionsKey(postID, emotion)).Err()
		return
	}
	keys, err := s.redis.Keys(ctx, emotionsKey(postID, "*")).Result()
	if err == nil && len(keys) > 0 {
		_ = s.redis.Del(ctx, keys...).Err()
	}
}

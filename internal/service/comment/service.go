package comment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"human-connection/internal/domain"
	"human-connection/internal/pkg/htmltext"
	"human-connection/internal/repository"
	"human-connection/internal/service/resolver"
)

var (
	ErrCommentNotFound = errors.New("comment not found")
	ErrPostNotFound    = errors.New("post not found")
	ErrNotAuthor       = errors.New("only the author can change this comment")
)

type Service interface {
	Create(ctx context.Context, viewer domain.Viewer, input domain.CreateCommentInput) (*domain.Comment, error)
	Update(ctx context.Context, viewer domain.Viewer, input domain.UpdateCommentInput) (*domain.Comment, error)
	ListByPost(ctx context.Context, viewer domain.Viewer, postID string, params domain.PaginationParams) (domain.PaginatedResponse[domain.Comment], error)
}

type service struct {
	commentRepo repository.CommentRepository
	mutations   *resolver.Mutations
}

func NewService(commentRepo repository.CommentRepository, mutations *resolver.Mutations) Service {
	return &service{
		commentRepo: commentRepo,
		mutations:   mutations,
	}
}

func (s *service) Create(ctx context.Context, viewer domain.Viewer, input domain.CreateCommentInput) (*domain.Comment, error) {
	mc := &resolver.MutationContext{
		Viewer:  viewer,
		Content: input.Content,
		Resolve: func(ctx context.Context, _ *resolver.MutationContext) (resolver.Entity, error) {
			id := input.ID
			if id == "" {
				id = uuid.New().String()
			}
			comment := &domain.Comment{
				ID:             id,
				PostID:         input.PostID,
				AuthorID:       viewer.ID,
				Content:        input.Content,
				ContentExcerpt: htmltext.Excerpt(input.Content),
			}
			if err := s.commentRepo.Create(ctx, comment); err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return nil, ErrPostNotFound
				}
				return nil, fmt.Errorf("failed to create comment: %w", err)
			}

			created, err := s.commentRepo.GetByID(ctx, comment.ID)
			if err != nil || created == nil {
				return nil, err
			}
			return created, nil
		},
	}

	result, err := s.mutations.CreateComment.Run(ctx, mc)
	if err != nil {
		return nil, err
	}
	comment, _ := result.(*domain.Comment)
	if comment == nil {
		return nil, ErrCommentNotFound
	}
	return comment, nil
}

func (s *service) Update(ctx context.Context, viewer domain.Viewer, input domain.UpdateCommentInput) (*domain.Comment, error) {
	current, err := s.commentRepo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if current == nil || current.Deleted {
		return nil, ErrCommentNotFound
	}
	if current.AuthorID != viewer.ID {
		return nil, ErrNotAuthor
	}

	mc := &resolver.MutationContext{
		Viewer:  viewer,
		Content: input.Content,
		Resolve: func(ctx context.Context, _ *resolver.MutationContext) (resolver.Entity, error) {
			updated, err := s.commentRepo.Update(ctx, &domain.Comment{
				ID:             current.ID,
				Content:        input.Content,
				ContentExcerpt: htmltext.Excerpt(input.Content),
			})
			if err != nil {
				return nil, fmt.Errorf("failed to update comment: %w", err)
			}
			if updated == nil {
				return nil, nil
			}
			return updated, nil
		},
	}

	result, err := s.mutations.UpdateComment.Run(ctx, mc)
	if err != nil {
		return nil, err
	}
	comment, _ := result.(*domain.Comment)
	if comment == nil {
		return nil, ErrCommentNotFound
	}
	return comment, nil
}

func (s *service) ListByPost(ctx context.Context, viewer domain.Viewer, postID string, params domain.PaginationParams) (domain.PaginatedResponse[domain.Comment], error) {
	params.Validate()
	comments, total, err := s.commentRepo.ListByPost(ctx, postID, viewer.CanSeeDisabled(), params)
	if err != nil {
		return domain.PaginatedResponse[domain.Comment]{}, err
	}
	return domain.NewPaginatedResponse(comments, params.Page, params.PageSize, total), nil
}

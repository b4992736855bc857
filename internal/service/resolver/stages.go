package resolver

import (
	"context"
	"fmt"

	"human-connection/internal/domain"
	"human-connection/internal/pkg/slug"
	"human-connection/internal/service/mention"
	"human-connection/internal/service/notification"
)

// PostAuthorFinder resolves the author of the post a comment belongs to.
type PostAuthorFinder interface {
	PostAuthor(ctx context.Context, commentID string) (*domain.User, error)
}

func Slugify(exists slug.Exists) Stage {
	return Stage{
		Name: "slugify",
		Run: func(ctx context.Context, mc *MutationContext) error {
			if mc.Slug != nil && *mc.Slug != "" {
				return nil
			}
			generated, err := slug.Unique(ctx, mc.Title, func(ctx context.Context, candidate string) (bool, error) {
				if candidate == mc.CurrentSlug {
					return false, nil
				}
				return exists(ctx, candidate)
			})
			if err != nil {
				return fmt.Errorf("failed to generate slug: %w", err)
			}
			mc.Slug = &generated
			return nil
		},
	}
}

func ExtractMentions() Stage {
	return Stage{
		Name: "extract-mentions",
		Run: func(_ context.Context, mc *MutationContext) error {
			mc.MentionedIDs = mention.Extract(mc.Content)
			return nil
		},
	}
}

func Resolve() Stage {
	return Stage{
		Name: "resolve",
		Run: func(ctx context.Context, mc *MutationContext) error {
			result, err := mc.Resolve(ctx, mc)
			if err != nil {
				return err
			}
			mc.Result = result
			return nil
		},
	}
}

// NotifyMentionedInPost notifies every user mentioned in the post content.
func NotifyMentionedInPost(notifier notification.Service) Stage {
	return Stage{
		Name: "notify-mentioned",
		Run: func(ctx context.Context, mc *MutationContext) error {
			if mc.Result == nil {
				return nil
			}
			return notifier.Notify(ctx, domain.KindPost, mc.Result.EntityID(), mc.MentionedIDs, domain.ReasonMentionedInPost)
		},
	}
}

// NotifyMentionedInComment notifies users mentioned in a comment except the
// author of the commented post, who hears about it through commented_on_post.
func NotifyMentionedInComment(notifier notification.Service, posts PostAuthorFinder) Stage {
	return Stage{
		Name: "notify-mentioned",
		Run: func(ctx context.Context, mc *MutationContext) error {
			if mc.Result == nil {
				return nil
			}
			authorID, err := mc.postAuthor(ctx, posts)
			if err != nil {
				return err
			}
			recipients := make([]string, 0, len(mc.MentionedIDs))
			for _, id := range mc.MentionedIDs {
				if id != authorID {
					recipients = append(recipients, id)
				}
			}
			return notifier.Notify(ctx, domain.KindComment, mc.Result.EntityID(), recipients, domain.ReasonMentionedInComment)
		},
	}
}

// NotifyPostAuthor tells the post author about a new comment unless they wrote it.
func NotifyPostAuthor(notifier notification.Service, posts PostAuthorFinder) Stage {
	return Stage{
		Name: "notify-post-author",
		Run: func(ctx context.Context, mc *MutationContext) error {
			if mc.Result == nil {
				return nil
			}
			authorID, err := mc.postAuthor(ctx, posts)
			if err != nil {
				return err
			}
			if authorID == "" || authorID == mc.Viewer.ID {
				return nil
			}
			return notifier.Notify(ctx, domain.KindComment, mc.Result.EntityID(), []string{authorID}, domain.ReasonCommentedOnPost)
		},
	}
}

func (mc *MutationContext) postAuthor(ctx context.Context, posts PostAuthorFinder) (string, error) {
	if mc.postAuthorID != nil {
		return *mc.postAuthorID, nil
	}
	author, err := posts.PostAuthor(ctx, mc.Result.EntityID())
	if err != nil {
		return "", fmt.Errorf("failed to find post author: %w", err)
	}
	var id string
	if author != nil {
		id = author.ID
	}
	mc.postAuthorID = &id
	return id, nil
}

package resolver

import (
	"go.uber.org/zap"

	"human-connection/internal/pkg/slug"
	"human-connection/internal/service/notification"
)

// Mutations holds the pipeline of every content mutation that produces
// notifications.
type Mutations struct {
	CreatePost    *Pipeline
	UpdatePost    *Pipeline
	CreateComment *Pipeline
	UpdateComment *Pipeline
}

func NewMutations(postSlugExists slug.Exists, notifier notification.Service, posts PostAuthorFinder, logger *zap.Logger) *Mutations {
	return &Mutations{
		CreatePost: NewPipeline(OpCreatePost, logger,
			Slugify(postSlugExists),
			ExtractMentions(),
			Resolve(),
			NotifyMentionedInPost(notifier),
		),
		UpdatePost: NewPipeline(OpUpdatePost, logger,
			Slugify(postSlugExists),
			ExtractMentions(),
			Resolve(),
			NotifyMentionedInPost(notifier),
		),
		CreateComment: NewPipeline(OpCreateComment, logger,
			ExtractMentions(),
			Resolve(),
			NotifyMentionedInComment(notifier, posts),
			NotifyPostAuthor(notifier, posts),
		),
		UpdateComment: NewPipeline(OpUpdateComment, logger,
			ExtractMentions(),
			Resolve(),
			NotifyMentionedInComment(notifier, posts),
		),
	}
}

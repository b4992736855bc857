// Package resolver runs content mutations through an ordered chain of named
// stages: slug generation, mention extraction, the mutation itself and the
// notifications that follow it.
package resolver

import (
	"context"

	"go.uber.org/zap"

	"human-connection/internal/domain"
)

const (
	OpCreatePost    = "CreatePost"
	OpUpdatePost    = "UpdatePost"
	OpCreateComment = "CreateComment"
	OpUpdateComment = "UpdateComment"
)

// Entity is the result of a resolved mutation.
type Entity interface {
	EntityID() string
}

// ResolveFunc performs the mutation. Returning a nil Entity without an error
// means nothing was written and turns the following stages into no-ops.
type ResolveFunc func(ctx context.Context, mc *MutationContext) (Entity, error)

type MutationContext struct {
	Operation string
	Viewer    domain.Viewer

	Content string
	Title   string
	// Slug is the requested slug; the slugify stage fills it when empty.
	Slug *string
	// CurrentSlug is the slug the entity already owns, free for reuse on update.
	CurrentSlug string

	MentionedIDs []string

	Resolve ResolveFunc
	Result  Entity

	postAuthorID *string
}

type Stage struct {
	Name string
	Run  func(ctx context.Context, mc *MutationContext) error
}

type Pipeline struct {
	Operation string
	Stages    []Stage

	logger *zap.Logger
}

func NewPipeline(operation string, logger *zap.Logger, stages ...Stage) *Pipeline {
	return &Pipeline{Operation: operation, Stages: stages, logger: logger}
}

// Run executes the stages in order and stops at the first error.
func (p *Pipeline) Run(ctx context.Context, mc *MutationContext) (Entity, error) {
	mc.Operation = p.Operation
	for _, stage := range p.Stages {
		if err := stage.Run(ctx, mc); err != nil {
			p.logger.Debug("mutation stage failed",
				zap.String("operation", p.Operation),
				zap.String("stage", stage.Name),
				zap.Error(err),
			)
			return nil, err
		}
	}
	return mc.Result, nil
}

// Names lists the stage names in execution order.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.Stages))
	for i, stage := range p.Stages {
		names[i] = stage.Name
	}
	return names
}

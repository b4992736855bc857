package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"human-connection/internal/domain"
)

type commentRepository struct {
	*store
}

const commentProjection = `c {
	.*, postId: post.id, authorId: author.id, authorSlug: author.slug, authorName: author.name
} AS comment`

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	_, err := r.write(ctx, func(ctx context.Context, tx neo4j.ManagedTransaction) (any, error) {
		records, err := collect(ctx, tx, `
			MATCH (post:Post {id: $postId}) WHERE NOT coalesce(post.deleted, false)
			MATCH (author:User {id: $authorId})
			CREATE (c:Comment {
				id: $id, content: $content, contentExcerpt: $contentExcerpt,
				deleted: false, disabled: false, createdAt: datetime(), updatedAt: datetime()
			})
			CREATE (author)-[:WROTE]->(c)-[:COMMENTS]->(post)
			RETURN c`, map[string]any{
			"postId":         comment.PostID,
			"authorId":       comment.AuthorID,
			"id":             comment.ID,
			"content":        comment.Content,
			"contentExcerpt": comment.ContentExcerpt,
		})
		if err != nil {
			return nil, err
		}
		if len(records) == 0 {
			return nil, domain.ErrNotFound
		}
		p, _ := propsOf(records[0], "c")
		comment.CreatedAt = p.at("createdAt")
		comment.UpdatedAt = p.at("updatedAt")
		return nil, nil
	})
	return err
}

func (r *commentRepository) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	result, err := r.read(ctx, func(ctx context.Context, tx neo4j.ManagedTransaction) (any, error) {
		found, err := comments(ctx, tx, `
			MATCH (author:User)-[:WROTE]->(c:Comment {id: $id})-[:COMMENTS]->(post:Post)
			RETURN `+commentProjection, map[string]any{"id": id})
		if err != nil || len(found) == 0 {
			return nil, err
		}
		return &found[0], nil
	})
	if err != nil || result == nil {
		return nil, err
	}
	return result.(*domain.Comment), nil
}

func comments(ctx context.Context, tx neo4j.ManagedTransaction, cypher string, params map[string]any) ([]domain.Comment, error) {
	records, err := collect(ctx, tx, cypher, params)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Comment, 0, len(records))
	for _, rec := range records {
		if p, ok := propsOf(rec, "comment"); ok {
			out = append(out, commentFrom(p))
		}
	}
	return out, nil
}

func (r *commentRepository) Update(ctx context.Context, comment *domain.Comment) (*domain.Comment, error) {
	result, err := r.write(ctx, func(ctx context.Context, tx neo4j.ManagedTransaction) (any, error) {
		updated, err := comments(ctx, tx, `
			MATCH (author:User)-[:WROTE]->(c:Comment {id: $id})-[:COMMENTS]->(post:Post)
			WHERE NOT coalesce(c.deleted, false)
			SET c.content = $content, c.contentExcerpt = $contentExcerpt, c.updatedAt = datetime()
			RETURN `+commentProjection, map[string]any{
			"id":             comment.ID,
			"content":        comment.Content,
			"contentExcerpt": comment.ContentExcerpt,
		})
		if err != nil || len(updated) == 0 {
			return nil, err
		}
		return &updated[0], nil
	})
	if err != nil || result == nil {
		return nil, err
	}
	return result.(*domain.Comment), nil
}

func (r *commentRepository) PostAuthor(ctx context.Context, commentID string) (*domain.User, error) {
	result, err := r.read(ctx, func(ctx context.Context, tx neo4j.ManagedTransaction) (any, error) {
		records, err := collect(ctx, tx, `
			MATCH (:Comment {id: $id})-[:COMMENTS]->(:Post)<-[:WROTE]-(author:User)
			RETURN author`, map[string]any{"id": commentID})
		if err != nil || len(records) == 0 {
			return nil, err
		}
		p, _ := propsOf(records[0], "author")
		return userFrom(p), nil
	})
	if err != nil || result == nil {
		return nil, err
	}
	return result.(*domain.User), nil
}

func (r *commentRepository) ListByPost(ctx context.Context, postID string, includeDisabled bool, params domain.PaginationParams) ([]domain.Comment, int64, error) {
	params.Validate()

	match := `
		MATCH (author:User)-[:WROTE]->(c:Comment)-[:COMMENTS]->(post:Post {id: $id})
		WHERE NOT coalesce(c.deleted, false)`
	if !includeDisabled {
		match += ` AND NOT coalesce(c.disabled, false) AND NOT coalesce(author.disabled, false)`
	}

	var total int64
	result, err := r.read(ctx, func(ctx context.Context, tx neo4j.ManagedTransaction) (any, error) {
		records, err := collect(ctx, tx, match+` RETURN count(c) AS total`, map[string]any{"id": postID})
		if err != nil {
			return nil, err
		}
		if len(records) > 0 {
			total = value[int64](records[0], "total")
		}
		return comments(ctx, tx, match+`
			RETURN `+commentProjection+`
			ORDER BY comment.createdAt ASC
			SKIP $skip LIMIT $limit`, map[string]any{
			"id":    postID,
			"skip":  int64(params.Offset()),
			"limit": int64(params.PageSize),
		})
	})
	if err != nil {
		return nil, 0, err
	}
	return result.([]domain.Comment), total, nil
}

package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"human-connection/internal/domain"
	"human-connection/internal/repository"
)

type postRepository struct {
	*store
}

// postProjection expects `p`, `author` and an optional `pin` in scope.
const postProjection = `p {
	.*, authorId: author.id, authorSlug: author.slug, authorName: author.name, pinnedAt: pin.createdAt,
	commentsCount: COUNT { (p)<-[:COMMENTS]-(c:Comment) WHERE NOT coalesce(c.deleted, false) AND NOT coalesce(c.disabled, false) },
	emotionsCount: COUNT { (p)<-[:EMOTED]-(:User) }
} AS post`

const matchPostByID = `
	MATCH (author:User)-[:WROTE]->(p:Post {id: $id})
	OPTIONAL MATCH (:User)-[pin:PINNED]->(p)`

func (r *postRepository) Create(ctx context.Context, post *domain.Post) error {
	_, err := r.write(ctx, func(ctx context.Context, tx neo4j.ManagedTransaction) (any, error) {
		records, err := collect(ctx, tx, `
			MATCH (author:User {id: $authorId})
			CREATE (p:Post {
				id: $id, slug: $slug, title: $title, content: $content, contentExcerpt: $contentExcerpt,
				image: $image, language: $language, deleted: false, disabled: false, pinned: false,
				createdAt: datetime(), updatedAt: datetime()
			})
			CREATE (author)-[:WROTE]->(p)
			RETURN p`, map[string]any{
			"authorId":       post.AuthorID,
			"id":             post.ID,
			"slug":           post.Slug,
			"title":          post.Title,
			"content":        post.Content,
			"contentExcerpt": post.ContentExcerpt,
			"image":          optional(post.Image),
			"language":       optional(post.Language),
		})
		if err != nil {
			return nil, err
		}
		if len(records) == 0 {
			return nil, domain.ErrNotFound
		}
		p, _ := propsOf(records[0], "p")
		post.CreatedAt = p.at("createdAt")
		post.UpdatedAt = p.at("updatedAt")
		return nil, categorize(ctx, tx, post.ID, post.CategoryIDs)
	})
	if err != nil {
		return constraintError(err, "slug", domain.ErrSlugExists)
	}
	return nil
}

func categorize(ctx context.Context, tx neo4j.ManagedTransaction, postID string, categoryIDs []string) error {
	if len(categoryIDs) == 0 {
		return nil
	}
	_, err := collect(ctx, tx, `
		MATCH (p:Post {id: $id})
		UNWIND $categoryIds AS categoryId
		MATCH (c:Category {id: categoryId})
		MERGE (p)-[:CATEGORIZED]->(c)`, map[string]any{"id": postID, "categoryIds": categoryIDs})
	return err
}

func (r *postRepository) Update(ctx context.Context, post *domain.Post, categoryIDs []string) (*domain.Post, error) {
	result, err := r.write(ctx, func(ctx context.Context, tx neo4j.ManagedTransaction) (any, error) {
		records, err := collect(ctx, tx, `
			MATCH (p:Post {id: $id}) WHERE NOT coalesce(p.deleted, false)
			SET p.slug = $slug, p.title = $title, p.content = $content, p.contentExcerpt = $contentExcerpt,
				p.image = coalesce($image, p.image), p.language = coalesce($language, p.language),
				p.updatedAt = datetime()
			RETURN p.id AS id`, map[string]any{
			"id":             post.ID,
			"slug":           post.Slug,
			"title":          post.Title,
			"content":        post.Content,
			"contentExcerpt": post.ContentExcerpt,
			"image":          optional(post.Image),
			"language":       optional(post.Language),
		})
		if err != nil || len(records) == 0 {
			return false, err
		}
		if len(categoryIDs) > 0 {
			if _, err := collect(ctx, tx, `MATCH (:Post {id: $id})-[c:CATEGORIZED]->() DELETE c`, map[string]any{"id": post.ID}); err != nil {
				return false, err
			}
			if err := categorize(ctx, tx, post.ID, categoryIDs); err != nil {
				return false, err
			}
		}
		return true, nil
	})
	if err != nil {
		return nil, constraintError(err, "slug", domain.ErrSlugExists)
	}
	if !result.(bool) {
		return nil, nil
	}
	return r.GetByID(ctx, post.ID)
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	result, err := r.read(ctx, func(ctx context.Context, tx neo4j.ManagedTransaction) (any, error) {
		return r.one(ctx, tx, matchPostByID+` RETURN `+postProjection, map[string]any{"id": id})
	})
	if err != nil || result == nil {
		return nil, err
	}
	return result.(*domain.Post), nil
}

func (r *postRepository) one(ctx context.Context, tx neo4j.ManagedTransaction, cypher string, params map[string]any) (*domain.Post, error) {
	posts, err := r.many(ctx, tx, cypher, params)
	if err != nil || len(posts) == 0 {
		return nil, err
	}
	return &posts[0], nil
}

func (r *postRepository) many(ctx context.Context, tx neo4j.ManagedTransaction, cypher string, params map[string]any) ([]domain.Post, error) {
	records, err := collect(ctx, tx, cypher, params)
	if err != nil {
		return nil, err
	}
	posts := make([]domain.Post, 0, len(records))
	for _, rec := range records {
		if p, ok := propsOf(rec, "post"); ok {
			posts = append(posts, postFrom(p))
		}
	}
	return posts, nil
}

func (r *postRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	return r.exists(ctx, `MATCH (p:Post {slug: $slug}) RETURN count(p) > 0 AS found`, map[string]any{"slug": slug})
}

func (r *postRepository) SoftDelete(ctx context.Context, id string) (*domain.Post, error) {
	result, err := r.write(ctx, func(ctx context.Context, tx neo4j.ManagedTransaction) (any, error) {
		records, err := collect(ctx, tx, `
			MATCH (p:Post {id: $id})
			OPTIONAL MATCH (p)<-[:COMMENTS]-(comment:Comment)
			WITH p, collect(comment) AS comments
			SET p.deleted = true, p.content = $unavailable, p.contentExcerpt = $unavailable,
				p.title = $unavailable, p.updatedAt = datetime()
			REMOVE p.image
			FOREACH (c IN comments | SET c.deleted = true)
			RETURN p.id AS id`, map[string]any{"id": id, "unavailable": domain.UnavailableContent})
		if err != nil || len(records) == 0 {
			return nil, err
		}
		return r.one(ctx, tx, matchPostByID+` RETURN `+postProjection, map[string]any{"id": id})
	})
	if err != nil || result == nil {
		return nil, err
	}
	return asPost(result), nil
}

func (r *postRepository) ClearPins(ctx context.Context) ([]domain.Post, error) {
	result, err := r.write(ctx, func(ctx context.Context, tx neo4j.ManagedTransaction) (any, error) {
		return r.many(ctx, tx, `
			MATCH (:User)-[previous:PINNED]->(p:Post)<-[:WROTE]-(author:User)
			REMOVE p.pinned
			WITH previous, p, author, null AS pin
			DELETE previous
			RETURN `+postProjection, nil)
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Post), nil
}

// Pin only matches when the acting user is an admin; otherwise it returns nil
// without an error.
func (r *postRepository) Pin(ctx context.Context, userID, postID string) (*domain.Post, error) {
	result, err := r.write(ctx, func(ctx context.Context, tx neo4j.ManagedTransaction) (any, error) {
		return r.one(ctx, tx, `
			MATCH (user:User {id: $userId}) WHERE user.role = 'admin'
			MATCH (author:User)-[:WROTE]->(p:Post {id: $id})
			MERGE (user)-[pin:PINNED]->(p)
			ON CREATE SET pin.createdAt = datetime()
			SET p.pinned = true
			RETURN `+postProjection, map[string]any{"userId": userID, "id": postID})
	})
	if err != nil || result == nil {
		return nil, err
	}
	return asPost(result), nil
}

func (r *postRepository) Unpin(ctx context.Context, postID string) (*domain.Post, error) {
	result, err := r.write(ctx, func(ctx context.Context, tx neo4j.ManagedTransaction) (any, error) {
		return r.one(ctx, tx, `
			MATCH (:User)-[previous:PINNED]->(p:Post {id: $id})<-[:WROTE]-(author:User)
			REMOVE p.pinned
			WITH previous, p, author, null AS pin
			DELETE previous
			RETURN `+postProjection, map[string]any{"id": postID})
	})
	if err != nil || result == nil {
		return nil, err
	}
	return asPost(result), nil
}

// asPost unwraps a transaction result that may hold a typed nil.
func asPost(result any) *domain.Post {
	post, _ := result.(*domain.Post)
	return post
}

func (r *postRepository) AddEmotion(ctx context.Context, userID, postID string, emotion domain.Emotion) (*domain.Emoted, error) {
	return r.emote(ctx, `
		MATCH (user:User {id: $userId}), (author:User)-[:WROTE]->(p:Post {id: $postId})
		OPTIONAL MATCH (:User)-[pin:PINNED]->(p)
		MERGE (user)-[e:EMOTED {emotion: $emotion}]->(p)
		ON CREATE SET e.createdAt = datetime()
		RETURN user, `+postProjection, userID, postID, emotion)
}

func (r *postRepository) RemoveEmotion(ctx context.Context, userID, postID string, emotion domain.Emotion) (*domain.Emoted, error) {
	return r.emote(ctx, `
		MATCH (user:User {id: $userId})-[e:EMOTED {emotion: $emotion}]->(p:Post {id: $postId})<-[:WROTE]-(author:User)
		OPTIONAL MATCH (:User)-[pin:PINNED]->(p)
		DELETE e
		RETURN user, `+postProjection, userID, postID, emotion)
}

func (r *postRepository) emote(ctx context.Context, cypher, userID, postID string, emotion domain.Emotion) (*domain.Emoted, error) {
	result, err := r.write(ctx, func(ctx context.Context, tx neo4j.ManagedTransaction) (any, error) {
		records, err := collect(ctx, tx, cypher, map[string]any{
			"userId": userID, "postId": postID, "emotion": string(emotion),
		})
		if err != nil || len(records) == 0 {
			return nil, err
		}
		user, _ := propsOf(records[0], "user")
		post, _ := propsOf(records[0], "post")
		to := postFrom(post)
		return &domain.Emoted{From: userFrom(user), To: &to, Emotion: emotion}, nil
	})
	if err != nil || result == nil {
		return nil, err
	}
	emoted, _ := result.(*domain.Emoted)
	return emoted, nil
}

func (r *postRepository) CountEmotions(ctx context.Context, postID string, emotion domain.Emotion) (int64, error) {
	result, err := r.read(ctx, func(ctx context.Context, tx neo4j.ManagedTransaction) (any, error) {
		records, err := collect(ctx, tx, `
			MATCH (:Post {id: $postId})<-[e:EMOTED {emotion: $emotion}]-()
			RETURN count(DISTINCT e) AS emotionsCount`, map[string]any{"postId": postID, "emotion": string(emotion)})
		if err != nil || len(records) == 0 {
			return int64(0), err
		}
		return value[int64](records[0], "emotionsCount"), nil
	})
	if err != nil {
		return 0, err
	}
	return result.(int64), nil
}

func (r *postRepository) EmotionsByUser(ctx context.Context, userID, postID string) ([]domain.Emotion, error) {
	result, err := r.read(ctx, func(ctx context.Context, tx neo4j.ManagedTransaction) (any, error) {
		records, err := collect(ctx, tx, `
			MATCH (:User {id: $userId})-[e:EMOTED]->(:Post {id: $postId})
			RETURN e.emotion AS emotion ORDER BY e.createdAt`, map[string]any{"userId": userID, "postId": postID})
		if err != nil {
			return nil, err
		}
		emotions := make([]domain.Emotion, 0, len(records))
		for _, rec := range records {
			emotions = append(emotions, domain.Emotion(value[string](rec, "emotion")))
		}
		return emotions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Emotion), nil
}

func (r *postRepository) List(ctx context.Context, q repository.PostQuery, params domain.PaginationParams) ([]domain.Post, int64, error) {
	params.Validate()

	w := newPostWhere()
	match := `MATCH (author:User)-[:WROTE]->(p:Post) WHERE ` + w.query(q)

	var total int64
	result, err := r.read(ctx, func(ctx context.Context, tx neo4j.ManagedTransaction) (any, error) {
		records, err := collect(ctx, tx, match+` RETURN count(p) AS total`, w.params)
		if err != nil {
			return nil, err
		}
		if len(records) > 0 {
			total = value[int64](records[0], "total")
		}

		page := map[string]any{"skip": int64(params.Offset()), "limit": int64(params.PageSize)}
		for k, v := range w.params {
			page[k] = v
		}
		return r.many(ctx, tx, match+`
			OPTIONAL MATCH (:User)-[pin:PINNED]->(p)
			RETURN `+postProjection+`
			ORDER BY coalesce(post.pinned, false) DESC, post.createdAt DESC
			SKIP $skip LIMIT $limit`, page)
	})
	if err != nil {
		return nil, 0, err
	}
	return result.([]domain.Post), total, nil
}

func (r *postRepository) RelatedContributions(ctx context.Context, postID string) ([]domain.Post, error) {
	result, err := r.read(ctx, func(ctx context.Context, tx neo4j.ManagedTransaction) (any, error) {
		return r.many(ctx, tx, `
			MATCH (:Post {id: $id})-[:CATEGORIZED]->(:Category)<-[:CATEGORIZED]-(p:Post)<-[:WROTE]-(author:User)
			WHERE p.id <> $id AND NOT coalesce(p.deleted, false) AND NOT coalesce(p.disabled, false)
			WITH DISTINCT p, author
			OPTIONAL MATCH (:User)-[pin:PINNED]->(p)
			RETURN `+postProjection+`
			ORDER BY post.createdAt DESC
			LIMIT $limit`, map[string]any{"id": postID, "limit": int64(repository.RelatedLimit)})
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Post), nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"human-connection/internal/domain"
)

type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) error
	Update(ctx context.Context, post *domain.Post, categoryIDs []string) (*domain.Post, error)
	GetByID(ctx context.Context, id string) (*domain.Post, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	SoftDelete(ctx context.Context, id string) (*domain.Post, error)
	ClearPins(ctx context.Context) ([]domain.Post, error)
	Pin(ctx context.Context, userID, postID string) (*domain.Post, error)
	Unpin(ctx context.Context, postID string) (*domain.Post, error)
	AddEmotion(ctx context.Context, userID, postID string, emotion domain.Emotion) (*domain.Emoted, error)
	RemoveEmotion(ctx context.Context, userID, postID string, emotion domain.Emotion) (*domain.Emoted, error)
	CountEmotions(ctx context.Context, postID string, emotion domain.Emotion) (int64, error)
	EmotionsByUser(ctx context.Context, userID, postID string) ([]domain.Emotion, error)
	List(ctx context.Context, q PostQuery, params domain.PaginationParams) ([]domain.Post, int64, error)
	RelatedContributions(ctx context.Context, postID string) ([]domain.Post, error)
}

// RelatedLimit caps RelatedContributions.
const RelatedLimit = 10

type postRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) PostRepository {
	return &postRepository{db: db}
}

type postRow struct {
	domain.Post
	AuthorSlug string `db:"author_slug"`
	AuthorName string `db:"author_name"`
}

func (r postRow) toDomain() domain.Post {
	p := r.Post
	p.Author = &domain.Author{ID: p.AuthorID, Slug: r.AuthorSlug, Name: r.AuthorName}
	return p
}

const selectPost = `
	SELECT p.post_id, p.author_id, p.slug, p.title, p.content, p.content_excerpt, p.image, p.language,
		p.deleted, p.disabled, p.pinned, pin.created_at AS pinned_at, p.created_at, p.updated_at,
		u.slug AS author_slug, u.name AS author_name,
		(SELECT COUNT(*) FROM comments c
			WHERE c.post_id = p.post_id AND c.deleted = FALSE AND c.disabled = FALSE) AS comments_count,
		(SELECT COUNT(*) FROM emotions e WHERE e.post_id = p.post_id) AS emotions_count
	FROM posts p
	INNER JOIN users u ON u.user_id = p.author_id
	LEFT JOIN pins pin ON pin.post_id = p.post_id`

func (r *postRepository) Create(ctx context.Context, post *domain.Post) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO posts (post_id, author_id, slug, title, content, content_excerpt, image, language)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`

	err = tx.QueryRowxContext(ctx, query,
		post.ID, post.AuthorID, post.Slug, post.Title, post.Content, post.ContentExcerpt, post.Image, post.Language,
	).Scan(&post.CreatedAt, &post.UpdatedAt)
	if isUniqueViolation(err, "posts_slug_key") {
		return domain.ErrSlugExists
	}
	if err != nil {
		return err
	}

	if err := categorize(ctx, tx, post.ID, post.CategoryIDs); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *postRepository) Update(ctx context.Context, post *domain.Post, categoryIDs []string) (*domain.Post, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := `
		UPDATE posts
		SET slug = $2, title = $3, content = $4, content_excerpt = $5,
			image = COALESCE($6, image), language = COALESCE($7, language), updated_at = NOW()
		WHERE post_id = $1 AND deleted = FALSE
		RETURNING updated_at`

	err = tx.QueryRowxContext(ctx, query,
		post.ID, post.Slug, post.Title, post.Content, post.ContentExcerpt, post.Image, post.Language,
	).Scan(&post.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if isUniqueViolation(err, "posts_slug_key") {
		return nil, domain.ErrSlugExists
	}
	if err != nil {
		return nil, err
	}

	if len(categoryIDs) > 0 {
		if _, err := tx.ExecContext(ctx, `DELETE FROM post_categories WHERE post_id = $1`, post.ID); err != nil {
			return nil, err
		}
		if err := categorize(ctx, tx, post.ID, categoryIDs); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, post.ID)
}

func categorize(ctx context.Context, tx *sqlx.Tx, postID string, categoryIDs []string) error {
	if len(categoryIDs) == 0 {
		return nil
	}
	query := `
		INSERT INTO post_categories (post_id, category_id)
		SELECT $1, c.category_id FROM categories c WHERE c.category_id = ANY($2)
		ON CONFLICT DO NOTHING`
	_, err := tx.ExecContext(ctx, query, postID, pq.Array(categoryIDs))
	return err
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	var row postRow
	err := r.db.GetContext(ctx, &row, selectPost+` WHERE p.post_id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	post := row.toDomain()
	return &post, nil
}

func (r *postRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM posts WHERE slug = $1)`, slug)
	return exists, err
}

// SoftDelete keeps the row so the slug stays reserved.
func (r *postRepository) SoftDelete(ctx context.Context, id string) (*domain.Post, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := `
		UPDATE posts
		SET deleted = TRUE, content = $2, content_excerpt = $2, title = $2, image = NULL, updated_at = NOW()
		WHERE post_id = $1
		RETURNING post_id`

	var postID string
	err = tx.QueryRowxContext(ctx, query, id, domain.UnavailableContent).Scan(&postID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `UPDATE comments SET deleted = TRUE WHERE post_id = $1`, id); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *postRepository) ClearPins(ctx context.Context) ([]domain.Post, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var ids []string
	if err := tx.SelectContext(ctx, &ids, `DELETE FROM pins RETURNING post_id`); err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE posts SET pinned = FALSE WHERE pinned = TRUE`); err != nil {
		return nil, err
	}

	var rows []postRow
	if len(ids) > 0 {
		if err := tx.SelectContext(ctx, &rows, selectPost+` WHERE p.post_id = ANY($1)`, pq.Array(ids)); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return toPosts(rows), nil
}

// Pin only matches when the acting user is an admin; otherwise it returns nil
// without an error.
func (r *postRepository) Pin(ctx context.Context, userID, postID string) (*domain.Post, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO pins (user_id, post_id)
		SELECT u.user_id, p.post_id
		FROM users u, posts p
		WHERE u.user_id = $1 AND u.role = 'admin' AND p.post_id = $2
		ON CONFLICT (post_id) DO UPDATE SET user_id = EXCLUDED.user_id, created_at = NOW()
		RETURNING post_id`

	var pinnedID string
	err = tx.QueryRowxContext(ctx, query, userID, postID).Scan(&pinnedID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE posts SET pinned = TRUE WHERE post_id = $1`, postID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, postID)
}

func (r *postRepository) Unpin(ctx context.Context, postID string) (*domain.Post, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM pins WHERE post_id = $1`, postID)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}
	if _, err := tx.ExecContext(ctx, `UPDATE posts SET pinned = FALSE WHERE post_id = $1`, postID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, postID)
}

func (r *postRepository) AddEmotion(ctx context.Context, userID, postID string, emotion domain.Emotion) (*domain.Emoted, error) {
	query := `
		INSERT INTO emotions (user_id, post_id, emotion)
		SELECT u.user_id, p.post_id, $3 FROM users u, posts p
		WHERE u.user_id = $1 AND p.post_id = $2
		ON CONFLICT (user_id, post_id, emotion) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, userID, postID, emotion); err != nil {
		return nil, err
	}
	return r.emoted(ctx, userID, postID, emotion)
}

func (r *postRepository) RemoveEmotion(ctx context.Context, userID, postID string, emotion domain.Emotion) (*domain.Emoted, error) {
	query := `DELETE FROM emotions WHERE user_id = $1 AND post_id = $2 AND emotion = $3`
	res, err := r.db.ExecContext(ctx, query, userID, postID, emotion)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}
	return r.emoted(ctx, userID, postID, emotion)
}

func (r *postRepository) emoted(ctx context.Context, userID, postID string, emotion domain.Emotion) (*domain.Emoted, error) {
	var from domain.User
	err := r.db.GetContext(ctx, &from, `SELECT * FROM users WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	to, err := r.GetByID(ctx, postID)
	if err != nil || to == nil {
		return nil, err
	}
	return &domain.Emoted{From: &from, To: to, Emotion: emotion}, nil
}

func (r *postRepository) CountEmotions(ctx context.Context, postID string, emotion domain.Emotion) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM emotions WHERE post_id = $1 AND emotion = $2`
	err := r.db.GetContext(ctx, &count, query, postID, emotion)
	return count, err
}

func (r *postRepository) EmotionsByUser(ctx context.Context, userID, postID string) ([]domain.Emotion, error) {
	emotions := []domain.Emotion{}
	query := `SELECT emotion FROM emotions WHERE user_id = $1 AND post_id = $2 ORDER BY created_at`
	err := r.db.SelectContext(ctx, &emotions, query, userID, postID)
	return emotions, err
}

func (r *postRepository) List(ctx context.Context, q PostQuery, params domain.PaginationParams) ([]domain.Post, int64, error) {
	params.Validate()

	w := &postWhere{}
	where := w.query(q)

	var total int64
	countQuery := `SELECT COUNT(*) FROM posts p INNER JOIN users u ON u.user_id = p.author_id WHERE ` + where
	if err := r.db.GetContext(ctx, &total, countQuery, w.args...); err != nil {
		return nil, 0, err
	}

	limit := w.bind(params.PageSize)
	offset := w.bind(params.Offset())
	query := selectPost + ` WHERE ` + where + `
		ORDER BY p.pinned DESC, p.created_at DESC
		LIMIT ` + limit + ` OFFSET ` + offset

	var rows []postRow
	if err := r.db.SelectContext(ctx, &rows, query, w.args...); err != nil {
		return nil, 0, err
	}
	return toPosts(rows), total, nil
}

// RelatedContributions returns visible posts sharing a category with postID,
// newest first.
func (r *postRepository) RelatedContributions(ctx context.Context, postID string) ([]domain.Post, error) {
	query := selectPost + `
		WHERE p.post_id <> $1 AND p.deleted = FALSE AND p.disabled = FALSE
			AND EXISTS (
				SELECT 1 FROM post_categories mine
				INNER JOIN post_categories theirs ON theirs.category_id = mine.category_id
				WHERE mine.post_id = $1 AND theirs.post_id = p.post_id
			)
		ORDER BY p.created_at DESC
		LIMIT $2`

	var rows []postRow
	if err := r.db.SelectContext(ctx, &rows, query, postID, RelatedLimit); err != nil {
		return nil, err
	}
	return toPosts(rows), nil
}

func toPosts(rows []postRow) []domain.Post {
	posts := make([]domain.Post, 0, len(rows))
	for _, row := range rows {
		posts = append(posts, row.toDomain())
	}
	return posts
}

package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"human-connection/internal/domain"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	GetByID(ctx context.Context, id string) (*domain.Comment, error)
	Update(ctx context.Context, comment *domain.Comment) (*domain.Comment, error)
	PostAuthor(ctx context.Context, commentID string) (*domain.User, error)
	ListByPost(ctx context.Context, postID string, includeDisabled bool, params domain.PaginationParams) ([]domain.Comment, int64, error)
}

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

type commentRow struct {
	domain.Comment
	AuthorSlug string `db:"author_slug"`
	AuthorName string `db:"author_name"`
}

func (r commentRow) toDomain() domain.Comment {
	c := r.Comment
	c.Author = &domain.Author{ID: c.AuthorID, Slug: r.AuthorSlug, Name: r.AuthorName}
	return c
}

const selectComment = `
	SELECT c.comment_id, c.post_id, c.author_id, c.content, c.content_excerpt, c.deleted, c.disabled,
		c.created_at, c.updated_at, u.slug AS author_slug, u.name AS author_name
	FROM comments c
	INNER JOIN users u ON u.user_id = c.author_id`

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	query := `
		INSERT INTO comments (comment_id, post_id, author_id, content, content_excerpt)
		SELECT $1, p.post_id, $3, $4, $5 FROM posts p WHERE p.post_id = $2 AND p.deleted = FALSE
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		comment.ID, comment.PostID, comment.AuthorID, comment.Content, comment.ContentExcerpt,
	).Scan(&comment.CreatedAt, &comment.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

func (r *commentRepository) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	var row commentRow
	err := r.db.GetContext(ctx, &row, selectComment+` WHERE c.comment_id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	comment := row.toDomain()
	return &comment, nil
}

func (r *commentRepository) Update(ctx context.Context, comment *domain.Comment) (*domain.Comment, error) {
	query := `
		UPDATE comments
		SET content = $2, content_excerpt = $3, updated_at = NOW()
		WHERE comment_id = $1 AND deleted = FALSE
		RETURNING updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		comment.ID, comment.Content, comment.ContentExcerpt,
	).Scan(&comment.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, comment.ID)
}

// PostAuthor returns the author of the post the comment belongs to.
func (r *commentRepository) PostAuthor(ctx context.Context, commentID string) (*domain.User, error) {
	var user domain.User
	query := `
		SELECT u.* FROM comments c
		INNER JOIN posts p ON p.post_id = c.post_id
		INNER JOIN users u ON u.user_id = p.author_id
		WHERE c.comment_id = $1`
	err := r.db.GetContext(ctx, &user, query, commentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *commentRepository) ListByPost(ctx context.Context, postID string, includeDisabled bool, params domain.PaginationParams) ([]domain.Comment, int64, error) {
	params.Validate()

	where := ` WHERE c.post_id = $1 AND c.deleted = FALSE`
	if !includeDisabled {
		where += ` AND c.disabled = FALSE AND u.disabled = FALSE`
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM comments c INNER JOIN users u ON u.user_id = c.author_id` + where
	if err := r.db.GetContext(ctx, &total, countQuery, postID); err != nil {
		return nil, 0, err
	}

	var rows []commentRow
	query := selectComment + where + ` ORDER BY c.created_at ASC LIMIT $2 OFFSET $3`
	if err := r.db.SelectContext(ctx, &rows, query, postID, params.PageSize, params.Offset()); err != nil {
		return nil, 0, err
	}

	comments := make([]domain.Comment, 0, len(rows))
	for _, row := range rows {
		comments = append(comments, row.toDomain())
	}
	return comments, total, nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"human-connection/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetBySlug(ctx context.Context, slug string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Block(ctx context.Context, userID, blockedID string) error
	Unblock(ctx context.Context, userID, blockedID string) error
	BlockedUserIDs(ctx context.Context, userID string) ([]string, error)
	BlockedByUserIDs(ctx context.Context, userID string) ([]string, error)
}

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (user_id, slug, name, email, password_hash, avatar_url, role)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		user.ID, user.Slug, user.Name, user.Email, user.PasswordHash, user.AvatarURL, user.Role,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	switch {
	case isUniqueViolation(err, "users_slug_key"):
		return domain.ErrSlugExists
	case isUniqueViolation(err, "users_email_key"):
		return domain.ErrEmailExists
	}
	return err
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT * FROM users WHERE user_id = $1 AND deleted = FALSE`, id)
}

func (r *userRepository) GetBySlug(ctx context.Context, slug string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT * FROM users WHERE slug = $1 AND deleted = FALSE`, slug)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT * FROM users WHERE LOWER(email) = LOWER($1) AND deleted = FALSE`, email)
}

func (r *userRepository) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	err := r.db.GetContext(ctx, &user, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE slug = $1)`
	err := r.db.GetContext(ctx, &exists, query, slug)
	return exists, err
}

func (r *userRepository) Block(ctx context.Context, userID, blockedID string) error {
	query := `
		INSERT INTO blocks (user_id, blocked_id)
		SELECT $1, $2
		WHERE EXISTS (SELECT 1 FROM users WHERE user_id = $2)
		ON CONFLICT (user_id, blocked_id) DO NOTHING`

	_, err := r.db.ExecContext(ctx, query, userID, blockedID)
	return err
}

func (r *userRepository) Unblock(ctx context.Context, userID, blockedID string) error {
	query := `DELETE FROM blocks WHERE user_id = $1 AND blocked_id = $2`
	_, err := r.db.ExecContext(ctx, query, userID, blockedID)
	return err
}

func (r *userRepository) BlockedUserIDs(ctx context.Context, userID string) ([]string, error) {
	ids := []string{}
	query := `SELECT blocked_id FROM blocks WHERE user_id = $1`
	err := r.db.SelectContext(ctx, &ids, query, userID)
	return ids, err
}

func (r *userRepository) BlockedByUserIDs(ctx context.Context, userID string) ([]string, error) {
	ids := []string{}
	query := `SELECT user_id FROM blocks WHERE blocked_id = $1`
	err := r.db.SelectContext(ctx, &ids, query, userID)
	return ids, err
}

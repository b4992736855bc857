package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"human-connection/internal/domain"
)

type EmailRepository interface {
	EmailTaken(ctx context.Context, email string) (bool, error)
	CreateRequest(ctx context.Context, req *domain.EmailAddress) error
	// Verify moves a pending address onto the user. It returns nil when no
	// request matches the nonce.
	Verify(ctx context.Context, userID, email, nonce string) (*domain.EmailAddress, error)
}

type emailRepository struct {
	db *sqlx.DB
}

func NewEmailRepository(db *sqlx.DB) EmailRepository {
	return &emailRepository{db: db}
}

func (r *emailRepository) EmailTaken(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM users WHERE LOWER(email) = LOWER($1))`, email)
	return exists, err
}

func (r *emailRepository) CreateRequest(ctx context.Context, req *domain.EmailAddress) error {
	query := `
		INSERT INTO email_address_requests (email, user_id, nonce)
		VALUES (LOWER($1), $2, $3)
		ON CONFLICT (email, user_id) DO UPDATE SET nonce = EXCLUDED.nonce, created_at = NOW()
		RETURNING created_at`
	return r.db.QueryRowxContext(ctx, query, req.Email, req.UserID, req.Nonce).Scan(&req.CreatedAt)
}

func (r *emailRepository) Verify(ctx context.Context, userID, email, nonce string) (*domain.EmailAddress, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var req domain.EmailAddress
	err = tx.GetContext(ctx, &req, `
		DELETE FROM email_address_requests
		WHERE user_id = $1 AND email = LOWER($2) AND nonce = $3
		RETURNING email, user_id, nonce, created_at`, userID, email, nonce)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var verifiedAt sql.NullTime
	err = tx.QueryRowxContext(ctx,
		`UPDATE users SET email = $2, updated_at = NOW() WHERE user_id = $1 RETURNING updated_at`,
		userID, req.Email,
	).Scan(&verifiedAt)
	if isUniqueViolation(err, "users_email_key") {
		return nil, domain.ErrEmailExists
	}
	if err != nil {
		return nil, err
	}
	if verifiedAt.Valid {
		req.VerifiedAt = &verifiedAt.Time
	}

	return &req, tx.Commit()
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"human-connection/internal/domain"
)

type ModerationRepository interface {
	// Report files a report against any post, comment or user. A repeated
	// report by the same reporter returns the first one.
	Report(ctx context.Context, report *domain.Report) (*domain.Report, error)
	Disable(ctx context.Context, moderatorID string, target domain.ModerationTarget) (bool, error)
	Release(ctx context.Context, target domain.ModerationTarget) (bool, error)
}

type moderationRepository struct {
	db *sqlx.DB
}

func NewModerationRepository(db *sqlx.DB) ModerationRepository {
	return &moderationRepository{db: db}
}

var moderationTables = map[domain.EntityKind]struct{ table, key string }{
	domain.KindPost:    {"posts", "post_id"},
	domain.KindComment: {"comments", "comment_id"},
	domain.KindUser:    {"users", "user_id"},
}

func (r *moderationRepository) Report(ctx context.Context, report *domain.Report) (*domain.Report, error) {
	query := `
		INSERT INTO reports (reporter_id, resource_kind, resource_id, reason_category, reason_description)
		SELECT $1, kind, $2, $3, $4 FROM (
			SELECT 'Post' AS kind FROM posts WHERE post_id = $2
			UNION ALL SELECT 'Comment' FROM comments WHERE comment_id = $2
			UNION ALL SELECT 'User' FROM users WHERE user_id = $2
		) resource
		LIMIT 1
		ON CONFLICT (reporter_id, resource_id) DO NOTHING`

	_, err := r.db.ExecContext(ctx, query,
		report.ReporterID, report.ResourceID, report.ReasonCategory, report.ReasonDescription,
	)
	if err != nil {
		return nil, err
	}

	var existing domain.Report
	err = r.db.GetContext(ctx, &existing,
		`SELECT * FROM reports WHERE reporter_id = $1 AND resource_id = $2`,
		report.ReporterID, report.ResourceID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &existing, nil
}

func (r *moderationRepository) Disable(ctx context.Context, moderatorID string, target domain.ModerationTarget) (bool, error) {
	t, ok := moderationTables[target.Kind]
	if !ok {
		return false, fmt.Errorf("unknown resource kind %q", target.Kind)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET disabled = TRUE WHERE %s = $1`, t.table, t.key), target.ID)
	if err != nil {
		return false, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return false, nil
	}

	query := `
		INSERT INTO disables (resource_id, resource_kind, moderator_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (resource_id) DO UPDATE SET moderator_id = EXCLUDED.moderator_id, created_at = NOW()`
	if _, err := tx.ExecContext(ctx, query, target.ID, target.Kind, moderatorID); err != nil {
		return false, err
	}

	return true, tx.Commit()
}

func (r *moderationRepository) Release(ctx context.Context, target domain.ModerationTarget) (bool, error) {
	t, ok := moderationTables[target.Kind]
	if !ok {
		return false, fmt.Errorf("unknown resource kind %q", target.Kind)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET disabled = FALSE WHERE %s = $1`, t.table, t.key), target.ID)
	if err != nil {
		return false, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return false, nil
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM disables WHERE resource_id = $1`, target.ID); err != nil {
		return false, err
	}

	return true, tx.Commit()
}

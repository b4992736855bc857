package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"human-connection/internal/domain"
)

type NotificationRepository interface {
	// Notify upserts one notification per recipient and returns how many were written.
	Notify(ctx context.Context, kind domain.EntityKind, sourceID string, userIDs []string, reason domain.NotificationReason) (int64, error)
	ListByUser(ctx context.Context, userID string, unreadOnly bool, params domain.PaginationParams) ([]domain.Notification, int64, error)
	MarkAsRead(ctx context.Context, userID, sourceID string, reason domain.NotificationReason) (*domain.Notification, error)
	MarkAllAsRead(ctx context.Context, userID string) error
	CountUnread(ctx context.Context, userID string) (int64, error)
}

type notificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

// Recipient filters per reason. $1 is the source id, $2 the recipient ids.
var notifySources = map[domain.NotificationReason]string{
	domain.ReasonMentionedInPost: `
		SELECT 'Post', p.post_id, u.user_id, $3
		FROM posts p, users u
		WHERE p.post_id = $1 AND u.user_id = ANY($2)
			AND NOT EXISTS (SELECT 1 FROM blocks b WHERE b.user_id = p.author_id AND b.blocked_id = u.user_id)`,
	domain.ReasonMentionedInComment: `
		SELECT 'Comment', c.comment_id, u.user_id, $3
		FROM comments c
		INNER JOIN posts p ON p.post_id = c.post_id, users u
		WHERE c.comment_id = $1 AND u.user_id = ANY($2)
			AND NOT EXISTS (SELECT 1 FROM blocks b WHERE b.user_id = c.author_id AND b.blocked_id = u.user_id)
			AND NOT EXISTS (SELECT 1 FROM blocks b WHERE b.user_id = p.author_id AND b.blocked_id = u.user_id)`,
	domain.ReasonCommentedOnPost: `
		SELECT 'Comment', c.comment_id, u.user_id, $3
		FROM comments c, users u
		WHERE c.comment_id = $1 AND u.user_id = ANY($2)
			AND NOT EXISTS (SELECT 1 FROM blocks b WHERE b.user_id = c.author_id AND b.blocked_id = u.user_id)
			AND NOT EXISTS (SELECT 1 FROM blocks b WHERE b.user_id = u.user_id AND b.blocked_id = c.author_id)`,
}

func (r *notificationRepository) Notify(ctx context.Context, kind domain.EntityKind, sourceID string, userIDs []string, reason domain.NotificationReason) (int64, error) {
	source, ok := notifySources[reason]
	if !ok {
		return 0, fmt.Errorf("no notification source for reason %q", reason)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO notifications (source_kind, source_id, user_id, reason)` + source + `
		ON CONFLICT (source_id, user_id, reason)
		DO UPDATE SET read = FALSE, updated_at = NOW()`

	res, err := tx.ExecContext(ctx, query, sourceID, pq.Array(userIDs), reason)
	if err != nil {
		return 0, err
	}
	written, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	return written, tx.Commit()
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID string, unreadOnly bool, params domain.PaginationParams) ([]domain.Notification, int64, error) {
	params.Validate()

	where := ` WHERE user_id = $1`
	if unreadOnly {
		where += ` AND read = FALSE`
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM notifications`+where, userID); err != nil {
		return nil, 0, err
	}

	notifications := []domain.Notification{}
	query := `SELECT * FROM notifications` + where + ` ORDER BY updated_at DESC LIMIT $2 OFFSET $3`
	if err := r.db.SelectContext(ctx, &notifications, query, userID, params.PageSize, params.Offset()); err != nil {
		return nil, 0, err
	}

	if err := r.attachSources(ctx, notifications); err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

func (r *notificationRepository) attachSources(ctx context.Context, notifications []domain.Notification) error {
	var postIDs, commentIDs []string
	for _, n := range notifications {
		switch n.SourceKind {
		case domain.KindPost:
			postIDs = append(postIDs, n.SourceID)
		case domain.KindComment:
			commentIDs = append(commentIDs, n.SourceID)
		}
	}

	posts := map[string]*domain.Post{}
	if len(postIDs) > 0 {
		var rows []postRow
		if err := r.db.SelectContext(ctx, &rows, selectPost+` WHERE p.post_id = ANY($1)`, pq.Array(postIDs)); err != nil {
			return err
		}
		for _, row := range rows {
			p := row.toDomain()
			posts[p.ID] = &p
		}
	}

	comments := map[string]*domain.Comment{}
	if len(commentIDs) > 0 {
		var rows []commentRow
		if err := r.db.SelectContext(ctx, &rows, selectComment+` WHERE c.comment_id = ANY($1)`, pq.Array(commentIDs)); err != nil {
			return err
		}
		for _, row := range rows {
			c := row.toDomain()
			comments[c.ID] = &c
		}
	}

	for i := range notifications {
		notifications[i].Post = posts[notifications[i].SourceID]
		notifications[i].Comment = comments[notifications[i].SourceID]
	}
	return nil
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, userID, sourceID string, reason domain.NotificationReason) (*domain.Notification, error) {
	var notifications []domain.Notification
	query := `
		UPDATE notifications SET read = TRUE
		WHERE user_id = $1 AND source_id = $2 AND reason = $3
		RETURNING *`
	if err := r.db.SelectContext(ctx, &notifications, query, userID, sourceID, reason); err != nil {
		return nil, err
	}
	if len(notifications) == 0 {
		return nil, nil
	}
	if err := r.attachSources(ctx, notifications); err != nil {
		return nil, err
	}
	return &notifications[0], nil
}

func (r *notificationRepository) MarkAllAsRead(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE notifications SET read = TRUE WHERE user_id = $1 AND read = FALSE`, userID)
	return err
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read = FALSE`, userID)
	return count, err
}

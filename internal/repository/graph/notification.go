package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"human-connection/internal/domain"
)

type notificationRepository struct {
	*store
}

// Recipient matching per reason; each binds `source` and `user`.
var notifyMatches = map[domain.NotificationReason]string{
	domain.ReasonMentionedInPost: `
		MATCH (source:Post {id: $id})<-[:WROTE]-(author:User)
		MATCH (user:User) WHERE user.id IN $idsOfUsers
			AND NOT EXISTS { (user)<-[:BLOCKED]-(author) }`,
	domain.ReasonMentionedInComment: `
		MATCH (postAuthor:User)-[:WROTE]->(:Post)<-[:COMMENTS]-(source:Comment {id: $id})<-[:WROTE]-(author:User)
		MATCH (user:User) WHERE user.id IN $idsOfUsers
			AND NOT EXISTS { (user)<-[:BLOCKED]-(author) }
			AND NOT EXISTS { (user)<-[:BLOCKED]-(postAuthor) }`,
	domain.ReasonCommentedOnPost: `
		MATCH (:User)-[:WROTE]->(:Post)<-[:COMMENTS]-(source:Comment {id: $id})<-[:WROTE]-(author:User)
		MATCH (user:User) WHERE user.id IN $idsOfUsers
			AND NOT EXISTS { (user)<-[:BLOCKED]-(author) }
			AND NOT EXISTS { (author)<-[:BLOCKED]-(user) }`,
}

func (r *notificationRepository) Notify(ctx context.Context, kind domain.EntityKind, sourceID string, userIDs []string, reason domain.NotificationReason) (int64, error) {
	match, ok := notifyMatches[reason]
	if !ok {
		return 0, fmt.Errorf("no notification source for reason %q", reason)
	}

	result, err := r.write(ctx, func(ctx context.Context, tx neo4j.ManagedTransaction) (any, error) {
		records, err := collect(ctx, tx, match+`
			MERGE (source)-[n:NOTIFIED {reason: $reason}]->(user)
			SET n.read = false,
				n.createdAt = coalesce(n.createdAt, datetime()),
				n.updatedAt = datetime()
			RETURN count(n) AS written`, map[string]any{
			"id":         sourceID,
			"idsOfUsers": userIDs,
			"reason":     string(reason),
		})
		if err != nil || len(records) == 0 {
			return int64(0), err
		}
		return value[int64](records[0], "written"), nil
	})
	if err != nil {
		return 0, err
	}
	return result.(int64), nil
}

const notificationProjection = `
	RETURN n, source.id AS sourceId, CASE WHEN source:Post THEN 'Post' ELSE 'Comment' END AS sourceKind`

func notificationFrom(rec *neo4j.Record, userID string) domain.Notification {
	p, _ := propsOf(rec, "n")
	return domain.Notification{
		SourceKind: domain.EntityKind(value[string](rec, "sourceKind")),
		SourceID:   value[string](rec, "sourceId"),
		UserID:     userID,
		Reason:     domain.NotificationReason(p.str("reason")),
		Read:       p.boolean("read"),
		CreatedAt:  p.at("createdAt"),
		UpdatedAt:  p.at("updatedAt"),
	}
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID string, unreadOnly bool, params domain.PaginationParams) ([]domain.Notification, int64, error) {
	params.Validate()

	match := `
		MATCH (source)-[n:NOTIFIED]->(:User {id: $userId})
		WHERE (source:Post OR source:Comment)`
	if unreadOnly {
		match += ` AND n.read = false`
	}

	var total int64
	result, err := r.read(ctx, func(ctx context.Context, tx neo4j.ManagedTransaction) (any, error) {
		records, err := collect(ctx, tx, match+` RETURN count(n) AS total`, map[string]any{"userId": userID})
		if err != nil {
			return nil, err
		}
		if len(records) > 0 {
			total = value[int64](records[0], "total")
		}

		records, err = collect(ctx, tx, match+notificationProjection+`
			ORDER BY n.updatedAt DESC SKIP $skip LIMIT $limit`, map[string]any{
			"userId": userID,
			"skip":   int64(params.Offset()),
			"limit":  int64(params.PageSize),
		})
		if err != nil {
			return nil, err
		}
		notifications := make([]domain.Notification, 0, len(records))
		for _, rec := range records {
			notifications = append(notifications, notificationFrom(rec, userID))
		}
		return notifications, attachSources(ctx, tx, notifications)
	})
	if err != nil {
		return nil, 0, err
	}
	return result.([]domain.Notification), total, nil
}

func attachSources(ctx context.Context, tx neo4j.ManagedTransaction, notifications []domain.Notification) error {
	var postIDs, commentIDs []string
	for _, n := range notifications {
		if n.SourceKind == domain.KindPost {
			postIDs = append(postIDs, n.SourceID)
		} else {
			commentIDs = append(commentIDs, n.SourceID)
		}
	}

	posts := map[string]*domain.Post{}
	if len(postIDs) > 0 {
		records, err := collect(ctx, tx, `
			MATCH (author:User)-[:WROTE]->(p:Post) WHERE p.id IN $ids
			OPTIONAL MATCH (:User)-[pin:PINNED]->(p)
			RETURN `+postProjection, map[string]any{"ids": postIDs})
		if err != nil {
			return err
		}
		for _, rec := range records {
			if p, ok := propsOf(rec, "post"); ok {
				post := postFrom(p)
				posts[post.ID] = &post
			}
		}
	}

	found := map[string]*domain.Comment{}
	if len(commentIDs) > 0 {
		list, err := comments(ctx, tx, `
			MATCH (author:User)-[:WROTE]->(c:Comment)-[:COMMENTS]->(post:Post) WHERE c.id IN $ids
			RETURN `+commentProjection, map[string]any{"ids": commentIDs})
		if err != nil {
			return err
		}
		for i := range list {
			found[list[i].ID] = &list[i]
		}
	}

	for i := range notifications {
		notifications[i].Post = posts[notifications[i].SourceID]
		notifications[i].Comment = found[notifications[i].SourceID]
	}
	return nil
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, userID, sourceID string, reason domain.NotificationReason) (*domain.Notification, error) {
	result, err := r.write(ctx, func(ctx context.Context, tx neo4j.ManagedTransaction) (any, error) {
		records, err := collect(ctx, tx, `
			MATCH (source {id: $sourceId})-[n:NOTIFIED {reason: $reason}]->(:User {id: $userId})
			WHERE source:Post OR source:Comment
			SET n.read = true`+notificationProjection, map[string]any{
			"sourceId": sourceID,
			"reason":   string(reason),
			"userId":   userID,
		})
		if err != nil || len(records) == 0 {
			return nil, err
		}
		notifications := []domain.Notification{notificationFrom(records[0], userID)}
		if err := attachSources(ctx, tx, notifications); err != nil {
			return nil, err
		}
		return &notifications[0], nil
	})
	if err != nil || result == nil {
		return nil, err
	}
	return result.(*domain.Notification), nil
}

func (r *notificationRepository) MarkAllAsRead(ctx context.Context, userID string) error {
	_, err := r.write(ctx, func(ctx context.Context, tx neo4j.ManagedTransaction) (any, error) {
		_, err := collect(ctx, tx, `
			MATCH ()-[n:NOTIFIED {read: false}]->(:User {id: $userId})
			SET n.read = true`, map[string]any{"userId": userID})
		return nil, err
	})
	return err
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	result, err := r.read(ctx, func(ctx context.Context, tx neo4j.ManagedTransaction) (any, error) {
		records, err := collect(ctx, tx, `
			MATCH ()-[n:NOTIFIED {read: false}]->(:User {id: $userId})
			RETURN count(n) AS unread`, map[string]any{"userId": userID})
		if err != nil || len(records) == 0 {
			return int64(0), err
		}
		return value[int64](records[0], "unread"), nil
	})
	if err != nil {
		return 0, err
	}
	return result.(int64), nil
}

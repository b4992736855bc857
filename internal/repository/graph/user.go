package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/saulfrancisco-ruizacevedo/gocypher"

	"human-connection/internal/domain"
)

type userRepository struct {
	*store
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	_, err := r.write(ctx, func(ctx context.Context, tx neo4j.ManagedTransaction) (any, error) {
		records, err := collect(ctx, tx, `
			CREATE (u:User {
				id: $id, slug: $slug, name: $name, email: $email, passwordHash: $passwordHash,
				avatar: $avatar, role: $role, disabled: false, deleted: false,
				createdAt: datetime(), updatedAt: datetime()
			})
			RETURN u`, map[string]any{
			"id":           user.ID,
			"slug":         user.Slug,
			"name":         user.Name,
			"email":        user.Email,
			"passwordHash": user.PasswordHash,
			"avatar":       optional(user.AvatarURL),
			"role":         user.Role,
		})
		if err != nil {
			return nil, err
		}
		if p, ok := propsOf(records[0], "u"); ok {
			user.CreatedAt = p.at("createdAt")
			user.UpdatedAt = p.at("updatedAt")
		}
		return nil, nil
	})
	if err != nil {
		err = constraintError(err, "slug", domain.ErrSlugExists)
		err = constraintError(err, "email", domain.ErrEmailExists)
	}
	return err
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, map[string]any{"id": id})
}

func (r *userRepository) GetBySlug(ctx context.Context, slug string) (*domain.User, error) {
	return r.findOne(ctx, map[string]any{"slug": slug})
}

func (r *userRepository) findOne(ctx context.Context, match map[string]any) (*domain.User, error) {
	records, err := r.lookup(ctx, gocypher.NewQueryBuilder().
		Match(gocypher.N("u", "User").WithProperties(match)).
		Return("u"))
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if p, ok := propsOf(rec, "u"); ok && !p.boolean("deleted") {
			return userFrom(p), nil
		}
	}
	return nil, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	result, err := r.read(ctx, func(ctx context.Context, tx neo4j.ManagedTransaction) (any, error) {
		records, err := collect(ctx, tx, `
			MATCH (u:User) WHERE toLower(u.email) = toLower($email) AND NOT coalesce(u.deleted, false)
			RETURN u LIMIT 1`, map[string]any{"email": email})
		if err != nil || len(records) == 0 {
			return nil, err
		}
		p, _ := propsOf(records[0], "u")
		return userFrom(p), nil
	})
	if err != nil || result == nil {
		return nil, err
	}
	return result.(*domain.User), nil
}

func (r *userRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	return r.exists(ctx, `MATCH (u:User {slug: $slug}) RETURN count(u) > 0 AS found`, map[string]any{"slug": slug})
}

func (r *store) exists(ctx context.Context, cypher string, params map[string]any) (bool, error) {
	result, err := r.read(ctx, func(ctx context.Context, tx neo4j.ManagedTransaction) (any, error) {
		records, err := collect(ctx, tx, cypher, params)
		if err != nil || len(records) == 0 {
			return false, err
		}
		return value[bool](records[0], "found"), nil
	})
	if err != nil {
		return false, err
	}
	return result.(bool), nil
}

func (r *userRepository) Block(ctx context.Context, userID, blockedID string) error {
	_, err := r.write(ctx, func(ctx context.Context, tx neo4j.ManagedTransaction) (any, error) {
		_, err := collect(ctx, tx, `
			MATCH (user:User {id: $userId}), (blocked:User {id: $blockedId})
			MERGE (user)-[b:BLOCKED]->(blocked)
			ON CREATE SET b.createdAt = datetime()`, map[string]any{"userId": userID, "blockedId": blockedID})
		return nil, err
	})
	return err
}

func (r *userRepository) Unblock(ctx context.Context, userID, blockedID string) error {
	_, err := r.write(ctx, func(ctx context.Context, tx neo4j.ManagedTransaction) (any, error) {
		_, err := collect(ctx, tx, `
			MATCH (:User {id: $userId})-[b:BLOCKED]->(:User {id: $blockedId})
			DELETE b`, map[string]any{"userId": userID, "blockedId": blockedID})
		return nil, err
	})
	return err
}

func (r *userRepository) BlockedUserIDs(ctx context.Context, userID string) ([]string, error) {
	return r.ids(ctx, `MATCH (:User {id: $id})-[:BLOCKED]->(u:User) RETURN u.id AS id`, userID)
}

func (r *userRepository) BlockedByUserIDs(ctx context.Context, userID string) ([]string, error) {
	return r.ids(ctx, `MATCH (:User {id: $id})<-[:BLOCKED]-(u:User) RETURN u.id AS id`, userID)
}

func (r *userRepository) ids(ctx context.Context, cypher, id string) ([]string, error) {
	result, err := r.read(ctx, func(ctx context.Context, tx neo4j.ManagedTransaction) (any, error) {
		records, err := collect(ctx, tx, cypher, map[string]any{"id": id})
		if err != nil {
			return nil, err
		}
		ids := make([]string, 0, len(records))
		for _, rec := range records {
			ids = append(ids, value[string](rec, "id"))
		}
		return ids, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]string), nil
}

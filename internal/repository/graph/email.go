package graph

import (
	"context"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"human-connection/internal/domain"
)

type emailRepository struct {
	*store
}

func (r *emailRepository) EmailTaken(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `
		MATCH (u:User) WHERE toLower(u.email) = toLower($email)
		RETURN count(u) > 0 AS found`, map[string]any{"email": email})
}

func (r *emailRepository) CreateRequest(ctx context.Context, req *domain.EmailAddress) error {
	_, err := r.write(ctx, func(ctx context.Context, tx neo4j.ManagedTransaction) (any, error) {
		records, err := collect(ctx, tx, `
			MATCH (u:User {id: $userId})
			MERGE (u)<-[:BELONGS_TO]-(e:EmailAddressRequest {email: toLower($email)})
			SET e.nonce = $nonce, e.createdAt = datetime()
			RETURN e`, map[string]any{"userId": req.UserID, "email": req.Email, "nonce": req.Nonce})
		if err != nil {
			return nil, err
		}
		if len(records) == 0 {
			return nil, domain.ErrNotFound
		}
		p, _ := propsOf(records[0], "e")
		req.CreatedAt = p.at("createdAt")
		return nil, nil
	})
	return err
}

func (r *emailRepository) Verify(ctx context.Context, userID, email, nonce string) (*domain.EmailAddress, error) {
	result, err := r.write(ctx, func(ctx context.Context, tx neo4j.ManagedTransaction) (any, error) {
		records, err := collect(ctx, tx, `
			MATCH (u:User {id: $userId})<-[:BELONGS_TO]-(e:EmailAddressRequest {email: toLower($email), nonce: $nonce})
			WITH u, e, e.email AS email, e.createdAt AS createdAt
			DETACH DELETE e
			SET u.email = email, u.updatedAt = datetime()
			RETURN email, createdAt, u.updatedAt AS verifiedAt`, map[string]any{
			"userId": userID, "email": email, "nonce": nonce,
		})
		if err != nil || len(records) == 0 {
			return nil, err
		}
		rec := records[0]
		verifiedAt := value[time.Time](rec, "verifiedAt")
		return &domain.EmailAddress{
			Email:      value[string](rec, "email"),
			UserID:     userID,
			Nonce:      nonce,
			CreatedAt:  value[time.Time](rec, "createdAt"),
			VerifiedAt: &verifiedAt,
		}, nil
	})
	if err != nil {
		return nil, constraintError(err, "email", domain.ErrEmailExists)
	}
	if result == nil {
		return nil, nil
	}
	return result.(*domain.EmailAddress), nil
}

// Package graph implements the repository interfaces on top of Neo4j.
package graph

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/saulfrancisco-ruizacevedo/gocypher"

	"human-connection/internal/domain"
	"human-connection/internal/repository"
)

const constraintViolation = "Neo.ClientError.Schema.ConstraintValidationFailed"

type store struct {
	driver   neo4j.DriverWithContext
	database string
}

// NewRepositories wires every repository to the same driver and database.
func NewRepositories(driver neo4j.DriverWithContext, database string) *repository.Repositories {
	s := &store{driver: driver, database: database}
	return &repository.Repositories{
		User:         &userRepository{s},
		Post:         &postRepository{s},
		Comment:      &commentRepository{s},
		Notification: &notificationRepository{s},
		Moderation:   &moderationRepository{s},
		Email:        &emailRepository{s},
	}
}

var schema = []string{
	`CREATE CONSTRAINT user_id IF NOT EXISTS FOR (u:User) REQUIRE u.id IS UNIQUE`,
	`CREATE CONSTRAINT user_slug IF NOT EXISTS FOR (u:User) REQUIRE u.slug IS UNIQUE`,
	`CREATE CONSTRAINT user_email IF NOT EXISTS FOR (u:User) REQUIRE u.email IS UNIQUE`,
	`CREATE CONSTRAINT post_id IF NOT EXISTS FOR (p:Post) REQUIRE p.id IS UNIQUE`,
	`CREATE CONSTRAINT post_slug IF NOT EXISTS FOR (p:Post) REQUIRE p.slug IS UNIQUE`,
	`CREATE CONSTRAINT comment_id IF NOT EXISTS FOR (c:Comment) REQUIRE c.id IS UNIQUE`,
	`CREATE CONSTRAINT category_id IF NOT EXISTS FOR (c:Category) REQUIRE c.id IS UNIQUE`,
}

// EnsureSchema creates the uniqueness constraints the repositories rely on.
func EnsureSchema(ctx context.Context, driver neo4j.DriverWithContext, database string) error {
	for _, stmt := range schema {
		_, err := neo4j.ExecuteQuery(ctx, driver, stmt, nil,
			neo4j.EagerResultTransformer, neo4j.ExecuteQueryWithDatabase(database))
		if err != nil {
			return fmt.Errorf("apply %q: %w", stmt, err)
		}
	}
	return nil
}

type work func(ctx context.Context, tx neo4j.ManagedTransaction) (any, error)

func (s *store) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.database, AccessMode: mode})
}

func (s *store) write(ctx context.Context, fn work) (any, error) {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	return session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return fn(ctx, tx)
	})
}

func (s *store) read(ctx context.Context, fn work) (any, error) {
	session := s.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	return session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return fn(ctx, tx)
	})
}

func collect(ctx context.Context, tx neo4j.ManagedTransaction, cypher string, params map[string]any) ([]*neo4j.Record, error) {
	result, err := tx.Run(ctx, cypher, params)
	if err != nil {
		return nil, err
	}
	return result.Collect(ctx)
}

// lookup runs a single built query outside an explicit session.
func (s *store) lookup(ctx context.Context, qb *gocypher.QueryBuilder) ([]*neo4j.Record, error) {
	cypher, params, err := qb.Build()
	if err != nil {
		return nil, err
	}
	result, err := neo4j.ExecuteQuery(ctx, s.driver, cypher, params,
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(s.database),
		neo4j.ExecuteQueryWithReadersRouting(),
	)
	if err != nil {
		return nil, err
	}
	return result.Records, nil
}

// constraintError maps a uniqueness violation on the given property to
// target, leaving other errors untouched.
func constraintError(err error, property string, target error) error {
	var neoErr *neo4j.Neo4jError
	if errors.As(err, &neoErr) && neoErr.Code == constraintViolation &&
		strings.Contains(neoErr.Msg, "property `"+property+"`") {
		return target
	}
	return err
}

func kindLabel(kind domain.EntityKind) (string, error) {
	if !kind.IsValid() {
		return "", fmt.Errorf("unknown resource kind %q", kind)
	}
	return string(kind), nil
}

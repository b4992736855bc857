package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"human-connection/internal/domain"
)

type moderationRepository struct {
	*store
}

func (r *moderationRepository) Report(ctx context.Context, report *domain.Report) (*domain.Report, error) {
	result, err := r.write(ctx, func(ctx context.Context, tx neo4j.ManagedTransaction) (any, error) {
		records, err := collect(ctx, tx, `
			MATCH (reporter:User {id: $reporterId})
			MATCH (resource {id: $resourceId}) WHERE resource:Post OR resource:Comment OR resource:User
			MERGE (reporter)-[report:REPORTED]->(resource)
			ON CREATE SET report.reasonCategory = $reasonCategory,
				report.reasonDescription = $reasonDescription,
				report.createdAt = datetime()
			RETURN report, head(labels(resource)) AS resourceKind`, map[string]any{
			"reporterId":        report.ReporterID,
			"resourceId":        report.ResourceID,
			"reasonCategory":    string(report.ReasonCategory),
			"reasonDescription": report.ReasonDescription,
		})
		if err != nil || len(records) == 0 {
			return nil, err
		}
		p, _ := propsOf(records[0], "report")
		return &domain.Report{
			ReporterID:        report.ReporterID,
			ResourceKind:      domain.EntityKind(value[string](records[0], "resourceKind")),
			ResourceID:        report.ResourceID,
			ReasonCategory:    domain.ReasonCategory(p.str("reasonCategory")),
			ReasonDescription: p.str("reasonDescription"),
			CreatedAt:         p.at("createdAt"),
		}, nil
	})
	if err != nil || result == nil {
		return nil, err
	}
	return result.(*domain.Report), nil
}

func (r *moderationRepository) Disable(ctx context.Context, moderatorID string, target domain.ModerationTarget) (bool, error) {
	label, err := kindLabel(target.Kind)
	if err != nil {
		return false, err
	}
	return r.found(ctx, fmt.Sprintf(`
		MATCH (moderator:User {id: $moderatorId})
		MATCH (resource:%s {id: $id})
		MERGE (moderator)-[d:DISABLED]->(resource)
		ON CREATE SET d.createdAt = datetime()
		SET resource.disabled = true
		RETURN count(resource) > 0 AS found`, label),
		map[string]any{"moderatorId": moderatorID, "id": target.ID})
}

func (r *moderationRepository) Release(ctx context.Context, target domain.ModerationTarget) (bool, error) {
	label, err := kindLabel(target.Kind)
	if err != nil {
		return false, err
	}
	return r.found(ctx, fmt.Sprintf(`
		MATCH (resource:%s {id: $id})
		SET resource.disabled = false
		WITH resource
		OPTIONAL MATCH (:User)-[d:DISABLED]->(resource)
		DELETE d
		RETURN count(DISTINCT resource) > 0 AS found`, label),
		map[string]any{"id": target.ID})
}

func (r *moderationRepository) found(ctx context.Context, cypher string, params map[string]any) (bool, error) {
	result, err := r.write(ctx, func(ctx context.Context, tx neo4j.ManagedTransaction) (any, error) {
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

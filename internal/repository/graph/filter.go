package graph

import (
	"fmt"
	"strings"

	"human-connection/internal/domain"
	"human-connection/internal/repository"
)

// postWhere compiles a post query into a Cypher predicate over `p` and its
// `author`, collecting parameters along the way.
type postWhere struct {
	params map[string]any
}

func newPostWhere() *postWhere {
	return &postWhere{params: map[string]any{}}
}

func (w *postWhere) bind(v any) string {
	name := fmt.Sprintf("f%d", len(w.params))
	w.params[name] = v
	return "$" + name
}

func (w *postWhere) query(q repository.PostQuery) string {
	clauses := []string{"NOT coalesce(p.deleted, false)"}
	if !q.IncludeDisabled {
		clauses = append(clauses, "NOT coalesce(p.disabled, false)", "NOT coalesce(author.disabled, false)")
	}
	if search := strings.TrimSpace(q.Search); search != "" {
		ph := w.bind(strings.ToLower(search))
		clauses = append(clauses, fmt.Sprintf("(toLower(p.title) CONTAINS %s OR toLower(p.content) CONTAINS %s)", ph, ph))
	}
	clauses = append(clauses, w.filter(q.Filter))
	return strings.Join(clauses, " AND ")
}

func (w *postWhere) filter(f domain.PostFilter) string {
	var clauses []string

	if len(f.IDIn) > 0 {
		clauses = append(clauses, "p.id IN "+w.bind(f.IDIn))
	}
	if a := f.Author; a != nil {
		if a.ID != nil {
			clauses = append(clauses, "author.id = "+w.bind(*a.ID))
		}
		if len(a.IDIn) > 0 {
			clauses = append(clauses, "author.id IN "+w.bind(a.IDIn))
		}
	}
	if a := f.AuthorNot; a != nil {
		if a.ID != nil {
			clauses = append(clauses, "author.id <> "+w.bind(*a.ID))
		}
		if len(a.IDIn) > 0 {
			clauses = append(clauses, "NOT author.id IN "+w.bind(a.IDIn))
		}
	}
	if f.Pinned != nil {
		clauses = append(clauses, "coalesce(p.pinned, false) = "+w.bind(*f.Pinned))
	}
	if len(f.LanguageIn) > 0 {
		clauses = append(clauses, "p.language IN "+w.bind(f.LanguageIn))
	}
	if c := f.CategoriesSome; c != nil && len(c.IDIn) > 0 {
		clauses = append(clauses, "EXISTS { MATCH (p)-[:CATEGORIZED]->(category:Category) WHERE category.id IN "+w.bind(c.IDIn)+" }")
	}
	if len(f.OR) > 0 {
		parts := make([]string, len(f.OR))
		for i, sub := range f.OR {
			parts[i] = w.filter(sub)
		}
		clauses = append(clauses, "("+strings.Join(parts, " OR ")+")")
	}
	for _, sub := range f.AND {
		clauses = append(clauses, w.filter(sub))
	}

	if len(clauses) == 0 {
		return "true"
	}
	return "(" + strings.Join(clauses, " AND ") + ")"
}

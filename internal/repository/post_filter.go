package repository

import (
	"fmt"
	"strings"

	"github.com/lib/pq"

	"human-connection/internal/domain"
)

// PostQuery selects posts for the listing operations.
type PostQuery struct {
	Filter          domain.PostFilter
	Search          string
	IncludeDisabled bool
}

// postWhere compiles a PostQuery into a WHERE clause over `posts p`,
// appending positional arguments to args.
type postWhere struct {
	args []any
}

func (w *postWhere) bind(v any) string {
	w.args = append(w.args, v)
	return fmt.Sprintf("$%d", len(w.args))
}

func (w *postWhere) query(q PostQuery) string {
	clauses := []string{"p.deleted = FALSE"}
	if !q.IncludeDisabled {
		clauses = append(clauses, "p.disabled = FALSE", "u.disabled = FALSE")
	}
	if search := strings.TrimSpace(q.Search); search != "" {
		ph := w.bind("%" + escapeLike(search) + "%")
		clauses = append(clauses, fmt.Sprintf("(p.title ILIKE %s OR p.content ILIKE %s)", ph, ph))
	}
	clauses = append(clauses, w.filter(q.Filter))
	return strings.Join(clauses, " AND ")
}

func (w *postWhere) filter(f domain.PostFilter) string {
	var clauses []string

	if len(f.IDIn) > 0 {
		clauses = append(clauses, "p.post_id = ANY("+w.bind(pq.Array(f.IDIn))+")")
	}
	if a := f.Author; a != nil {
		if a.ID != nil {
			clauses = append(clauses, "p.author_id = "+w.bind(*a.ID))
		}
		if len(a.IDIn) > 0 {
			clauses = append(clauses, "p.author_id = ANY("+w.bind(pq.Array(a.IDIn))+")")
		}
	}
	if a := f.AuthorNot; a != nil {
		if a.ID != nil {
			clauses = append(clauses, "p.author_id <> "+w.bind(*a.ID))
		}
		if len(a.IDIn) > 0 {
			clauses = append(clauses, "NOT (p.author_id = ANY("+w.bind(pq.Array(a.IDIn))+"))")
		}
	}
	if f.Pinned != nil {
		clauses = append(clauses, "p.pinned = "+w.bind(*f.Pinned))
	}
	if len(f.LanguageIn) > 0 {
		clauses = append(clauses, "p.language = ANY("+w.bind(pq.Array(f.LanguageIn))+")")
	}
	if c := f.CategoriesSome; c != nil && len(c.IDIn) > 0 {
		clauses = append(clauses, "EXISTS (SELECT 1 FROM post_categories pc WHERE pc.post_id = p.post_id AND pc.category_id = ANY("+w.bind(pq.Array(c.IDIn))+"))")
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
		return "TRUE"
	}
	return "(" + strings.Join(clauses, " AND ") + ")"
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

package graph

import (
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"human-connection/internal/domain"
)

type props map[string]any

// propsOf returns the properties of a node, relationship or map value.
func propsOf(rec *neo4j.Record, key string) (props, bool) {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return nil, false
	}
	switch e := v.(type) {
	case neo4j.Node:
		return e.Props, true
	case neo4j.Relationship:
		return e.Props, true
	case map[string]any:
		return e, true
	}
	return nil, false
}

func (p props) str(key string) string {
	s, _ := p[key].(string)
	return s
}

func (p props) strPtr(key string) *string {
	s, ok := p[key].(string)
	if !ok {
		return nil
	}
	return &s
}

func (p props) boolean(key string) bool {
	b, _ := p[key].(bool)
	return b
}

func (p props) integer(key string) int64 {
	n, _ := p[key].(int64)
	return n
}

func (p props) at(key string) time.Time {
	t, _ := p[key].(time.Time)
	return t
}

func (p props) atPtr(key string) *time.Time {
	t, ok := p[key].(time.Time)
	if !ok {
		return nil
	}
	return &t
}

func value[T any](rec *neo4j.Record, key string) T {
	var zero T
	v, ok := rec.Get(key)
	if !ok {
		return zero
	}
	t, _ := v.(T)
	return t
}

// optional unwraps a pointer for use as a query parameter.
func optional(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func userFrom(p props) *domain.User {
	return &domain.User{
		ID:           p.str("id"),
		Slug:         p.str("slug"),
		Name:         p.str("name"),
		Email:        p.str("email"),
		PasswordHash: p.str("passwordHash"),
		AvatarURL:    p.strPtr("avatar"),
		Role:         p.str("role"),
		Disabled:     p.boolean("disabled"),
		Deleted:      p.boolean("deleted"),
		CreatedAt:    p.at("createdAt"),
		UpdatedAt:    p.at("updatedAt"),
	}
}

func postFrom(p props) domain.Post {
	post := domain.Post{
		ID:             p.str("id"),
		AuthorID:       p.str("authorId"),
		Slug:           p.str("slug"),
		Title:          p.str("title"),
		Content:        p.str("content"),
		ContentExcerpt: p.str("contentExcerpt"),
		Image:          p.strPtr("image"),
		Language:       p.strPtr("language"),
		Deleted:        p.boolean("deleted"),
		Disabled:       p.boolean("disabled"),
		Pinned:         p.boolean("pinned"),
		PinnedAt:       p.atPtr("pinnedAt"),
		CreatedAt:      p.at("createdAt"),
		UpdatedAt:      p.at("updatedAt"),
		CommentsCount:  p.integer("commentsCount"),
		EmotionsCount:  p.integer("emotionsCount"),
	}
	if post.AuthorID != "" {
		post.Author = &domain.Author{ID: post.AuthorID, Slug: p.str("authorSlug"), Name: p.str("authorName")}
	}
	return post
}

func commentFrom(p props) domain.Comment {
	c := domain.Comment{
		ID:             p.str("id"),
		PostID:         p.str("postId"),
		AuthorID:       p.str("authorId"),
		Content:        p.str("content"),
		ContentExcerpt: p.str("contentExcerpt"),
		Deleted:        p.boolean("deleted"),
		Disabled:       p.boolean("disabled"),
		CreatedAt:      p.at("createdAt"),
		UpdatedAt:      p.at("updatedAt"),
	}
	if c.AuthorID != "" {
		c.Author = &domain.Author{ID: c.AuthorID, Slug: p.str("authorSlug"), Name: p.str("authorName")}
	}
	return c
}

package domain

import (
	"time"
)

// UnavailableContent replaces every text field of a deleted post.
const UnavailableContent = "UNAVAILABLE"

type Post struct {
	ID             string     `json:"id" db:"post_id"`
	AuthorID       string     `json:"-" db:"author_id"`
	Slug           string     `json:"slug" db:"slug"`
	Title          string     `json:"title" db:"title"`
	Content        string     `json:"content" db:"content"`
	ContentExcerpt string     `json:"contentExcerpt" db:"content_excerpt"`
	Image          *string    `json:"image" db:"image"`
	Language       *string    `json:"language" db:"language"`
	Deleted        bool       `json:"deleted" db:"deleted"`
	Disabled       bool       `json:"disabled" db:"disabled"`
	Pinned         bool       `json:"pinned" db:"pinned"`
	PinnedAt       *time.Time `json:"pinnedAt" db:"pinned_at"`
	CreatedAt      time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time  `json:"updatedAt" db:"updated_at"`

	// Visible comments only; emotions of every kind.
	CommentsCount int64 `json:"commentsCount" db:"comments_count"`
	EmotionsCount int64 `json:"emotionsCount" db:"emotions_count"`

	Author      *Author  `json:"author,omitempty" db:"-"`
	CategoryIDs []string `json:"categoryIds,omitempty" db:"-"`
}

func (p *Post) EntityID() string { return p.ID }

type CreatePostInput struct {
	ID          string   `json:"id,omitempty" validate:"omitempty,max=64"`
	Title       string   `json:"title" validate:"required,min=3,max=100"`
	Content     string   `json:"content" validate:"required,min=3"`
	Slug        *string  `json:"slug,omitempty" validate:"omitempty,min=2,max=120"`
	Image       *string  `json:"image,omitempty"`
	Language    *string  `json:"language,omitempty" validate:"omitempty,len=2"`
	CategoryIDs []string `json:"categoryIds,omitempty"`
}

type UpdatePostInput struct {
	ID          string   `json:"-"`
	Title       string   `json:"title" validate:"required,min=3,max=100"`
	Content     string   `json:"content" validate:"required,min=3"`
	Slug        *string  `json:"slug,omitempty" validate:"omitempty,min=2,max=120"`
	Image       *string  `json:"image,omitempty"`
	Language    *string  `json:"language,omitempty" validate:"omitempty,len=2"`
	CategoryIDs []string `json:"categoryIds,omitempty"`
}

// PostAddedTopic is the event bus topic carrying freshly created posts.
const PostAddedTopic = "post_added"

type PostAdded struct {
	Post *Post `json:"postAdded"`
}

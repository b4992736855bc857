package domain

import (
	"time"
)

type Comment struct {
	ID             string    `json:"id" db:"comment_id"`
	PostID         string    `json:"postId" db:"post_id"`
	AuthorID       string    `json:"-" db:"author_id"`
	Content        string    `json:"content" db:"content"`
	ContentExcerpt string    `json:"contentExcerpt" db:"content_excerpt"`
	Deleted        bool      `json:"deleted" db:"deleted"`
	Disabled       bool      `json:"disabled" db:"disabled"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`

	Author *Author `json:"author,omitempty" db:"-"`
}

func (c *Comment) EntityID() string { return c.ID }

type CreateCommentInput struct {
	ID      string `json:"id,omitempty" validate:"omitempty,max=64"`
	PostID  string `json:"-"`
	Content string `json:"content" validate:"required,min=1,max=2000"`
}

type UpdateCommentInput struct {
	ID      string `json:"-"`
	Content string `json:"content" validate:"required,min=1,max=2000"`
}

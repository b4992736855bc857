package domain

import (
	"time"
)

// EntityKind names the content label a notification hangs off.
type EntityKind string

const (
	KindPost    EntityKind = "Post"
	KindComment EntityKind = "Comment"
	KindUser    EntityKind = "User"
)

func (k EntityKind) IsValid() bool {
	switch k {
	case KindPost, KindComment, KindUser:
		return true
	}
	return false
}

type NotificationReason string

const (
	ReasonMentionedInPost    NotificationReason = "mentioned_in_post"
	ReasonMentionedInComment NotificationReason = "mentioned_in_comment"
	ReasonCommentedOnPost    NotificationReason = "commented_on_post"
)

func (r NotificationReason) IsValid() bool {
	switch r {
	case ReasonMentionedInPost, ReasonMentionedInComment, ReasonCommentedOnPost:
		return true
	}
	return false
}

// Fits reports whether a notification of this reason can originate from kind.
func (r NotificationReason) Fits(kind EntityKind) bool {
	switch kind {
	case KindPost:
		return r == ReasonMentionedInPost
	case KindComment:
		return r == ReasonMentionedInComment || r == ReasonCommentedOnPost
	}
	return false
}

type Notification struct {
	SourceKind EntityKind         `json:"sourceKind" db:"source_kind"`
	SourceID   string             `json:"sourceId" db:"source_id"`
	UserID     string             `json:"-" db:"user_id"`
	Reason     NotificationReason `json:"reason" db:"reason"`
	Read       bool               `json:"read" db:"read"`
	CreatedAt  time.Time          `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time          `json:"updatedAt" db:"updated_at"`

	Post    *Post    `json:"post,omitempty" db:"-"`
	Comment *Comment `json:"comment,omitempty" db:"-"`
}

type MarkAsReadInput struct {
	SourceID string             `json:"sourceId" validate:"required"`
	Reason   NotificationReason `json:"reason" validate:"required"`
}

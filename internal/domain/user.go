package domain

import (
	"time"
)

type User struct {
	ID           string    `json:"id" db:"user_id"`
	Slug         string    `json:"slug" db:"slug"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	AvatarURL    *string   `json:"avatar,omitempty" db:"avatar_url"`
	Role         string    `json:"role" db:"role"`
	Disabled     bool      `json:"disabled" db:"disabled"`
	Deleted      bool      `json:"deleted" db:"deleted"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// Author is the slim projection embedded in posts, comments and reactions.
type Author struct {
	ID   string `json:"id" db:"author_id"`
	Slug string `json:"slug" db:"author_slug"`
	Name string `json:"name" db:"author_name"`
}

type SignupInput struct {
	Name     string  `json:"name" validate:"required,min=3"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8"`
	Slug     *string `json:"slug,omitempty" validate:"omitempty,min=2,max=60"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type Token struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

type UserRole string

const (
	RoleUser      UserRole = "user"
	RoleModerator UserRole = "moderator"
	RoleAdmin     UserRole = "admin"
)

func (r UserRole) IsValid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	default:
		return false
	}
}

func (u *User) HasRole(requiredRole UserRole) bool {
	switch requiredRole {
	case RoleAdmin:
		return u.Role == string(RoleAdmin)
	case RoleModerator:
		return u.Role == string(RoleModerator) || u.Role == string(RoleAdmin)
	case RoleUser:
		return u.Role == string(RoleUser) || u.Role == string(RoleModerator) || u.Role == string(RoleAdmin)
	default:
		return false
	}
}

// Viewer identifies who is reading; the zero value is an anonymous visitor.
type Viewer struct {
	ID   string
	Role UserRole
}

func ViewerOf(u *User) Viewer {
	if u == nil {
		return Viewer{}
	}
	return Viewer{ID: u.ID, Role: UserRole(u.Role)}
}

func (v Viewer) IsAnonymous() bool {
	return v.ID == ""
}

func (v Viewer) CanSeeDisabled() bool {
	return v.Role == RoleModerator || v.Role == RoleAdmin
}

package domain

import "errors"

var (
	ErrNotFound       = errors.New("record not found")
	ErrSlugExists     = errors.New("slug already exists")
	ErrEmailExists    = errors.New("email already exists")
	ErrForbidden      = errors.New("insufficient permissions")
	ErrInvalidEmotion = errors.New("invalid emotion")
)

package domain

import (
	"time"
)

type EmailAddress struct {
	Email      string     `json:"email" db:"email"`
	UserID     string     `json:"-" db:"user_id"`
	Nonce      string     `json:"-" db:"nonce"`
	CreatedAt  time.Time  `json:"createdAt" db:"created_at"`
	VerifiedAt *time.Time `json:"verifiedAt" db:"verified_at"`
}

type AddEmailAddressInput struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyEmailAddressInput struct {
	Email string `json:"email" validate:"required,email"`
	Nonce string `json:"nonce" validate:"required,len=6"`
}

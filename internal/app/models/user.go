package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UserAuth carries the credential fields needed for authentication flows.
// Password holds the bcrypt hash when loaded from the store.
type UserAuth struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// Claims is the JWT access-token payload.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

package models

import "github.com/google/uuid"

// User is the identity returned by GET /auth/me and POST /auth/register.
type User struct {
	ID        uuid.UUID  `json:"id"`
	Email     string     `json:"email"`
	Username  string     `json:"username"`
	CreatedAt Timestamp  `json:"created_at"`
	UpdatedAt *Timestamp `json:"updated_at,omitempty"`
	IsActive  bool       `json:"is_active"`
}

// UserRegister is the body of POST /auth/register.
type UserRegister struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserLogin is the body of POST /auth/login.
type UserLogin struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// GoogleLogin is the body of POST /auth/google-login.
type GoogleLogin struct {
	IDToken string `json:"id_token"`
}

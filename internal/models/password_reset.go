package models

import "time"

// PasswordReset is a single-use reset challenge. At most one live challenge
// exists per email; a new request overwrites the previous one.
type PasswordReset struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Email     string    `json:"email"`
	TokenHash string    `json:"-"` // sha256 of the raw token, hex
	Code      string    `json:"-"` // short human-readable code, sent by email
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

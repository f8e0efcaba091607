package models

import "time"

// OAuthAccount links a user to an external identity provider. Users created
// through an external provider have no password hash until they set one.
type OAuthAccount struct {
	ID                int64     `json:"id"`
	UserID            int64     `json:"user_id"`
	Provider          string    `json:"provider"`
	ProviderAccountID string    `json:"provider_account_id"`
	CreatedAt         time.Time `json:"created_at"`
}

package domain

import "time"

// Identity is the authenticated principal owned by the identity provider.
type Identity struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Session describes an issued bearer token.
type Session struct {
	Token      string
	TokenID    string
	IdentityID string
	ExpiresAt  time.Time
}

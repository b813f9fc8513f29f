package models

import "time"

// RefreshToken is one issued session. Token holds the plaintext only right
// after issuing; storage keeps its SHA-256.
type RefreshToken struct {
	UserID    string
	Token     string
	ExpiresAt time.Time
}

// Expired reports whether the token can no longer be exchanged at now.
func (t *RefreshToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

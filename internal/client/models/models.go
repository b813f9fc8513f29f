// Package models defines the client-side records kept in the local store and
// the in-memory state shared between services.
package models

import (
	"time"

	"github.com/dmitrijs2005/profilekeeper/internal/client/face"
)

// CachedCredential lets a user sign in while offline. Only a salted verifier
// of the password is kept; SealedSecret is present only when the user opted
// into silent re-authentication.
type CachedCredential struct {
	UserID       string
	Email        string
	Salt         []byte
	Verifier     []byte
	SealedSecret []byte
	LastLoginAt  time.Time
}

// HasSealedSecret reports whether silent re-authentication is possible.
func (c *CachedCredential) HasSealedSecret() bool {
	return len(c.SealedSecret) > 0
}

// EnrolledDescriptor is a user's reference face descriptor.
type EnrolledDescriptor struct {
	UserID     string
	Email      string
	Descriptor face.Descriptor
	UpdatedAt  int64
}

// ProfileFields are the user-editable profile attributes.
type ProfileFields struct {
	FullName string
	Phone    string
	Location string
	Bio      string
}

// ProfileRecord is the local copy of a user's profile. UpdatedAt is
// milliseconds since the epoch and is the only conflict tie-break.
type ProfileRecord struct {
	LocalID     string
	UserID      string
	Fields      ProfileFields
	UpdatedAt   int64
	PendingSync bool
}

// RemoteProfile is the profile as stored by the remote store.
type RemoteProfile struct {
	UserID    string
	Fields    ProfileFields
	UpdatedAt int64
}

// SyncStatus is broadcast by the sync engine.
type SyncStatus struct {
	IsSyncing    bool
	LastSyncTime *time.Time
	PendingCount int
	Err          error
}

// AuthMethod records how a session was established.
type AuthMethod string

const (
	AuthPassword AuthMethod = "password"
	AuthFace     AuthMethod = "face"
)

// Session is the in-memory authenticated session. Offline sessions carry no
// tokens.
type Session struct {
	UserID       string
	Email        string
	AccessToken  string
	RefreshToken string
	Offline      bool
	Method       AuthMethod
	StartedAt    time.Time
}

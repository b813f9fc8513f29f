package session

import "github.com/dmitrijs2005/profilekeeper/internal/client/models"

type State int

const (
	StateLoggedOut State = iota
	StateOnline
	StateOffline
)

func (s State) String() string {
	switch s {
	case StateOnline:
		return "online"
	case StateOffline:
		return "offline"
	default:
		return "logged out"
	}
}

// Snapshot is the coordinator state broadcast to subscribers.
type Snapshot struct {
	State         State
	ReauthPending bool
	Session       *models.Session
}

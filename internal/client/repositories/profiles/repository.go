// Package profiles persists the local copy of user profiles together with
// their pending-sync flag.
package profiles

import (
	"context"

	"github.com/dmitrijs2005/profilekeeper/internal/client/models"
)

// Repository keeps at most one record per user.
type Repository interface {
	// Upsert writes p. When a record for p.UserID exists its LocalID is kept
	// and copied back into p.
	Upsert(ctx context.Context, p *models.ProfileRecord) error
	GetByLocalID(ctx context.Context, localID string) (*models.ProfileRecord, error)
	GetByUserID(ctx context.Context, userID string) (*models.ProfileRecord, error)
	GetAll(ctx context.Context) ([]models.ProfileRecord, error)
	GetAllPending(ctx context.Context) ([]models.ProfileRecord, error)
	CountPending(ctx context.Context) (int, error)
	// MarkSynced clears the pending flag only if the record still has
	// updatedAt. It reports whether the flag was cleared.
	MarkSynced(ctx context.Context, localID string, updatedAt int64) (bool, error)
	// ApplyRemote stores a copy pulled from the remote store unless the local
	// record has a pending edit or is at least as new. It reports whether
	// anything was written.
	ApplyRemote(ctx context.Context, p *models.RemoteProfile) (bool, error)
	Delete(ctx context.Context, localID string) error
	Clear(ctx context.Context) error
}

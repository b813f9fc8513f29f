// Package credentials persists cached credentials used for offline sign-in.
package credentials

import (
	"context"

	"github.com/dmitrijs2005/profilekeeper/internal/client/models"
)

// Repository stores at most one credential per user; email is unique.
type Repository interface {
	Upsert(ctx context.Context, c *models.CachedCredential) error
	GetByUserID(ctx context.Context, userID string) (*models.CachedCredential, error)
	GetByEmail(ctx context.Context, email string) (*models.CachedCredential, error)
	GetAll(ctx context.Context) ([]models.CachedCredential, error)
	Delete(ctx context.Context, userID string) error
	Clear(ctx context.Context) error
}

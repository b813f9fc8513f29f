// Package profiles stores profile_details rows.
package profiles

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/profilekeeper/internal/server/models"
)

// ErrStale means an update carried an updated_at that is not newer than the
// stored one.
var ErrStale = errors.New("stored profile is newer")

type Repository interface {
	Get(ctx context.Context, userID string) (*models.Profile, error)
	// Insert fails with common.ErrorAlreadyExists when the user has a row.
	Insert(ctx context.Context, p *models.Profile) error
	// Update overwrites the row only if p is strictly newer. It returns
	// common.ErrorNotFound when there is no row and ErrStale when the row
	// is at least as new.
	Update(ctx context.Context, p *models.Profile) error
}

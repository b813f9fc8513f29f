package refreshtokens

import (
	"context"

	"github.com/dmitrijs2005/profilekeeper/internal/server/models"
)

// Repository stores refresh tokens by hash. A token is exchanged at most once.
type Repository interface {
	Create(ctx context.Context, t *models.RefreshToken) error

	// Consume removes the token and returns what was stored for it. An
	// unknown or already consumed token yields common.ErrorNotFound, so of
	// two concurrent calls only one succeeds.
	Consume(ctx context.Context, token string) (*models.RefreshToken, error)
}

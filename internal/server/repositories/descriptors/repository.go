package descriptors

import (
	"context"

	"github.com/dmitrijs2005/profilekeeper/internal/server/models"
)

type Repository interface {
	Get(ctx context.Context, userID string) (*models.Descriptor, error)
	Upsert(ctx context.Context, d *models.Descriptor) error
	List(ctx context.Context) ([]models.Descriptor, error)
}

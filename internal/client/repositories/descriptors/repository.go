// Package descriptors persists the local gallery of enrolled face descriptors.
package descriptors

import (
	"context"

	"github.com/dmitrijs2005/profilekeeper/internal/client/models"
)

// Repository keeps one descriptor per user.
type Repository interface {
	Upsert(ctx context.Context, d *models.EnrolledDescriptor) error
	GetByUserID(ctx context.Context, userID string) (*models.EnrolledDescriptor, error)
	GetAll(ctx context.Context) ([]models.EnrolledDescriptor, error)
	Delete(ctx context.Context, userID string) error
}

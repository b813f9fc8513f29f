package users

import (
	"context"

	"github.com/dmitrijs2005/profilekeeper/internal/server/models"
)

// Repository stores accounts. Emails arrive already normalized.
type Repository interface {
	// Create returns common.ErrorAlreadyExists when email is taken.
	Create(ctx context.Context, email string, passwordHash []byte) (*models.User, error)
	ByEmail(ctx context.Context, email string) (*models.User, error)
	ByID(ctx context.Context, id string) (*models.User, error)
}

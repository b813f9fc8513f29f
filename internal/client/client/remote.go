// Package client is the client's view of the remote store.
//
// RemoteStore is the transport-agnostic contract used by the services; the
// gRPC implementation lives in GRPCClient. Transport failures are reported as
// the sentinel errors in this package (ErrUnavailable, ErrUnauthorized,
// ErrConflict) or common.ErrorNotFound, so callers match them with errors.Is.
package client

import (
	"context"

	"github.com/dmitrijs2005/profilekeeper/internal/client/models"
)

// AuthResult is returned by a successful sign-in or sign-up.
type AuthResult struct {
	UserID       string
	Email        string
	AccessToken  string
	RefreshToken string
}

type RemoteStore interface {
	Ping(ctx context.Context) error

	SignUp(ctx context.Context, email, password string) (*AuthResult, error)
	SignIn(ctx context.Context, email, password string) (*AuthResult, error)
	SignOut(ctx context.Context) error

	GetProfile(ctx context.Context, userID string) (*models.RemoteProfile, error)
	InsertProfile(ctx context.Context, p *models.RemoteProfile) error
	UpdateProfile(ctx context.Context, userID string, p *models.RemoteProfile) error

	GetDescriptor(ctx context.Context, userID string) (*models.EnrolledDescriptor, error)
	UpsertDescriptor(ctx context.Context, d *models.EnrolledDescriptor) error
	ListDescriptors(ctx context.Context) ([]models.EnrolledDescriptor, error)

	Close() error
}

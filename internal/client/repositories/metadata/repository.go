// Package metadata stores small device-level key/value settings, such as the
// time of the last successful sync.
package metadata

import (
	"context"
	"time"
)

const KeyLastSync = "last_sync"

type Repository interface {
	// Get returns common.ErrorNotFound for an unknown key.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error

	// LastSync returns nil until SetLastSync has been called once.
	LastSync(ctx context.Context) (*time.Time, error)
	SetLastSync(ctx context.Context, at time.Time) error
}

// Package identity matches a captured face descriptor against enrolled
// galleries.
package identity

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/profilekeeper/internal/client/face"
	"github.com/dmitrijs2005/profilekeeper/internal/client/models"
	"github.com/dmitrijs2005/profilekeeper/internal/logging"
)

// DefaultThreshold is the largest Euclidean distance still considered a match
// (exclusive).
const DefaultThreshold = 0.7

var ErrNoMatch = errors.New("no matching identity")

type Source string

const (
	SourceLocal  Source = "local"
	SourceRemote Source = "remote"
)

type Match struct {
	UserID   string
	Email    string
	Distance float64
	Source   Source
}

// GalleryFunc fetches a gallery on demand (the remote one).
type GalleryFunc func(ctx context.Context) ([]models.EnrolledDescriptor, error)

// GalleryCache stores descriptors that matched remotely so the next lookup
// succeeds offline.
type GalleryCache interface {
	Upsert(ctx context.Context, d *models.EnrolledDescriptor) error
}

type Resolver struct {
	threshold float64
	cache     GalleryCache
	logger    logging.Logger
}

// NewResolver returns a resolver. threshold <= 0 selects DefaultThreshold;
// cache may be nil to disable cache-fill.
func NewResolver(cache GalleryCache, threshold float64, logger logging.Logger) *Resolver {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Resolver{
		threshold: threshold,
		cache:     cache,
		logger:    logging.OrDiscard(logger).With("module", "identity"),
	}
}

// Nearest scans gallery in order and returns the index of the first entry
// with the smallest distance strictly below threshold, or -1.
func Nearest(captured face.Descriptor, gallery []models.EnrolledDescriptor, threshold float64) (int, float64) {
	best, bestDist := -1, threshold
	for i := range gallery {
		if d := face.Euclidean(captured, gallery[i].Descriptor); d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return -1, 0
	}
	return best, bestDist
}

// Resolve looks in local first and consults remote only on a local miss.
// A remote match is written to the cache before returning. Remote failures
// are treated as a miss.
func (r *Resolver) Resolve(ctx context.Context, captured face.Descriptor, local []models.EnrolledDescriptor, remote GalleryFunc) (Match, error) {
	if err := captured.Validate(); err != nil {
		return Match{}, err
	}

	if i, d := Nearest(captured, local, r.threshold); i >= 0 {
		r.logger.Info(ctx, "local gallery match", "user_id", local[i].UserID, "distance", d)
		return Match{UserID: local[i].UserID, Email: local[i].Email, Distance: d, Source: SourceLocal}, nil
	}

	if remote == nil {
		return Match{}, ErrNoMatch
	}

	gallery, err := remote(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return Match{}, ctx.Err()
		}
		r.logger.Warn(ctx, "remote gallery unavailable", "error", err)
		return Match{}, ErrNoMatch
	}

	i, d := Nearest(captured, gallery, r.threshold)
	if i < 0 {
		return Match{}, ErrNoMatch
	}
	hit := gallery[i]
	r.logger.Info(ctx, "remote gallery match", "user_id", hit.UserID, "distance", d)

	if r.cache != nil {
		if err := r.cache.Upsert(ctx, &hit); err != nil {
			r.logger.Warn(ctx, "caching remote descriptor failed", "user_id", hit.UserID, "error", err)
		}
	}

	return Match{UserID: hit.UserID, Email: hit.Email, Distance: d, Source: SourceRemote}, nil
}

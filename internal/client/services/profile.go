package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/profilekeeper/internal/client/client"
	"github.com/dmitrijs2005/profilekeeper/internal/client/models"
	"github.com/dmitrijs2005/profilekeeper/internal/client/repositories/profiles"
	"github.com/dmitrijs2005/profilekeeper/internal/clock"
	"github.com/dmitrijs2005/profilekeeper/internal/common"
	"github.com/dmitrijs2005/profilekeeper/internal/logging"
)

// ProfileService edits the local profile copy. Every save marks the record
// pending; the sync engine pushes it later.
type ProfileService struct {
	profiles profiles.Repository
	remote   client.RemoteStore
	clock    clock.Clock
	logger   logging.Logger
}

func NewProfileService(repo profiles.Repository, remote client.RemoteStore, clk clock.Clock, logger logging.Logger) *ProfileService {
	if clk == nil {
		clk = clock.Real()
	}
	return &ProfileService{
		profiles: repo,
		remote:   remote,
		clock:    clk,
		logger:   logging.OrDiscard(logger).With("module", "profile"),
	}
}

// Get returns the local profile of userID, or common.ErrorNotFound.
func (s *ProfileService) Get(ctx context.Context, userID string) (*models.ProfileRecord, error) {
	return s.profiles.GetByUserID(ctx, userID)
}

// Save stores fields for userID and queues them for sync. UpdatedAt is the
// wall clock in milliseconds, bumped past the previous value if the clock
// went backwards.
func (s *ProfileService) Save(ctx context.Context, userID string, fields models.ProfileFields) (*models.ProfileRecord, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: empty user id", common.ErrorValidation)
	}

	updatedAt := s.clock.Now().UnixMilli()

	prev, err := s.profiles.GetByUserID(ctx, userID)
	switch {
	case err == nil:
		if updatedAt <= prev.UpdatedAt {
			updatedAt = prev.UpdatedAt + 1
		}
	case errors.Is(err, common.ErrorNotFound):
	default:
		return nil, fmt.Errorf("load profile: %w", err)
	}

	rec := &models.ProfileRecord{
		UserID:      userID,
		Fields:      fields,
		UpdatedAt:   updatedAt,
		PendingSync: true,
	}
	if err := s.profiles.Upsert(ctx, rec); err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}
	s.logger.Debug(ctx, "profile saved", "user_id", userID, "updated_at", updatedAt)
	return rec, nil
}

// Pull copies the remote profile of userID into the local store unless a
// local edit is pending or the local copy is at least as new. It reports
// whether the local copy changed.
func (s *ProfileService) Pull(ctx context.Context, userID string) (bool, error) {
	remote, err := s.remote.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return false, nil
		}
		return false, err
	}

	changed, err := s.profiles.ApplyRemote(ctx, remote)
	if err != nil {
		return false, err
	}
	if changed {
		s.logger.Info(ctx, "profile pulled from remote", "user_id", userID, "updated_at", remote.UpdatedAt)
	}
	return changed, nil
}

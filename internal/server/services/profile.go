package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/profilekeeper/internal/common"
	"github.com/dmitrijs2005/profilekeeper/internal/server/models"
	"github.com/dmitrijs2005/profilekeeper/internal/server/repositories/repomanager"
)

// ProfileService serves profile rows. Every call is scoped to callerID, the
// user carried by the access token.
type ProfileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewProfileService(db *sql.DB, m repomanager.RepositoryManager) *ProfileService {
	return &ProfileService{db: db, repomanager: m}
}

func checkOwner(callerID, userID string) error {
	if userID == "" {
		return fmt.Errorf("%w: user id is required", common.ErrorValidation)
	}
	if callerID != userID {
		return common.ErrorForbidden
	}
	return nil
}

func (s *ProfileService) Get(ctx context.Context, callerID, userID string) (*models.Profile, error) {
	if err := checkOwner(callerID, userID); err != nil {
		return nil, err
	}
	return s.repomanager.Profiles(s.db).Get(ctx, userID)
}

// Insert creates the caller's profile. An existing row yields
// common.ErrorAlreadyExists.
func (s *ProfileService) Insert(ctx context.Context, callerID string, p *models.Profile) error {
	if err := checkOwner(callerID, p.UserID); err != nil {
		return err
	}
	return s.repomanager.Profiles(s.db).Insert(ctx, p)
}

// Update overwrites the caller's profile when p is newer than the stored
// row; otherwise profiles.ErrStale is returned.
func (s *ProfileService) Update(ctx context.Context, callerID string, p *models.Profile) error {
	if err := checkOwner(callerID, p.UserID); err != nil {
		return err
	}
	return s.repomanager.Profiles(s.db).Update(ctx, p)
}

package services

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/dmitrijs2005/profilekeeper/internal/common"
	"github.com/dmitrijs2005/profilekeeper/internal/server/models"
	"github.com/dmitrijs2005/profilekeeper/internal/server/repositories/repomanager"
)

// DescriptorSize matches the face_descriptors column dimension.
const DescriptorSize = 128

type DescriptorService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewDescriptorService(db *sql.DB, m repomanager.RepositoryManager) *DescriptorService {
	return &DescriptorService{db: db, repomanager: m}
}

func (s *DescriptorService) Get(ctx context.Context, callerID, userID string) (*models.Descriptor, error) {
	if err := checkOwner(callerID, userID); err != nil {
		return nil, err
	}
	return s.repomanager.Descriptors(s.db).Get(ctx, userID)
}

func (s *DescriptorService) Upsert(ctx context.Context, callerID string, d *models.Descriptor) error {
	if err := checkOwner(callerID, d.UserID); err != nil {
		return err
	}
	if len(d.Values) != DescriptorSize {
		return fmt.Errorf("%w: descriptor has %d values, want %d", common.ErrorValidation, len(d.Values), DescriptorSize)
	}
	for _, v := range d.Values {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return fmt.Errorf("%w: descriptor has non-finite values", common.ErrorValidation)
		}
	}
	return s.repomanager.Descriptors(s.db).Upsert(ctx, d)
}

// List returns the whole gallery. It is served without authentication
// because face login runs before any session exists.
func (s *DescriptorService) List(ctx context.Context) ([]models.Descriptor, error) {
	return s.repomanager.Descriptors(s.db).List(ctx)
}

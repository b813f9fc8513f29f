package profiles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/profilekeeper/internal/common"
	"github.com/dmitrijs2005/profilekeeper/internal/dbx"
	"github.com/dmitrijs2005/profilekeeper/internal/server/models"
	"github.com/dmitrijs2005/profilekeeper/internal/server/repositories/pgerr"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, userID string) (*models.Profile, error) {
	query := `
		SELECT user_id, full_name, phone, location, bio, updated_at
		FROM profile_details
		WHERE user_id = $1
	`
	p := &models.Profile{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&p.UserID, &p.FullName, &p.Phone, &p.Location, &p.Bio, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) Insert(ctx context.Context, p *models.Profile) error {
	query := `
		INSERT INTO profile_details (user_id, full_name, phone, location, bio, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query, p.UserID, p.FullName, p.Phone, p.Location, p.Bio, p.UpdatedAt)
	if err != nil {
		if pgerr.IsUniqueViolation(err) {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, p *models.Profile) error {
	return dbx.WithTxIfPossible(ctx, r.db, func(ctx context.Context, tx dbx.DBTX) error {
		query := `
			UPDATE profile_details
			SET full_name = $2, phone = $3, location = $4, bio = $5, updated_at = $6
			WHERE user_id = $1 AND updated_at < $6
		`
		res, err := tx.ExecContext(ctx, query, p.UserID, p.FullName, p.Phone, p.Location, p.Bio, p.UpdatedAt)
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		if n > 0 {
			return nil
		}

		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM profile_details WHERE user_id = $1)`, p.UserID).Scan(&exists); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		if !exists {
			return common.ErrorNotFound
		}
		return ErrStale
	})
}

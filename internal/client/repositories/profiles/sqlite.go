package profiles

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/profilekeeper/internal/client/models"
	"github.com/dmitrijs2005/profilekeeper/internal/common"
	"github.com/dmitrijs2005/profilekeeper/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const selectProfile = `SELECT local_id, user_id, full_name, phone, location, bio, updated_at, pending_sync FROM profiles`

func (r *SQLiteRepository) Upsert(ctx context.Context, p *models.ProfileRecord) error {
	return dbx.WithTxIfPossible(ctx, r.db, func(ctx context.Context, tx dbx.DBTX) error {
		var existing string
		err := tx.QueryRowContext(ctx, `SELECT local_id FROM profiles WHERE user_id = ?`, p.UserID).Scan(&existing)
		switch err = dbx.NotFound("failed to look up profile", err); {
		case err == nil:
			p.LocalID = existing
		case errors.Is(err, common.ErrorNotFound):
			if p.LocalID == "" {
				p.LocalID = uuid.NewString()
			}
		default:
			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO profiles (local_id, user_id, full_name, phone, location, bio, updated_at, pending_sync)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(local_id) DO UPDATE SET
				full_name = excluded.full_name,
				phone = excluded.phone,
				location = excluded.location,
				bio = excluded.bio,
				updated_at = excluded.updated_at,
				pending_sync = excluded.pending_sync
		`, p.LocalID, p.UserID, p.Fields.FullName, p.Fields.Phone, p.Fields.Location, p.Fields.Bio, p.UpdatedAt, p.PendingSync)
		if err != nil {
			return fmt.Errorf("failed to upsert profile: %w", err)
		}
		return nil
	})
}

func (r *SQLiteRepository) GetByLocalID(ctx context.Context, localID string) (*models.ProfileRecord, error) {
	return r.getOne(ctx, selectProfile+` WHERE local_id = ?`, localID)
}

func (r *SQLiteRepository) GetByUserID(ctx context.Context, userID string) (*models.ProfileRecord, error) {
	return r.getOne(ctx, selectProfile+` WHERE user_id = ?`, userID)
}

func (r *SQLiteRepository) getOne(ctx context.Context, query, arg string) (*models.ProfileRecord, error) {
	var p models.ProfileRecord
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&p.LocalID, &p.UserID, &p.Fields.FullName, &p.Fields.Phone, &p.Fields.Location, &p.Fields.Bio, &p.UpdatedAt, &p.PendingSync)
	if err != nil {
		return nil, dbx.NotFound("failed to get profile", err)
	}
	return &p, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.ProfileRecord, error) {
	return r.list(ctx, selectProfile+` ORDER BY updated_at, local_id`)
}

// GetAllPending returns pending records oldest edit first.
func (r *SQLiteRepository) GetAllPending(ctx context.Context) ([]models.ProfileRecord, error) {
	return r.list(ctx, selectProfile+` WHERE pending_sync = 1 ORDER BY updated_at, local_id`)
}

func (r *SQLiteRepository) list(ctx context.Context, query string) ([]models.ProfileRecord, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select profiles: %w", err)
	}
	defer rows.Close()

	var result []models.ProfileRecord
	for rows.Next() {
		var p models.ProfileRecord
		if err := rows.Scan(&p.LocalID, &p.UserID, &p.Fields.FullName, &p.Fields.Phone, &p.Fields.Location, &p.Fields.Bio, &p.UpdatedAt, &p.PendingSync); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate profiles: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) CountPending(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles WHERE pending_sync = 1`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count pending profiles: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, localID string, updatedAt int64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE profiles SET pending_sync = 0 WHERE local_id = ? AND updated_at = ?`, localID, updatedAt)
	if err != nil {
		return false, fmt.Errorf("failed to mark profile synced: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to mark profile synced: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) ApplyRemote(ctx context.Context, p *models.RemoteProfile) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO profiles (local_id, user_id, full_name, phone, location, bio, updated_at, pending_sync)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0)
		ON CONFLICT(user_id) DO UPDATE SET
			full_name = excluded.full_name,
			phone = excluded.phone,
			location = excluded.location,
			bio = excluded.bio,
			updated_at = excluded.updated_at
		WHERE profiles.pending_sync = 0 AND profiles.updated_at < excluded.updated_at
	`, uuid.NewString(), p.UserID, p.Fields.FullName, p.Fields.Phone, p.Fields.Location, p.Fields.Bio, p.UpdatedAt)
	if err != nil {
		return false, fmt.Errorf("failed to apply remote profile: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to apply remote profile: %w", err)
	}
	return n > 0, nil
}

// Delete returns common.ErrorNotFound when localID does not exist.
func (r *SQLiteRepository) Delete(ctx context.Context, localID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM profiles WHERE local_id = ?`, localID)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	return dbx.RequireAffected(res)
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM profiles`); err != nil {
		return fmt.Errorf("failed to clear profiles: %w", err)
	}
	return nil
}

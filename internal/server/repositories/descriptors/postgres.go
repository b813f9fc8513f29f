package descriptors

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/dmitrijs2005/profilekeeper/internal/dbx"
	"github.com/dmitrijs2005/profilekeeper/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, userID string) (*models.Descriptor, error) {
	query := `
		SELECT d.user_id, u.email, d.descriptor, d.updated_at
		FROM face_descriptors d
		JOIN users u ON u.id = d.user_id
		WHERE d.user_id = $1
	`
	var (
		d   models.Descriptor
		vec pgvector.Vector
	)
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&d.UserID, &d.Email, &vec, &d.UpdatedAt)
	if err != nil {
		return nil, dbx.NotFound("db error", err)
	}
	d.Values = vec.Slice()
	return &d, nil
}

// Upsert replaces the caller's descriptor. A row is only overwritten by a
// write with a newer or equal timestamp.
func (r *PostgresRepository) Upsert(ctx context.Context, d *models.Descriptor) error {
	query := `
		INSERT INTO face_descriptors (user_id, descriptor, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET
			descriptor = EXCLUDED.descriptor,
			updated_at = EXCLUDED.updated_at
		WHERE face_descriptors.updated_at <= EXCLUDED.updated_at
	`
	_, err := r.db.ExecContext(ctx, query, d.UserID, pgvector.NewVector(d.Values), d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]models.Descriptor, error) {
	query := `
		SELECT d.user_id, u.email, d.descriptor, d.updated_at
		FROM face_descriptors d
		JOIN users u ON u.id = d.user_id
		ORDER BY d.updated_at, d.user_id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.Descriptor
	for rows.Next() {
		var (
			d   models.Descriptor
			vec pgvector.Vector
		)
		if err := rows.Scan(&d.UserID, &d.Email, &vec, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		d.Values = vec.Slice()
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return result, nil
}

package descriptors

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/dmitrijs2005/profilekeeper/internal/client/face"
	"github.com/dmitrijs2005/profilekeeper/internal/client/models"
	"github.com/dmitrijs2005/profilekeeper/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Upsert(ctx context.Context, d *models.EnrolledDescriptor) error {
	if err := d.Descriptor.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO descriptors (user_id, email, descriptor, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			email = excluded.email,
			descriptor = excluded.descriptor,
			updated_at = excluded.updated_at
	`, d.UserID, d.Email, encode(d.Descriptor), d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert descriptor: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByUserID(ctx context.Context, userID string) (*models.EnrolledDescriptor, error) {
	var d models.EnrolledDescriptor
	var blob []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, email, descriptor, updated_at FROM descriptors WHERE user_id = ?`, userID).
		Scan(&d.UserID, &d.Email, &blob, &d.UpdatedAt)
	if err != nil {
		return nil, dbx.NotFound("failed to get descriptor", err)
	}
	if d.Descriptor, err = decode(blob); err != nil {
		return nil, err
	}
	return &d, nil
}

// GetAll returns the gallery in a stable order (by user id).
func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.EnrolledDescriptor, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT user_id, email, descriptor, updated_at FROM descriptors ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list descriptors: %w", err)
	}
	defer rows.Close()

	var result []models.EnrolledDescriptor
	for rows.Next() {
		var d models.EnrolledDescriptor
		var blob []byte
		if err := rows.Scan(&d.UserID, &d.Email, &blob, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan descriptor: %w", err)
		}
		if d.Descriptor, err = decode(blob); err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate descriptors: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, userID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM descriptors WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete descriptor: %w", err)
	}
	return dbx.RequireAffected(res)
}

// encode packs d as little-endian float32s.
func encode(d face.Descriptor) []byte {
	buf := make([]byte, 4*len(d))
	for i, v := range d {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}

func decode(b []byte) (face.Descriptor, error) {
	if len(b) != 4*face.DescriptorSize {
		return nil, fmt.Errorf("%w: stored blob is %d bytes", face.ErrDescriptorSize, len(b))
	}
	d := make(face.Descriptor, face.DescriptorSize)
	for i := range d {
		d[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return d, nil
}

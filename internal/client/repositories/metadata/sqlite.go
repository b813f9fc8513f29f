package metadata

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/profilekeeper/internal/common"
	"github.com/dmitrijs2005/profilekeeper/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var v []byte
	row := r.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key)
	if err := row.Scan(&v); err != nil {
		return nil, dbx.NotFound("read setting "+key, err)
	}
	return v, nil
}

func (r *SQLiteRepository) Set(ctx context.Context, key string, value []byte) error {
	const upsert = `INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	if _, err := r.db.ExecContext(ctx, upsert, key, value); err != nil {
		return fmt.Errorf("write setting %s: %w", key, err)
	}
	return nil
}

// Delete is a no-op for an unknown key.
func (r *SQLiteRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM metadata WHERE key = ?`, key); err != nil {
		return fmt.Errorf("remove setting %s: %w", key, err)
	}
	return nil
}

func (r *SQLiteRepository) LastSync(ctx context.Context) (*time.Time, error) {
	raw, err := r.Get(ctx, KeyLastSync)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339Nano, string(raw))
	if err != nil {
		return nil, fmt.Errorf("malformed %s %q: %w", KeyLastSync, raw, err)
	}
	return &t, nil
}

// SetLastSync stores at in UTC.
func (r *SQLiteRepository) SetLastSync(ctx context.Context, at time.Time) error {
	return r.Set(ctx, KeyLastSync, []byte(at.UTC().Format(time.RFC3339Nano)))
}

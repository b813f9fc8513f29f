package credentials

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/profilekeeper/internal/client/models"
	"github.com/dmitrijs2005/profilekeeper/internal/dbx"
	"github.com/dmitrijs2005/profilekeeper/internal/timex"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const selectCredential = `SELECT user_id, email, salt, verifier, sealed_secret, last_login_at FROM credentials`

// Upsert inserts or replaces the credential for c.UserID. A row cached under
// the same email for a different user id is replaced as well.
func (r *SQLiteRepository) Upsert(ctx context.Context, c *models.CachedCredential) error {
	return dbx.WithTxIfPossible(ctx, r.db, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM credentials WHERE email = ? AND user_id <> ?`, normalize(c.Email), c.UserID); err != nil {
			return fmt.Errorf("failed to evict stale credential: %w", err)
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO credentials (user_id, email, salt, verifier, sealed_secret, last_login_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(user_id) DO UPDATE SET
				email = excluded.email,
				salt = excluded.salt,
				verifier = excluded.verifier,
				sealed_secret = excluded.sealed_secret,
				last_login_at = excluded.last_login_at
		`, c.UserID, normalize(c.Email), c.Salt, c.Verifier, nullBytes(c.SealedSecret), timex.UnixMilli(c.LastLoginAt))
		if err != nil {
			return fmt.Errorf("failed to upsert credential: %w", err)
		}
		return nil
	})
}

func (r *SQLiteRepository) GetByUserID(ctx context.Context, userID string) (*models.CachedCredential, error) {
	return r.getOne(ctx, selectCredential+` WHERE user_id = ?`, userID)
}

// GetByEmail matches case-insensitively.
func (r *SQLiteRepository) GetByEmail(ctx context.Context, email string) (*models.CachedCredential, error) {
	return r.getOne(ctx, selectCredential+` WHERE email = ?`, normalize(email))
}

func (r *SQLiteRepository) getOne(ctx context.Context, query string, arg string) (*models.CachedCredential, error) {
	var c models.CachedCredential
	var lastLogin int64
	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&c.UserID, &c.Email, &c.Salt, &c.Verifier, &c.SealedSecret, &lastLogin)
	if err != nil {
		return nil, dbx.NotFound("failed to get credential", err)
	}
	c.LastLoginAt = timex.FromUnixMilli(lastLogin)
	return &c, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.CachedCredential, error) {
	rows, err := r.db.QueryContext(ctx, selectCredential+` ORDER BY last_login_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list credentials: %w", err)
	}
	defer rows.Close()

	var result []models.CachedCredential
	for rows.Next() {
		var c models.CachedCredential
		var lastLogin int64
		if err := rows.Scan(&c.UserID, &c.Email, &c.Salt, &c.Verifier, &c.SealedSecret, &lastLogin); err != nil {
			return nil, fmt.Errorf("failed to scan credential: %w", err)
		}
		c.LastLoginAt = timex.FromUnixMilli(lastLogin)
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate credentials: %w", err)
	}
	return result, nil
}

// Delete returns common.ErrorNotFound when nothing is cached for userID.
func (r *SQLiteRepository) Delete(ctx context.Context, userID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM credentials WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	return dbx.RequireAffected(res)
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM credentials`); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	return nil
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func nullBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}

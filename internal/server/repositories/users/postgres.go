// Package users persists accounts in PostgreSQL.
package users

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/profilekeeper/internal/common"
	"github.com/dmitrijs2005/profilekeeper/internal/dbx"
	"github.com/dmitrijs2005/profilekeeper/internal/server/models"
	"github.com/dmitrijs2005/profilekeeper/internal/server/repositories/pgerr"
)

const selectUser = `SELECT id, email, password_hash, created_at FROM users`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, email string, passwordHash []byte) (*models.User, error) {
	u := &models.User{Email: email, PasswordHash: passwordHash}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO users (email, password_hash) VALUES ($1, $2) RETURNING id, created_at`,
		email, passwordHash).Scan(&u.ID, &u.CreatedAt)
	switch {
	case err == nil:
		return u, nil
	case pgerr.IsUniqueViolation(err):
		return nil, common.ErrorAlreadyExists
	default:
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
}

func (r *PostgresRepository) ByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.one(ctx, selectUser+` WHERE email = $1`, email)
}

func (r *PostgresRepository) ByID(ctx context.Context, id string) (*models.User, error) {
	return r.one(ctx, selectUser+` WHERE id = $1`, id)
}

func (r *PostgresRepository) one(ctx context.Context, query, arg string) (*models.User, error) {
	var u models.User
	if err := r.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
		return nil, dbx.NotFound("failed to load user", err)
	}
	return &u, nil
}

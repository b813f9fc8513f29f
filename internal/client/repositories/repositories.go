// Package repositories opens the local SQLite store and wires the
// per-collection repositories on top of it.
package repositories

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/profilekeeper/internal/client/migrations"
	"github.com/dmitrijs2005/profilekeeper/internal/client/repositories/credentials"
	"github.com/dmitrijs2005/profilekeeper/internal/client/repositories/descriptors"
	"github.com/dmitrijs2005/profilekeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/profilekeeper/internal/client/repositories/profiles"
	"github.com/dmitrijs2005/profilekeeper/internal/filex"
)

// Repositories groups the local store collections over one database.
type Repositories struct {
	DB          *sql.DB
	Credentials credentials.Repository
	Profiles    profiles.Repository
	Descriptors descriptors.Repository
	Metadata    metadata.Repository
}

// DSN builds a modernc.org/sqlite DSN for path with the pragmas every
// connection needs.
func DSN(path string) string {
	return "file:" + path +
		"?_pragma=foreign_keys(1)" +
		"&_pragma=busy_timeout(5000)" +
		"&_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)"
}

// Open opens (creating if needed) the database at path and migrates it.
func Open(ctx context.Context, path string) (*Repositories, error) {
	if _, err := filex.EnsureParentDir(path); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	db, err := sql.Open("sqlite", DSN(path))
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open local store: %w", err)
	}
	if err := migrations.Up(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return New(db), nil
}

// New wires repositories over an already migrated database.
func New(db *sql.DB) *Repositories {
	return &Repositories{
		DB:          db,
		Credentials: credentials.NewSQLiteRepository(db),
		Profiles:    profiles.NewSQLiteRepository(db),
		Descriptors: descriptors.NewSQLiteRepository(db),
		Metadata:    metadata.NewSQLiteRepository(db),
	}
}

func (r *Repositories) Close() error {
	return r.DB.Close()
}

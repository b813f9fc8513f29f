package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/profilekeeper/internal/dbx"
	"github.com/dmitrijs2005/profilekeeper/internal/server/repositories/descriptors"
	"github.com/dmitrijs2005/profilekeeper/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/profilekeeper/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/profilekeeper/internal/server/repositories/users"
)

// RepositoryManager binds each repository to a *sql.DB or an open
// transaction, so services can run several of them in one tx.
type RepositoryManager interface {
	// RunMigrations brings the schema up to date before serving.
	RunMigrations(ctx context.Context, db *sql.DB) error

	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Profiles(db dbx.DBTX) profiles.Repository
	Descriptors(db dbx.DBTX) descriptors.Repository
}

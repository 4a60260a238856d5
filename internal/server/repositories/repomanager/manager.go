package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/mycloud/internal/dbx"
	"github.com/dmitrijs2005/mycloud/internal/server/repositories/files"
	"github.com/dmitrijs2005/mycloud/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/mycloud/internal/server/repositories/users"
)

// RepositoryManager vends repository implementations bound to an arbitrary
// DBTX, so services can run them against the root connection or inside a
// transaction opened with dbx.WithTx.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Files(db dbx.DBTX) files.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
}

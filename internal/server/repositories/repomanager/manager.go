package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/gentlepol/internal/dbx"
	"github.com/dmitrijs2005/gentlepol/internal/server/repositories/feeds"
	"github.com/dmitrijs2005/gentlepol/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/gentlepol/internal/server/repositories/users"
)

// RepositoryManager hands out repositories bound to a connection or to a
// running transaction, so services decide the transaction boundaries.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Sessions(db dbx.DBTX) sessions.Repository
	Feeds(db dbx.DBTX) feeds.Repository
}

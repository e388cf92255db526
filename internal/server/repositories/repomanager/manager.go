package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/daleavatar/internal/dbx"
	"github.com/dmitrijs2005/daleavatar/internal/server/repositories/recordings"
	"github.com/dmitrijs2005/daleavatar/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Recordings(db dbx.DBTX) recordings.Repository
}

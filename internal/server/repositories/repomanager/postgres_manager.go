// Package repomanager vends the PostgreSQL repositories bound to a DBTX
// and applies the embedded schema migrations with goose.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/daleavatar/internal/dbx"
	"github.com/dmitrijs2005/daleavatar/internal/server/migrations"
	"github.com/dmitrijs2005/daleavatar/internal/server/repositories/recordings"
	"github.com/dmitrijs2005/daleavatar/internal/server/repositories/users"
)

type PostgresRepositoryManager struct{}

// Users returns a users.Repository bound to db, which may be a transaction.
func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

// Recordings returns a recordings.Repository bound to db.
func (m *PostgresRepositoryManager) Recordings(db dbx.DBTX) recordings.Repository {
	return recordings.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies every embedded migration not yet recorded in the
// goose version table.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

func NewPostgresRepositoryManager() RepositoryManager {
	return &PostgresRepositoryManager{}
}

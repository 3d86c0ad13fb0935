package postgres

import (
	"context"
	"embed"
	"io/fs"
	"log/slog"

	"github.com/utafrali/storefront/pkg/database"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Migrations returns the schema migrations with the directory prefix stripped.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrationFS, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// Migrate applies pending schema migrations.
func Migrate(ctx context.Context, db database.DBTX, logger *slog.Logger) error {
	return database.RunMigrations(ctx, db, Migrations(), logger)
}

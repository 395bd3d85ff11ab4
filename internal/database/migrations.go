package database

import (
	"context"
	"embed"

	"github.com/jackc/pgx/v5/pgxpool"

	"lingo-server/pkg/migration"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ApplyMigrations применяет встроенные миграции к базе данных.
func ApplyMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	return migration.Up(ctx, pool, migrationsFS, "migrations")
}

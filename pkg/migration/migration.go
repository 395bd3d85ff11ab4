package migration

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog/log"
)

// Таймаут advisory-блокировки: параллельно стартующие реплики сервиса
// ждут, пока первая из них применит миграции.
const lockTimeout = 30 * time.Second

// Up применяет все миграции из fsys/dir поверх пула pgx.
// Отсутствие новых миграций ошибкой не считается.
func Up(ctx context.Context, pool *pgxpool.Pool, fsys fs.FS, dir string) error {
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("database is not reachable: %w", err)
	}

	source, err := iofs.New(fsys, dir)
	if err != nil {
		return fmt.Errorf("failed to open migrations source: %w", err)
	}

	// golang-migrate работает через database/sql, пул оборачивается stdlib-драйвером
	db := stdlib.OpenDBFromPool(pool)
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to init postgres driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to init migrator: %w", err)
	}
	defer migrator.Close()
	migrator.LockTimeout = lockTimeout

	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	log.Info().Str("service", "lingo-server").Msg("database migrations applied")
	return nil
}

package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"libraryapi/internal/book"
	"libraryapi/internal/config"
	"libraryapi/internal/platform/database"
	"libraryapi/internal/user"
)

// store bundles the repositories of one engine with its lifecycle hooks.
type store struct {
	books book.Repository
	users user.Repository
	ping  func(ctx context.Context) error
	close func()
}

func openStore(ctx context.Context, log *zap.Logger, cfg config.Config) (*store, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		pool, err := database.OpenPostgres(ctx, log, cfg.DBDSN)
		if err != nil {
			return nil, err
		}
		if cfg.DBAutoMigrate {
			if err := migrate(ctx, log, cfg.DBDriver, database.PostgresDB(pool)); err != nil {
				pool.Close()
				return nil, err
			}
		}
		return postgresStore(pool, cfg.DBQueryTimeout), nil

	case config.DriverSQLite:
		db, err := database.OpenSQLite(ctx, log, cfg.DBDSN)
		if err != nil {
			return nil, err
		}
		if cfg.DBAutoMigrate {
			if err := migrate(ctx, log, cfg.DBDriver, db); err != nil {
				db.Close()
				return nil, err
			}
		}
		return sqliteStore(db, cfg.DBQueryTimeout), nil

	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnsupportedDriver, cfg.DBDriver)
	}
}

func postgresStore(pool *pgxpool.Pool, timeout time.Duration) *store {
	return &store{
		books: book.NewPostgresRepo(pool, timeout),
		users: user.NewPostgresRepo(pool, timeout),
		ping:  pool.Ping,
		close: pool.Close,
	}
}

func sqliteStore(db *sql.DB, timeout time.Duration) *store {
	return &store{
		books: book.NewSQLiteRepo(db, timeout),
		users: user.NewSQLiteRepo(db, timeout),
		ping:  db.PingContext,
		close: func() { _ = db.Close() },
	}
}

func migrate(ctx context.Context, log *zap.Logger, driver string, db *sql.DB) error {
	m, err := database.NewMigrator(log, driver, db)
	if err != nil {
		return err
	}
	return m.Up(ctx)
}

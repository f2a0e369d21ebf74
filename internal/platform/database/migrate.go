package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	goosedb "github.com/pressly/goose/v3/database"
	"go.uber.org/zap"
)

//go:embed migrations/postgres/*.sql migrations/sqlite3/*.sql
var migrationsFS embed.FS

// Migrator applies the embedded schema migrations for one engine.
type Migrator struct {
	provider *goose.Provider
	log      *zap.Logger
}

// NewMigrator binds the migrations for driver ("postgres" or "sqlite3") to db.
func NewMigrator(log *zap.Logger, driver string, db *sql.DB) (*Migrator, error) {
	var dialect goosedb.Dialect
	switch driver {
	case "postgres":
		dialect = goosedb.DialectPostgres
	case "sqlite3":
		dialect = goosedb.DialectSQLite3
	default:
		return nil, fmt.Errorf("no migrations for driver %q", driver)
	}

	sub, err := fs.Sub(migrationsFS, "migrations/"+driver)
	if err != nil {
		return nil, err
	}
	provider, err := goose.NewProvider(dialect, db, sub)
	if err != nil {
		return nil, fmt.Errorf("init migrations: %w", err)
	}
	return &Migrator{provider: provider, log: log}, nil
}

// PostgresDB exposes a pgx pool as *sql.DB for the migration runner.
func PostgresDB(pool *pgxpool.Pool) *sql.DB {
	return stdlib.OpenDBFromPool(pool)
}

func (m *Migrator) Up(ctx context.Context) error {
	results, err := m.provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	for _, r := range results {
		m.log.Info("migration applied",
			zap.Int64("version", r.Source.Version),
			zap.String("file", r.Source.Path),
			zap.Duration("took", r.Duration),
		)
	}
	if len(results) == 0 {
		m.log.Debug("schema up to date")
	}
	return nil
}

func (m *Migrator) Down(ctx context.Context) error {
	r, err := m.provider.Down(ctx)
	if err != nil {
		return fmt.Errorf("rollback migration: %w", err)
	}
	if r != nil {
		m.log.Info("migration rolled back",
			zap.Int64("version", r.Source.Version),
			zap.String("file", r.Source.Path),
		)
	}
	return nil
}

// MigrationState is one line of migration status output.
type MigrationState struct {
	Version int64
	File    string
	Applied bool
}

func (m *Migrator) Status(ctx context.Context) ([]MigrationState, error) {
	statuses, err := m.provider.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("migration status: %w", err)
	}
	out := make([]MigrationState, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, MigrationState{
			Version: s.Source.Version,
			File:    s.Source.Path,
			Applied: s.State == goose.StateApplied,
		})
	}
	return out, nil
}

package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"libraryapi/internal/config"
	"libraryapi/internal/platform/database"
	"libraryapi/internal/platform/logger"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

type options struct {
	driver   string
	dsn      string
	logLevel string
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:          "migrate",
		Short:        "Apply or inspect the library database schema",
		SilenceUsage: true,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&opts.driver, "driver", "", "database driver: postgres or sqlite3 (default from DB_DRIVER)")
	root.PersistentFlags().StringVar(&opts.dsn, "dsn", "", "database DSN (default from DB_DSN)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level")

	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrator(cmd.Context(), opts, func(m *database.Migrator) error {
					if err := m.Up(cmd.Context()); err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied successfully")
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrator(cmd.Context(), opts, func(m *database.Migrator) error {
					if err := m.Down(cmd.Context()); err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), "Migrations rolled back successfully")
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "List migrations and whether they are applied",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrator(cmd.Context(), opts, func(m *database.Migrator) error {
					states, err := m.Status(cmd.Context())
					if err != nil {
						return err
					}
					return printStatus(cmd.OutOrStdout(), states)
				})
			},
		},
	)
	return root
}

func printStatus(out io.Writer, states []database.MigrationState) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VERSION\tSTATE\tFILE")
	for _, s := range states {
		state := "pending"
		if s.Applied {
			state = "applied"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\n", s.Version, state, s.File)
	}
	return tw.Flush()
}

// withMigrator resolves connection settings (flags win over the environment),
// opens the database and hands a migrator to fn.
func withMigrator(ctx context.Context, opts *options, fn func(*database.Migrator) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	driver, dsn, err := config.MigrationsOnly()
	if err != nil && opts.driver == "" {
		return err
	}
	if opts.driver != "" {
		driver = opts.driver
		if opts.dsn == "" {
			return fmt.Errorf("--dsn is required with --driver")
		}
	}
	if opts.dsn != "" {
		dsn = opts.dsn
	}

	log, err := logger.New(logger.Options{Level: opts.logLevel, Format: "console", Service: "migrate"})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	var db *sql.DB
	switch driver {
	case config.DriverPostgres:
		pool, err := database.OpenPostgres(ctx, log, dsn)
		if err != nil {
			return err
		}
		defer pool.Close()
		db = database.PostgresDB(pool)
	case config.DriverSQLite, "sqlite":
		driver = config.DriverSQLite
		db, err = database.OpenSQLite(ctx, log, dsn)
		if err != nil {
			return err
		}
		defer db.Close()
	default:
		return fmt.Errorf("%w: %q", config.ErrUnsupportedDriver, driver)
	}

	m, err := database.NewMigrator(log, driver, db)
	if err != nil {
		return err
	}
	log.Debug("migrator ready", zap.String("driver", driver), zap.String("dsn", database.RedactDSN(dsn)))
	return fn(m)
}

package main

import (
	"database/sql"
	"log/slog"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/iudanet/facialanalyzer/internal/config"
	"github.com/iudanet/facialanalyzer/internal/server/storage/sqlite"
)

func newMigrateCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
		Long:  `Apply, roll back or inspect the embedded SQLite schema migrations.`,
	}

	cmd.AddCommand(newMigrateStep(cfg, "up", "Apply all pending migrations", "up", sqlite.Migrate))
	cmd.AddCommand(newMigrateStep(cfg, "down", "Roll back the most recent migration", "down", sqlite.MigrateDown))
	cmd.AddCommand(newMigrateStep(cfg, "status", "Show migration status", "status", sqlite.MigrationStatus))

	return cmd
}

func newMigrateStep(
	cfg *config.Config,
	use, short, operation string,
	run func(*sql.DB) error,
) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cfg.Load(cmd.Flags()); err != nil {
				return oops.Code("CONFIG_INVALID").Wrap(err)
			}

			db, err := sqlite.Open(cmd.Context(), cfg.DatabasePath)
			if err != nil {
				return oops.Code("DB_CONNECT_FAILED").With("path", cfg.DatabasePath).Wrap(err)
			}
			defer func() {
				if err := db.Close(); err != nil {
					slog.Error("failed to close database", slog.Any("error", err))
				}
			}()

			if err := run(db); err != nil {
				return oops.Code("MIGRATION_FAILED").With("operation", operation).Wrap(err)
			}

			if operation != "status" {
				cmd.Printf("migrate %s: done (%s)\n", operation, cfg.DatabasePath)
			}
			return nil
		},
	}
}

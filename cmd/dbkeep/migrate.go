package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/dbkeep"
	"github.com/sagarc03/dbkeep/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	Long: `Apply every pending migration in order. Without a subcommand this is
the same as "migrate latest".

Migrations are not wrapped in a transaction. If one fails, the ones applied
before it stay applied and the run stops.

Examples:
  dbkeep migrate
  dbkeep migrate up
  dbkeep migrate down
  dbkeep migrate list`,
	Args: cobra.NoArgs,
	RunE: runMigrateLatest,
}

var migrateLatestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Apply every pending migration",
	Args:  cobra.NoArgs,
	RunE:  runMigrateLatest,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply the next pending migration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withMigrator(cmd, func(ctx context.Context, m *database.Migrator, conn dbkeep.Conn) error {
			name, err := m.Up(ctx, conn)
			if err != nil {
				return err
			}
			var applied []string
			if name != "" {
				applied = append(applied, name)
			}
			return newFormatter(jsonOutput, quiet).FormatApplied(os.Stdout, "applied", applied)
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Revert the most recently applied migration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withMigrator(cmd, func(ctx context.Context, m *database.Migrator, conn dbkeep.Conn) error {
			name, err := m.Down(ctx, conn)
			if err != nil {
				return err
			}
			var reverted []string
			if name != "" {
				reverted = append(reverted, name)
			}
			return newFormatter(jsonOutput, quiet).FormatApplied(os.Stdout, "reverted", reverted)
		})
	},
}

var migrateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known migrations and whether they are applied",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withMigrator(cmd, func(ctx context.Context, m *database.Migrator, conn dbkeep.Conn) error {
			statuses, err := m.List(ctx, conn)
			if err != nil {
				return err
			}
			return newFormatter(jsonOutput, quiet).FormatMigrations(os.Stdout, statuses)
		})
	},
}

func init() {
	migrateCmd.AddCommand(migrateLatestCmd)
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	migrateCmd.AddCommand(migrateListCmd)
}

func runMigrateLatest(cmd *cobra.Command, _ []string) error {
	return withMigrator(cmd, func(ctx context.Context, m *database.Migrator, conn dbkeep.Conn) error {
		applied, err := m.Latest(ctx, conn)
		if err != nil {
			return err
		}
		slog.Info("migrations complete", "applied", len(applied))
		return newFormatter(jsonOutput, quiet).FormatApplied(os.Stdout, "applied", applied)
	})
}

// withMigrator connects, builds the migrator and runs fn. The connection
// is closed and metrics are flushed afterwards.
func withMigrator(cmd *cobra.Command, fn func(context.Context, *database.Migrator, dbkeep.Conn) error) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.flushMetrics()

	m, err := a.migrator()
	if err != nil {
		return err
	}

	result, err := a.connect(ctx)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() { _ = result.Conn.Close() }()

	if err := fn(ctx, m, result.Conn); err != nil {
		_ = newFormatter(jsonOutput, quiet).FormatError(os.Stderr, err)
		return err
	}
	return nil
}

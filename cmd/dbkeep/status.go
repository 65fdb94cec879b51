package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Wait for the database and report its migration state",
	Long: `Connect to the configured database, retrying until the connect timeout,
and report whether it has been migrated along with every known migration.

Examples:
  dbkeep status
  dbkeep status --db-kind postgres --db-host localhost --db-user app
  dbkeep status --json`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.flushMetrics()

	formatter := newFormatter(jsonOutput, quiet)

	result, err := a.connect(ctx)
	if err != nil {
		_ = formatter.FormatError(os.Stderr, err)
		return err
	}
	defer func() { _ = result.Conn.Close() }()

	m, err := a.migrator()
	if err != nil {
		return err
	}

	statuses, err := m.List(ctx, result.Conn)
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}

	pending, err := m.NeedsMigration(ctx, result.Conn)
	if err != nil {
		return fmt.Errorf("check pending migrations: %w", err)
	}

	return formatter.FormatStatus(os.Stdout, statusReport{
		Target:     a.cfg.Database,
		Ready:      result.Ready,
		Latest:     result.LatestMigration,
		Pending:    pending,
		Migrations: statuses,
	})
}

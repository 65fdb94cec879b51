package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sagarc03/dbkeep"
	"github.com/sagarc03/dbkeep/database"
)

var unlockCmd = &cobra.Command{
	Use:   "unlock",
	Short: "Clear a stale migration lock",
	Long: `Release the migration lock left behind by a migrate run that was killed
before it could clean up. Only run this when no other migrate is in progress.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withMigrator(cmd, func(ctx context.Context, m *database.Migrator, conn dbkeep.Conn) error {
			if err := m.ForceUnlock(ctx, conn); err != nil {
				return err
			}
			if !quiet {
				fmt.Println("Migration lock released.")
			}
			return nil
		})
	},
}

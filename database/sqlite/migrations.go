package sqlite

import (
	"context"
	"fmt"

	"github.com/sagarc03/dbkeep"
)

// CreateMigrationTables creates the migration bookkeeping tables and the
// lock row when they are missing.
func CreateMigrationTables(ctx context.Context, conn dbkeep.Conn) error {
	migrationsTable := quoteIdentifier(dbkeep.MigrationsTable)
	lockTable := quoteIdentifier(dbkeep.MigrationsLockTable)

	createMigrationsSQL := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			batch INTEGER NOT NULL,
			migration_time INTEGER NOT NULL
		)
	`, migrationsTable)

	if _, err := conn.Exec(ctx, createMigrationsSQL); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	createLockSQL := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			"index" INTEGER PRIMARY KEY,
			is_locked INTEGER NOT NULL DEFAULT 0
		)
	`, lockTable)

	if _, err := conn.Exec(ctx, createLockSQL); err != nil {
		return fmt.Errorf("create migrations lock table: %w", err)
	}

	lockRowSQL := fmt.Sprintf(`INSERT OR IGNORE INTO %s ("index", is_locked) VALUES (1, 0)`, lockTable)
	if _, err := conn.Exec(ctx, lockRowSQL); err != nil {
		return fmt.Errorf("create migrations lock row: %w", err)
	}

	return nil
}

// TruncateTableSQL returns the statement that empties a table. SQLite has
// no TRUNCATE, so this is an unqualified DELETE.
func TruncateTableSQL(tableName string) string {
	return "DELETE FROM " + quoteIdentifier(tableName)
}

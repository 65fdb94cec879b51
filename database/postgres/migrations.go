package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/sagarc03/dbkeep"
)

// CreateMigrationTables creates the migration bookkeeping tables and the
// lock row when they are missing.
func CreateMigrationTables(ctx context.Context, conn dbkeep.Conn) error {
	migrationsTable := pgx.Identifier{dbkeep.MigrationsTable}.Sanitize()
	lockTable := pgx.Identifier{dbkeep.MigrationsLockTable}.Sanitize()

	createMigrationsSQL := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id SERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			batch INTEGER NOT NULL,
			migration_time BIGINT NOT NULL
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

	lockRowSQL := fmt.Sprintf(`INSERT INTO %s ("index", is_locked) VALUES (1, 0) ON CONFLICT DO NOTHING`, lockTable)
	if _, err := conn.Exec(ctx, lockRowSQL); err != nil {
		return fmt.Errorf("create migrations lock row: %w", err)
	}

	return nil
}

// TruncateTableSQL returns the statement that empties a table.
func TruncateTableSQL(tableName string) string {
	return "TRUNCATE TABLE " + pgx.Identifier{tableName}.Sanitize()
}

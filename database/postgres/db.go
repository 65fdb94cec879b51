package postgres

import (
	"context"
	"fmt"

	"github.com/sagarc03/dbkeep"
)

// TableExists reports whether a table with the given name exists in the
// current schema.
func TableExists(ctx context.Context, conn dbkeep.Conn, tableName string) (bool, error) {
	if !dbkeep.IsValidTableName(tableName) {
		return false, fmt.Errorf("check table exists: %w: %s", dbkeep.ErrInvalidTableName, tableName)
	}

	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM information_schema.tables
			WHERE table_schema = current_schema()
			AND table_name = ?
		)
	`
	err := conn.QueryRow(ctx, query, tableName).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check table exists: %w", err)
	}
	return exists, nil
}

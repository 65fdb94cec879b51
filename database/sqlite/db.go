package sqlite

import (
	"context"
	"errors"
	"fmt"

	"github.com/sagarc03/dbkeep"
)

// TableExists reports whether a table with the given name exists.
func TableExists(ctx context.Context, conn dbkeep.Conn, tableName string) (bool, error) {
	if !dbkeep.IsValidTableName(tableName) {
		return false, fmt.Errorf("check table exists: %w: %s", dbkeep.ErrInvalidTableName, tableName)
	}

	var name string
	query := `SELECT name FROM sqlite_master WHERE type='table' AND name=?`
	err := conn.QueryRow(ctx, query, tableName).Scan(&name)
	if err != nil {
		if errors.Is(err, dbkeep.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check table exists: %w", err)
	}
	return true, nil
}

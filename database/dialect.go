package database

import (
	"context"
	"fmt"

	"github.com/sagarc03/dbkeep"
	"github.com/sagarc03/dbkeep/database/postgres"
	"github.com/sagarc03/dbkeep/database/sqlite"
)

func createMigrationTables(ctx context.Context, conn dbkeep.Conn) error {
	switch conn.Kind() {
	case dbkeep.KindSQLite:
		return sqlite.CreateMigrationTables(ctx, conn)
	case dbkeep.KindPostgres:
		return postgres.CreateMigrationTables(ctx, conn)
	default:
		return fmt.Errorf("create migration tables: %w: %s", dbkeep.ErrUnsupportedBackend, conn.Kind())
	}
}

func tableExists(ctx context.Context, conn dbkeep.Conn, table string) (bool, error) {
	switch conn.Kind() {
	case dbkeep.KindSQLite:
		return sqlite.TableExists(ctx, conn, table)
	case dbkeep.KindPostgres:
		return postgres.TableExists(ctx, conn, table)
	default:
		return false, fmt.Errorf("table exists: %w: %s", dbkeep.ErrUnsupportedBackend, conn.Kind())
	}
}

func truncateTableSQL(kind dbkeep.Kind, table string) (string, error) {
	switch kind {
	case dbkeep.KindSQLite:
		return sqlite.TruncateTableSQL(table), nil
	case dbkeep.KindPostgres:
		return postgres.TruncateTableSQL(table), nil
	default:
		return "", fmt.Errorf("truncate: %w: %s", dbkeep.ErrUnsupportedBackend, kind)
	}
}

package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/sagarc03/dbkeep"
)

// Probe reports whether the schema has been migrated.
//
// It reads the migration with the lowest id, i.e. the first one applied,
// and reports its name as LatestMigration. A missing bookkeeping table or
// an empty one is a successful probe with Ready=false.
func Probe(ctx context.Context, conn dbkeep.Conn) (dbkeep.CheckResult, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is a constant
		`SELECT name FROM %s ORDER BY id ASC LIMIT 1`,
		conn.QuoteIdentifier(dbkeep.MigrationsTable),
	)

	var name string
	err := conn.QueryRow(ctx, query).Scan(&name)
	switch {
	case err == nil:
		return dbkeep.CheckResult{Ready: true, LatestMigration: name}, nil
	case errors.Is(err, dbkeep.ErrNoRows):
		return dbkeep.CheckResult{}, nil
	case dbkeep.IsTableNotFound(err):
		return dbkeep.CheckResult{}, nil
	default:
		return dbkeep.CheckResult{}, fmt.Errorf("probe: %w", err)
	}
}

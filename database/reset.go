package database

import (
	"context"
	"fmt"

	"github.com/sagarc03/dbkeep"
)

const (
	opDrop     = "drop"
	opTruncate = "truncate"
)

// DropAllTables drops every table in the catalog and returns the ones it
// dropped. Tables that do not exist are skipped; any other error stops the
// reset and is returned along with the tables dropped so far.
func DropAllTables(ctx context.Context, conn dbkeep.Conn, catalog dbkeep.Catalog, opts ...Option) ([]string, error) {
	return resetTables(ctx, conn, catalog, opDrop, func(table string) (string, error) {
		return "DROP TABLE " + conn.QuoteIdentifier(table), nil
	}, newOptions(opts))
}

// TruncateAllTables deletes every row of every table in the catalog and
// returns the tables it emptied. Missing tables are skipped as in DropAllTables.
func TruncateAllTables(ctx context.Context, conn dbkeep.Conn, catalog dbkeep.Catalog, opts ...Option) ([]string, error) {
	return resetTables(ctx, conn, catalog, opTruncate, func(table string) (string, error) {
		return truncateTableSQL(conn.Kind(), table)
	}, newOptions(opts))
}

func resetTables(
	ctx context.Context,
	conn dbkeep.Conn,
	catalog dbkeep.Catalog,
	op string,
	statement func(table string) (string, error),
	o options,
) ([]string, error) {
	var reset []string
	for _, table := range catalog.Tables() {
		query, err := statement(table)
		if err != nil {
			return reset, fmt.Errorf("%s tables: %w", op, err)
		}

		if _, err := conn.Exec(ctx, query); err != nil {
			if dbkeep.IsTableNotFound(err) {
				o.logger.DebugContext(ctx, "table does not exist, skipping", "op", op, "table", table)
				o.metrics.resetTable(op, outcomeAbsent)
				continue
			}
			return reset, fmt.Errorf("%s table %s: %w", op, table, err)
		}

		o.metrics.resetTable(op, outcomeReset)
		reset = append(reset, table)
	}

	o.logger.InfoContext(ctx, "tables reset", "op", op, "reset", len(reset), "skipped", catalog.Len()-len(reset))
	return reset, nil
}

// Package migrations holds the built-in migration set applied by
// "dbkeep migrate".
package migrations

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/sagarc03/dbkeep"
	"github.com/sagarc03/dbkeep/database"
	"github.com/sagarc03/dbkeep/schema"
)

// InitName is the name of the migration that creates the schema tables.
const InitName = "0001_init"

// All returns the built-in migrations for s, in apply order.
func All(s schema.Schema) []database.Migration {
	tables := s.Tables()

	return []database.Migration{
		{
			Name: InitName,
			Up: func(ctx context.Context, conn dbkeep.Conn) error {
				for _, t := range tables {
					stmt, err := CreateTableSQL(conn, t)
					if err != nil {
						return err
					}
					if _, err := conn.Exec(ctx, stmt); err != nil {
						return fmt.Errorf("create table %s: %w", t.Name, err)
					}
				}
				return nil
			},
			Down: func(ctx context.Context, conn dbkeep.Conn) error {
				for _, t := range slices.Backward(tables) {
					if _, err := conn.Exec(ctx, "DROP TABLE IF EXISTS "+conn.QuoteIdentifier(t.Name)); err != nil {
						return fmt.Errorf("drop table %s: %w", t.Name, err)
					}
				}
				return nil
			},
		},
	}
}

// CreateTableSQL renders the CREATE TABLE statement for t on conn's backend.
func CreateTableSQL(conn dbkeep.Conn, t schema.Table) (string, error) {
	cols := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		sqlType, err := columnType(conn.Kind(), c.Type)
		if err != nil {
			return "", fmt.Errorf("table %s column %s: %w", t.Name, c.Name, err)
		}
		cols = append(cols, conn.QuoteIdentifier(c.Name)+" "+sqlType)
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)",
		conn.QuoteIdentifier(t.Name), strings.Join(cols, ",\n\t")), nil
}

var sqliteTypes = map[string]string{
	schema.TypeID:        "TEXT PRIMARY KEY",
	schema.TypeString:    "TEXT",
	schema.TypeText:      "TEXT",
	schema.TypeInteger:   "INTEGER",
	schema.TypeBoolean:   "INTEGER NOT NULL DEFAULT 0",
	schema.TypeTimestamp: "DATETIME",
	schema.TypeJSON:      "TEXT",
}

var postgresTypes = map[string]string{
	schema.TypeID:        "TEXT PRIMARY KEY",
	schema.TypeString:    "VARCHAR(255)",
	schema.TypeText:      "TEXT",
	schema.TypeInteger:   "BIGINT",
	schema.TypeBoolean:   "BOOLEAN NOT NULL DEFAULT FALSE",
	schema.TypeTimestamp: "TIMESTAMPTZ",
	schema.TypeJSON:      "JSONB",
}

func columnType(kind dbkeep.Kind, semantic string) (string, error) {
	var types map[string]string
	switch kind {
	case dbkeep.KindSQLite:
		types = sqliteTypes
	case dbkeep.KindPostgres:
		types = postgresTypes
	default:
		return "", fmt.Errorf("%w: %s", dbkeep.ErrUnsupportedBackend, kind)
	}

	t, ok := types[semantic]
	if !ok {
		return "", fmt.Errorf("%w: %q", schema.ErrUnknownType, semantic)
	}
	return t, nil
}

package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sagarc03/dbkeep"
	"github.com/sagarc03/dbkeep/database/postgres"
	"github.com/sagarc03/dbkeep/database/sqlite"
)

// Opener opens a session for a resolved descriptor.
type Opener func(ctx context.Context, desc dbkeep.Descriptor) (dbkeep.Conn, error)

// Open opens a session to the backend named by desc.
func Open(ctx context.Context, desc dbkeep.Descriptor, logger *slog.Logger) (dbkeep.Conn, error) {
	switch desc.Kind {
	case dbkeep.KindSQLite:
		return sqlite.Open(ctx, desc, logger)
	case dbkeep.KindPostgres:
		return postgres.Open(ctx, desc, logger)
	default:
		return nil, fmt.Errorf("open: %w: %s", dbkeep.ErrUnsupportedBackend, desc.Kind)
	}
}

func defaultOpener(logger *slog.Logger) Opener {
	return func(ctx context.Context, desc dbkeep.Descriptor) (dbkeep.Conn, error) {
		return Open(ctx, desc, logger)
	}
}

// ExistingTables returns the catalog tables that currently exist, in catalog order.
func ExistingTables(ctx context.Context, conn dbkeep.Conn, catalog dbkeep.Catalog) ([]string, error) {
	var existing []string
	for _, table := range catalog.Tables() {
		ok, err := tableExists(ctx, conn, table)
		if err != nil {
			return nil, fmt.Errorf("existing tables: %w", err)
		}
		if ok {
			existing = append(existing, table)
		}
	}
	return existing, nil
}

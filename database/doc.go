// Package database manages the lifecycle of a dbkeep connection.
//
// The package resolves a logical BackendConfig into a backend-specific
// Descriptor, connects with a fixed-interval retry until a readiness probe
// succeeds, applies pending migrations, and resets a schema by dropping or
// truncating every catalog table.
//
// # Supported Backends
//
//   - SQLite: embedded file, see database/sqlite
//   - PostgreSQL: client/server, see database/postgres
//
// # Usage
//
//	result, err := database.ConnectWithRetry(ctx, cfg,
//	    database.WithTimeout(30*time.Second),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer result.Conn.Close()
//
//	migrator, err := database.NewMigrator(migrations.All(schema.Default()))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if _, err := migrator.Latest(ctx, result.Conn); err != nil {
//	    log.Fatal(err)
//	}
//
// ConnectWithRetry tolerates a backend that is still starting: connection
// failures are logged and retried every second until the timeout elapses.
//
// # Reset
//
// DropAllTables and TruncateAllTables walk a dbkeep.Catalog and skip tables
// that do not exist, so both are safe to call against a partially
// initialized database and safe to call twice.
package database

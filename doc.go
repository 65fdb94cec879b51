// Package dbkeep provides the shared types for managing the lifecycle of a
// relational database connection across an embedded SQLite file and a
// PostgreSQL server.
//
// The root package holds the backend-neutral vocabulary: backend kinds and
// configuration, resolved connection descriptors, the Conn session interface,
// the table catalog used for schema resets, and the error classifier that
// hides backend-specific error codes from callers.
//
// # Key Components
//
//   - BackendConfig: logical configuration supplied by the process owner
//   - Descriptor: backend-specific connection details derived from BackendConfig
//   - Conn: a live session to a backend, released with Close exactly once
//   - Catalog: every known table name plus the migration bookkeeping tables
//   - Classify: maps engine errors to a semantic Category
//
// # Example Usage
//
//	result, err := database.ConnectWithRetry(ctx, dbkeep.BackendConfig{
//	    Kind: dbkeep.KindSQLite,
//	    Name: "prod",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer result.Conn.Close()
//
// # Subpackages
//
//   - database: resolution, supervised connect, readiness probe, migrations and reset
//   - database/sqlite: SQLite session using modernc.org/sqlite
//   - database/postgres: PostgreSQL session using pgx
//   - schema: static table/column configuration
//   - migrations: the built-in migration set
//   - config: configuration loading and validation
package dbkeep

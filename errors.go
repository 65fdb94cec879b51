package dbkeep

import "errors"

var (
	// ErrUnsupportedBackend is returned when the backend kind is not supported
	ErrUnsupportedBackend = errors.New("unsupported database backend")
	// ErrMissingConfig is returned when a required configuration field is empty
	ErrMissingConfig = errors.New("missing database configuration")
	// ErrInvalidTableName is returned when a table name is not a safe identifier
	ErrInvalidTableName = errors.New("invalid table name")
	// ErrConnectTimeout is returned when the database stays unreachable past the deadline
	ErrConnectTimeout = errors.New("timeout connecting to database")
	// ErrMigrationFailed is returned when applying or reverting a migration fails
	ErrMigrationFailed = errors.New("migration failed")
	// ErrMigrationLocked is returned when another migrator holds the run lock
	ErrMigrationLocked = errors.New("migration table is locked")
	// ErrNoRows is returned by Row.Scan when the query matched nothing
	ErrNoRows = errors.New("no rows in result set")
)

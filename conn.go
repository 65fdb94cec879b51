package dbkeep

import "context"

// Conn is a live session to a database backend.
//
// Queries use "?" placeholders regardless of backend. A Conn must be closed
// exactly once by its owner.
type Conn interface {
	Kind() Kind
	Ping(ctx context.Context) error
	// Exec runs a statement and returns the number of rows it affected.
	Exec(ctx context.Context, query string, args ...any) (int64, error)
	QueryRow(ctx context.Context, query string, args ...any) Row
	Query(ctx context.Context, query string, args ...any) (Rows, error)
	// QuoteIdentifier quotes a table or column name for use in SQL.
	QuoteIdentifier(name string) string
	Close() error
}

// Row is the result of QueryRow. Scan returns ErrNoRows when nothing matched.
type Row interface {
	Scan(dest ...any) error
}

// Rows iterates over a query result.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

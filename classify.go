package dbkeep

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// Category is the semantic class of a backend error.
type Category int

const (
	// CategoryOther covers every error that callers must propagate.
	CategoryOther Category = iota
	// CategoryTableNotFound means the statement referenced a table that does not exist.
	CategoryTableNotFound
)

func (c Category) String() string {
	switch c {
	case CategoryTableNotFound:
		return "table_not_found"
	default:
		return "other"
	}
}

// pgUndefinedTable is the SQLSTATE for undefined_table.
const pgUndefinedTable = "42P01"

// sqliteNoSuchTable prefixes the SQLite message for a missing table,
// e.g. "no such table: schema_migrations".
const sqliteNoSuchTable = "no such table:"

// Classify maps an error returned by a backend to a Category.
// Wrapped errors are inspected through the whole chain.
func Classify(err error) Category {
	if err == nil {
		return CategoryOther
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == pgUndefinedTable {
			return CategoryTableNotFound
		}
		return CategoryOther
	}

	if strings.Contains(err.Error(), sqliteNoSuchTable) {
		return CategoryTableNotFound
	}

	return CategoryOther
}

// IsTableNotFound reports whether err classifies as CategoryTableNotFound.
func IsTableNotFound(err error) bool {
	return Classify(err) == CategoryTableNotFound
}

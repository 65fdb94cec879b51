package database_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sagarc03/dbkeep"
	"github.com/sagarc03/dbkeep/database"
)

// quietLogger discards log output so retry warnings don't flood test output.
func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// sqliteConfig points a BackendConfig at a fresh file in a per-test temp dir.
func sqliteConfig(t *testing.T) dbkeep.BackendConfig {
	t.Helper()
	return dbkeep.BackendConfig{
		Kind: dbkeep.KindSQLite,
		Name: "test",
		Path: filepath.Join(t.TempDir(), "test.sqlite"),
	}
}

// openSQLite opens a fresh SQLite database for the test.
func openSQLite(t *testing.T) dbkeep.Conn {
	t.Helper()

	desc, err := database.Resolve(sqliteConfig(t))
	require.NoError(t, err)

	conn, err := database.Open(context.Background(), desc, quietLogger())
	require.NoError(t, err)

	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// createTableMigration returns a migration that creates a one-column table.
func createTableMigration(name, table string) database.Migration {
	return database.Migration{
		Name: name,
		Up: func(ctx context.Context, conn dbkeep.Conn) error {
			_, err := conn.Exec(ctx, "CREATE TABLE "+conn.QuoteIdentifier(table)+" (id TEXT PRIMARY KEY)")
			return err
		},
		Down: func(ctx context.Context, conn dbkeep.Conn) error {
			_, err := conn.Exec(ctx, "DROP TABLE "+conn.QuoteIdentifier(table))
			return err
		},
	}
}

func insertRows(t *testing.T, conn dbkeep.Conn, table string, ids ...string) {
	t.Helper()
	for _, id := range ids {
		_, err := conn.Exec(context.Background(), "INSERT INTO "+conn.QuoteIdentifier(table)+" (id) VALUES (?)", id)
		require.NoError(t, err)
	}
}

func countRows(t *testing.T, conn dbkeep.Conn, table string) int {
	t.Helper()
	var n int
	err := conn.QueryRow(context.Background(), "SELECT COUNT(*) FROM "+conn.QuoteIdentifier(table)).Scan(&n)
	require.NoError(t, err)
	return n
}

// fakeConn is a dbkeep.Conn whose failures are scripted by the test.
type fakeConn struct {
	kind dbkeep.Kind

	// execErr, when set, decides the error for each Exec.
	execErr func(query string) error
	// rowErr is returned by every QueryRow Scan.
	rowErr error

	mu     sync.Mutex
	execs  []string
	closed int
}

var _ dbkeep.Conn = (*fakeConn)(nil)

func (f *fakeConn) Kind() dbkeep.Kind { return f.kind }

func (f *fakeConn) Ping(context.Context) error { return nil }

func (f *fakeConn) Exec(_ context.Context, query string, _ ...any) (int64, error) {
	f.mu.Lock()
	f.execs = append(f.execs, query)
	f.mu.Unlock()

	if f.execErr != nil {
		if err := f.execErr(query); err != nil {
			return 0, err
		}
	}
	return 1, nil
}

func (f *fakeConn) QueryRow(context.Context, string, ...any) dbkeep.Row {
	return fakeRow{err: f.rowErr}
}

func (f *fakeConn) Query(context.Context, string, ...any) (dbkeep.Rows, error) {
	return nil, errors.New("fake: query not supported")
}

func (f *fakeConn) QuoteIdentifier(name string) string { return `"` + name + `"` }

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

func (f *fakeConn) closeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeConn) executed() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.execs...)
}

type fakeRow struct {
	err error
}

func (r fakeRow) Scan(...any) error { return r.err }

// noSuchTable mimics the SQLite error for a missing table.
func noSuchTable(table string) error {
	return fmt.Errorf("SQL logic error: no such table: %s (1)", table)
}

func mentions(query, table string) bool {
	return strings.Contains(query, `"`+table+`"`)
}

package sqlite_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/dbkeep"
	"github.com/sagarc03/dbkeep/database/sqlite"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("creates missing directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "dir", "db.sqlite")
		conn, err := sqlite.Open(ctx, dbkeep.Descriptor{Kind: dbkeep.KindSQLite, Path: path}, nil)
		require.NoError(t, err)
		defer func() { _ = conn.Close() }()

		_, err = os.Stat(filepath.Dir(path))
		assert.NoError(t, err, "directory should exist")
		assert.Equal(t, dbkeep.KindSQLite, conn.Kind())
	})

	t.Run("in-memory database", func(t *testing.T) {
		conn, err := sqlite.Open(ctx, dbkeep.Descriptor{Kind: dbkeep.KindSQLite, Path: ":memory:"}, nil)
		require.NoError(t, err)
		defer func() { _ = conn.Close() }()

		assert.NoError(t, conn.Ping(ctx))
	})

	t.Run("path with query parameters", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "db.sqlite") + "?_txlock=immediate"
		conn, err := sqlite.Open(ctx, dbkeep.Descriptor{Kind: dbkeep.KindSQLite, Path: path}, nil)
		require.NoError(t, err)
		defer func() { _ = conn.Close() }()

		_, err = conn.Exec(ctx, `CREATE TABLE t (id INTEGER)`)
		assert.NoError(t, err)
	})

	t.Run("wrong kind", func(t *testing.T) {
		_, err := sqlite.Open(ctx, dbkeep.Descriptor{Kind: dbkeep.KindPostgres, Path: "x"}, nil)
		assert.ErrorIs(t, err, dbkeep.ErrUnsupportedBackend)
	})

	t.Run("missing path", func(t *testing.T) {
		_, err := sqlite.Open(ctx, dbkeep.Descriptor{Kind: dbkeep.KindSQLite}, nil)
		assert.ErrorIs(t, err, dbkeep.ErrMissingConfig)
	})
}

func TestConn_ExecAndQuery(t *testing.T) {
	ctx := context.Background()
	conn := openTestConn(t)

	_, err := conn.Exec(ctx, `CREATE TABLE notes (id TEXT PRIMARY KEY, title TEXT NOT NULL)`)
	require.NoError(t, err)

	n, err := conn.Exec(ctx, `INSERT INTO notes (id, title) VALUES (?, ?), (?, ?)`, "a", "first", "b", "second")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	t.Run("query row", func(t *testing.T) {
		var title string
		err := conn.QueryRow(ctx, `SELECT title FROM notes WHERE id = ?`, "b").Scan(&title)
		require.NoError(t, err)
		assert.Equal(t, "second", title)
	})

	t.Run("query row without match returns ErrNoRows", func(t *testing.T) {
		var title string
		err := conn.QueryRow(ctx, `SELECT title FROM notes WHERE id = ?`, "missing").Scan(&title)
		assert.ErrorIs(t, err, dbkeep.ErrNoRows)
	})

	t.Run("query rows", func(t *testing.T) {
		rows, err := conn.Query(ctx, `SELECT id FROM notes ORDER BY id`)
		require.NoError(t, err)
		defer rows.Close()

		var ids []string
		for rows.Next() {
			var id string
			require.NoError(t, rows.Scan(&id))
			ids = append(ids, id)
		}
		require.NoError(t, rows.Err())
		assert.Equal(t, []string{"a", "b"}, ids)
	})

	t.Run("missing table classifies as table not found", func(t *testing.T) {
		_, err := conn.Exec(ctx, `DELETE FROM does_not_exist`)
		require.Error(t, err)
		assert.True(t, dbkeep.IsTableNotFound(err), "got %v", err)
	})

	t.Run("missing table in query row classifies as table not found", func(t *testing.T) {
		var name string
		err := conn.QueryRow(ctx, `SELECT name FROM schema_migrations ORDER BY id ASC LIMIT 1`).Scan(&name)
		require.Error(t, err)
		assert.Equal(t, dbkeep.CategoryTableNotFound, dbkeep.Classify(err))
	})
}

func TestConn_QuoteIdentifier(t *testing.T) {
	conn := openTestConn(t)

	assert.Equal(t, `"users"`, conn.QuoteIdentifier("users"))
	assert.Equal(t, `"we""ird"`, conn.QuoteIdentifier(`we"ird`))
}

func TestConn_Close(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "close.sqlite")

	conn, err := sqlite.Open(ctx, dbkeep.Descriptor{Kind: dbkeep.KindSQLite, Path: path}, nil)
	require.NoError(t, err)

	require.NoError(t, conn.Close())
	assert.Error(t, conn.Ping(ctx), "ping should fail after close")
}

func TestTableExists(t *testing.T) {
	ctx := context.Background()
	conn := openTestConn(t)

	exists, err := sqlite.TableExists(ctx, conn, "users")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = conn.Exec(ctx, `CREATE TABLE users (id TEXT PRIMARY KEY)`)
	require.NoError(t, err)

	exists, err = sqlite.TableExists(ctx, conn, "users")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = sqlite.TableExists(ctx, conn, "bad name")
	assert.ErrorIs(t, err, dbkeep.ErrInvalidTableName)
}

func TestCreateMigrationTables(t *testing.T) {
	ctx := context.Background()
	conn := openTestConn(t)

	require.NoError(t, sqlite.CreateMigrationTables(ctx, conn))
	require.NoError(t, sqlite.CreateMigrationTables(ctx, conn), "should be idempotent")

	for _, table := range []string{dbkeep.MigrationsTable, dbkeep.MigrationsLockTable} {
		exists, err := sqlite.TableExists(ctx, conn, table)
		require.NoError(t, err)
		assert.True(t, exists, table)
	}

	var count int
	err := conn.QueryRow(ctx, `SELECT COUNT(*) FROM schema_migrations_lock`).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "exactly one lock row")
}

func TestTruncateTableSQL(t *testing.T) {
	assert.Equal(t, `DELETE FROM "users"`, sqlite.TruncateTableSQL("users"))
}

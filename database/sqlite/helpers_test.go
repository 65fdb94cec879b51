package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sagarc03/dbkeep"
	"github.com/sagarc03/dbkeep/database/sqlite"
)

// openTestConn opens a SQLite file in a per-test temp directory.
func openTestConn(t *testing.T) *sqlite.Conn {
	t.Helper()

	desc := dbkeep.Descriptor{
		Kind: dbkeep.KindSQLite,
		Path: filepath.Join(t.TempDir(), "test.sqlite"),
	}

	conn, err := sqlite.Open(context.Background(), desc, nil)
	require.NoError(t, err, "failed to open sqlite")

	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

package database_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/dbkeep"
	"github.com/sagarc03/dbkeep/database"
	"github.com/sagarc03/dbkeep/database/sqlite"
)

func newTestMigrator(t *testing.T, migrations ...database.Migration) *database.Migrator {
	t.Helper()
	m, err := database.NewMigrator(migrations, database.WithLogger(quietLogger()))
	require.NoError(t, err)
	return m
}

func TestNewMigrator_Validation(t *testing.T) {
	t.Run("empty name", func(t *testing.T) {
		_, err := database.NewMigrator([]database.Migration{createTableMigration("", "users")})
		assert.Error(t, err)
	})

	t.Run("missing up", func(t *testing.T) {
		_, err := database.NewMigrator([]database.Migration{{Name: "0001_init"}})
		assert.ErrorContains(t, err, "no up function")
	})

	t.Run("duplicate names", func(t *testing.T) {
		_, err := database.NewMigrator([]database.Migration{
			createTableMigration("0001_init", "users"),
			createTableMigration("0001_init", "sessions"),
		})
		assert.ErrorContains(t, err, "duplicate migration 0001_init")
	})
}

func TestMigrator_Latest(t *testing.T) {
	ctx := context.Background()
	conn := openSQLite(t)

	// Declared out of order on purpose; the migrator sorts by name.
	m := newTestMigrator(t,
		createTableMigration("0002_sessions", "sessions"),
		createTableMigration("0001_init", "users"),
	)

	applied, err := m.Latest(ctx, conn)
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_init", "0002_sessions"}, applied)

	for _, table := range []string{"users", "sessions"} {
		exists, err := sqlite.TableExists(ctx, conn, table)
		require.NoError(t, err)
		assert.True(t, exists, table)
	}

	t.Run("second run applies nothing", func(t *testing.T) {
		applied, err := m.Latest(ctx, conn)
		require.NoError(t, err)
		assert.Empty(t, applied)
	})

	t.Run("records share a batch", func(t *testing.T) {
		statuses, err := m.List(ctx, conn)
		require.NoError(t, err)
		require.Len(t, statuses, 2)
		for _, s := range statuses {
			assert.True(t, s.Applied)
			assert.Equal(t, 1, s.Batch)
			assert.False(t, s.AppliedAt.IsZero())
		}
	})

	t.Run("lock released after run", func(t *testing.T) {
		var locked int
		err := conn.QueryRow(ctx, `SELECT is_locked FROM schema_migrations_lock`).Scan(&locked)
		require.NoError(t, err)
		assert.Equal(t, 0, locked)
	})
}

func TestMigrator_LaterRunsUseNewBatch(t *testing.T) {
	ctx := context.Background()
	conn := openSQLite(t)

	first := newTestMigrator(t, createTableMigration("0001_init", "users"))
	_, err := first.Latest(ctx, conn)
	require.NoError(t, err)

	second := newTestMigrator(t,
		createTableMigration("0001_init", "users"),
		createTableMigration("0002_sessions", "sessions"),
	)
	applied, err := second.Latest(ctx, conn)
	require.NoError(t, err)
	assert.Equal(t, []string{"0002_sessions"}, applied)

	statuses, err := second.List(ctx, conn)
	require.NoError(t, err)
	assert.Equal(t, 1, statuses[0].Batch)
	assert.Equal(t, 2, statuses[1].Batch)
}

func TestMigrator_FailureStopsWithoutRollback(t *testing.T) {
	ctx := context.Background()
	conn := openSQLite(t)

	cause := errors.New("column \"owner_id\" cannot be added")
	m := newTestMigrator(t,
		createTableMigration("0001_init", "users"),
		database.Migration{
			Name: "0002_broken",
			Up: func(context.Context, dbkeep.Conn) error {
				return cause
			},
		},
		createTableMigration("0003_sessions", "sessions"),
	)

	applied, err := m.Latest(ctx, conn)
	require.ErrorIs(t, err, dbkeep.ErrMigrationFailed)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), cause.Error(), "original message intact")
	assert.Contains(t, err.Error(), "0002_broken")
	assert.Equal(t, []string{"0001_init"}, applied)

	statuses, err := m.List(ctx, conn)
	require.NoError(t, err)
	assert.True(t, statuses[0].Applied, "earlier migration stays applied")
	assert.False(t, statuses[1].Applied)
	assert.False(t, statuses[2].Applied, "later migrations are not attempted")

	exists, err := sqlite.TableExists(ctx, conn, "sessions")
	require.NoError(t, err)
	assert.False(t, exists)

	// The lock is released even though the run failed.
	_, err = m.Latest(ctx, conn)
	assert.ErrorIs(t, err, dbkeep.ErrMigrationFailed)
	assert.NotErrorIs(t, err, dbkeep.ErrMigrationLocked)
}

func TestMigrator_Locked(t *testing.T) {
	ctx := context.Background()
	conn := openSQLite(t)

	m := newTestMigrator(t, createTableMigration("0001_init", "users"))

	_, err := m.Latest(ctx, conn)
	require.NoError(t, err)

	_, err = conn.Exec(ctx, `UPDATE schema_migrations_lock SET is_locked = 1`)
	require.NoError(t, err)

	_, err = m.Latest(ctx, conn)
	require.ErrorIs(t, err, dbkeep.ErrMigrationLocked)

	_, err = m.Down(ctx, conn)
	require.ErrorIs(t, err, dbkeep.ErrMigrationLocked)

	require.NoError(t, m.ForceUnlock(ctx, conn))

	_, err = m.Latest(ctx, conn)
	assert.NoError(t, err)
}

func TestMigrator_UpAndDown(t *testing.T) {
	ctx := context.Background()
	conn := openSQLite(t)

	m := newTestMigrator(t,
		createTableMigration("0001_init", "users"),
		createTableMigration("0002_sessions", "sessions"),
	)

	name, err := m.Up(ctx, conn)
	require.NoError(t, err)
	assert.Equal(t, "0001_init", name)

	needs, err := m.NeedsMigration(ctx, conn)
	require.NoError(t, err)
	assert.True(t, needs)

	name, err = m.Up(ctx, conn)
	require.NoError(t, err)
	assert.Equal(t, "0002_sessions", name)

	name, err = m.Up(ctx, conn)
	require.NoError(t, err)
	assert.Empty(t, name, "nothing pending")

	needs, err = m.NeedsMigration(ctx, conn)
	require.NoError(t, err)
	assert.False(t, needs)

	name, err = m.Down(ctx, conn)
	require.NoError(t, err)
	assert.Equal(t, "0002_sessions", name)

	exists, err := sqlite.TableExists(ctx, conn, "sessions")
	require.NoError(t, err)
	assert.False(t, exists, "down drops the table")

	name, err = m.Down(ctx, conn)
	require.NoError(t, err)
	assert.Equal(t, "0001_init", name)

	name, err = m.Down(ctx, conn)
	require.NoError(t, err)
	assert.Empty(t, name, "nothing left to revert")
}

func TestMigrator_DownWithoutDownFunction(t *testing.T) {
	ctx := context.Background()
	conn := openSQLite(t)

	migration := createTableMigration("0001_init", "users")
	migration.Down = nil
	m := newTestMigrator(t, migration)

	_, err := m.Latest(ctx, conn)
	require.NoError(t, err)

	_, err = m.Down(ctx, conn)
	assert.ErrorIs(t, err, dbkeep.ErrMigrationFailed)
	assert.ErrorContains(t, err, "no down function")
}

func TestMigrator_ListOnFreshDatabase(t *testing.T) {
	ctx := context.Background()
	conn := openSQLite(t)

	m := newTestMigrator(t, createTableMigration("0001_init", "users"))

	statuses, err := m.List(ctx, conn)
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.False(t, statuses[0].Applied)

	exists, err := sqlite.TableExists(ctx, conn, dbkeep.MigrationsTable)
	require.NoError(t, err)
	assert.False(t, exists, "list is read-only")
}

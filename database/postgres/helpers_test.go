package postgres_test

import (
	"context"
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/sagarc03/dbkeep"
	"github.com/sagarc03/dbkeep/database/postgres"
)

var (
	testDesc     dbkeep.Descriptor
	testDescErr  error
	testDescOnce sync.Once
	testCleanup  func()
)

func TestMain(m *testing.M) {
	code := m.Run()
	if testCleanup != nil {
		testCleanup()
	}
	os.Exit(code)
}

// getSharedTestDescriptor starts one postgres container for the whole
// package and returns a descriptor pointing at it.
func getSharedTestDescriptor(t *testing.T) dbkeep.Descriptor {
	t.Helper()

	testDescOnce.Do(func() {
		ctx := context.Background()

		pgContainer, err := pgcontainer.Run(ctx,
			"postgres:18-alpine",
			pgcontainer.WithDatabase("testdb"),
			pgcontainer.WithUsername("testuser"),
			pgcontainer.WithPassword("testpass"),
			pgcontainer.BasicWaitStrategies(),
		)
		if err != nil {
			testDescErr = fmt.Errorf("start postgres container: %w", err)
			return
		}

		testCleanup = func() {
			if err := testcontainers.TerminateContainer(pgContainer); err != nil {
				fmt.Fprintf(os.Stderr, "failed to terminate container: %s\n", err)
			}
		}

		host, err := pgContainer.Host(ctx)
		if err != nil {
			testDescErr = fmt.Errorf("container host: %w", err)
			return
		}

		port, err := pgContainer.MappedPort(ctx, "5432/tcp")
		if err != nil {
			testDescErr = fmt.Errorf("container port: %w", err)
			return
		}

		testDesc = dbkeep.Descriptor{
			Kind:     dbkeep.KindPostgres,
			Host:     host,
			Port:     port.Int(),
			User:     "testuser",
			Password: "testpass",
			Database: "testdb",
		}
	})

	require.NoError(t, testDescErr)
	return testDesc
}

// openTestConn opens a session against the shared container.
func openTestConn(t *testing.T) *postgres.Conn {
	t.Helper()

	conn, err := postgres.Open(context.Background(), getSharedTestDescriptor(t), nil)
	require.NoError(t, err, "failed to connect")

	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

// getRandomString generates a random string for unique test identifiers.
func getRandomString(t *testing.T) string {
	t.Helper()
	n, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	assert.NoError(t, err, "random string")
	return fmt.Sprintf("test%x", n.Int64())
}

// dropTable drops the specified table for test cleanup.
func dropTable(ctx context.Context, conn dbkeep.Conn, tableName string) {
	_, _ = conn.Exec(ctx, "DROP TABLE IF EXISTS "+conn.QuoteIdentifier(tableName)+" CASCADE")
}

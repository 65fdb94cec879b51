package e2e_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
)

var (
	pgOnce    sync.Once
	pgErr     error
	pgCleanup func()
	pgConfig  DatabaseConfig
)

// getSharedPostgresDatabase returns a shared PostgreSQL database for E2E tests.
// The container is reused across all tests for performance.
func getSharedPostgresDatabase(t *testing.T) DatabaseConfig {
	t.Helper()

	pgOnce.Do(func() {
		ctx := context.Background()

		pgContainer, err := pgcontainer.Run(ctx,
			"postgres:18-alpine",
			pgcontainer.WithDatabase("testdb"),
			pgcontainer.WithUsername("testuser"),
			pgcontainer.WithPassword("testpass"),
			pgcontainer.BasicWaitStrategies(),
		)
		if err != nil {
			pgErr = err
			return
		}

		pgCleanup = func() {
			_ = testcontainers.TerminateContainer(pgContainer)
		}

		host, err := pgContainer.Host(ctx)
		if err != nil {
			pgErr = err
			return
		}
		port, err := pgContainer.MappedPort(ctx, "5432/tcp")
		if err != nil {
			pgErr = err
			return
		}

		pgConfig = DatabaseConfig{
			Kind:     "postgres",
			Name:     "testdb",
			Host:     host,
			Port:     port.Int(),
			User:     "testuser",
			Password: "testpass",
		}
	})

	require.NoError(t, pgErr, "start postgres container")
	return pgConfig
}

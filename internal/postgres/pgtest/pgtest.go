//go:build integration

// Package pgtest gives integration tests a migrated Postgres. It starts a
// throwaway container unless PGTEST_DSN points at a running server.
package pgtest

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"

	"github.com/MUR0612/smart-inventory/internal/postgres"
)

const image = "postgres:16-alpine"

// Pool connects to a fresh database with both service schemas applied. The
// pool and any container are released when t finishes.
func Pool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres integration test in -short mode")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	dsn := os.Getenv("PGTEST_DSN")
	if dsn == "" {
		c, err := tcpostgres.Run(ctx, image,
			tcpostgres.WithDatabase("smart_inventory"),
			tcpostgres.WithUsername("postgres"),
			tcpostgres.WithPassword("postgres"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(time.Minute),
			),
		)
		require.NoError(t, err)
		t.Cleanup(func() { _ = c.Terminate(context.Background()) })

		dsn, err = c.ConnectionString(ctx, "sslmode=disable")
		require.NoError(t, err)
	}

	pool, err := postgres.Connect(ctx, dsn, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, postgres.EnsureInventorySchema(ctx, pool))
	require.NoError(t, postgres.EnsureOrdersSchema(ctx, pool))
	return pool
}

// Truncate empties the named tables and whatever references them.
func Truncate(t *testing.T, pool *pgxpool.Pool, tables ...string) {
	t.Helper()
	_, err := pool.Exec(context.Background(), "TRUNCATE "+strings.Join(tables, ", ")+" CASCADE")
	require.NoError(t, err)
}

//go:build integration

package notification

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestPostgresMappingRequests(t *testing.T) {
	ctx := context.Background()
	pg, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("tmhna"),
		postgres.WithUsername("tmhna"),
		postgres.WithPassword("tmhna"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)

	ns := NewWithPool(pool)
	require.NoError(t, ns.Start())
	defer ns.Stop()

	require.NoError(t, ns.NotifyMappingRequest(ctx, MappingRequest{Brand: "TMH", Role: "ethan", SessionID: "s1", BlockingCount: 3}))
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, ns.NotifyMappingRequest(ctx, MappingRequest{Brand: "RAYMOND", Role: "liam", SessionID: "s2", BlockingCount: 1}))

	got, err := ns.PendingRequests(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "RAYMOND", got[0].Brand)
	assert.Equal(t, 3, got[1].BlockingCount)
}

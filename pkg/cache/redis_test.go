//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestRedis(t *testing.T) {
	ctx := context.Background()

	ctr, err := testcontainers.Run(ctx, "redis:7-alpine",
		testcontainers.WithExposedPorts("6379/tcp"),
		testcontainers.WithWaitStrategy(wait.ForListeningPort("6379/tcp")),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	addr, err := ctr.Endpoint(ctx, "")
	require.NoError(t, err)

	r := NewRedis(addr)
	t.Cleanup(func() { r.Close() })
	require.NoError(t, r.Ping(ctx))

	var c Cache = r
	_, ok := c.Get(ctx, "stats")
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "stats", `{"summary":{}}`, time.Minute))
	v, ok := c.Get(ctx, "stats")
	assert.True(t, ok)
	assert.Equal(t, `{"summary":{}}`, v)

	require.NoError(t, c.Delete(ctx, "stats"))
	_, ok = c.Get(ctx, "stats")
	assert.False(t, ok)
}

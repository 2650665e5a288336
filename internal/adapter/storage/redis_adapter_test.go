package storage

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func getRedisClient(t *testing.T) *redis.Client {
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()

	ctr, err := tcredis.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	uri, err := ctr.ConnectionString(ctx)
	require.NoError(t, err)

	opts, err := redis.ParseURL(uri)
	require.NoError(t, err)

	client := redis.NewClient(opts)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestSetIdempotency(t *testing.T) {
	client := getRedisClient(t)
	ctx := context.Background()
	adapter := NewRedisAdapter(client)

	ok, err := adapter.SetIdempotency(ctx, "order:u1:req-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = adapter.SetIdempotency(ctx, "order:u1:req-1")
	require.NoError(t, err)
	assert.False(t, ok)

	ttl, err := client.TTL(ctx, idempotencyKeyPrefix+"order:u1:req-1").Result()
	require.NoError(t, err)
	assert.InDelta(t, idempotencyKeyTTL.Seconds(), ttl.Seconds(), 5)

	// Release allows a retry
	require.NoError(t, adapter.ReleaseIdempotency(ctx, "order:u1:req-1"))
	ok, err = adapter.SetIdempotency(ctx, "order:u1:req-1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSetIdempotency_Concurrent(t *testing.T) {
	client := getRedisClient(t)
	ctx := context.Background()
	adapter := NewRedisAdapter(client)

	var wg sync.WaitGroup
	var winners atomic.Int32
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := adapter.SetIdempotency(ctx, "order:u1:same")
			if err == nil && ok {
				winners.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, winners.Load())
}

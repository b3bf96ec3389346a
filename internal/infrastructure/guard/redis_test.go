package guard

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FeedRewriter/internal/config"
)

func newTestGuard(t *testing.T) (*RedisGuard, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	g := NewRedisGuard(config.GuardConfig{Addr: mr.Addr()})
	t.Cleanup(func() { _ = g.Close() })
	return g, mr
}

func TestAcquireIsExclusiveUntilExpiry(t *testing.T) {
	t.Parallel()

	g, mr := newTestGuard(t)
	ctx := context.Background()

	require.NoError(t, g.Ping(ctx))

	ok, err := g.Acquire(ctx, "story", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = g.Acquire(ctx, "story", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.True(t, mr.Exists(keyPrefix+"story"))
	assert.Equal(t, time.Minute, mr.TTL(keyPrefix+"story"))

	mr.FastForward(2 * time.Minute)

	ok, err = g.Acquire(ctx, "story", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestReleaseFreesKey(t *testing.T) {
	t.Parallel()

	g, _ := newTestGuard(t)
	ctx := context.Background()

	ok, err := g.Acquire(ctx, "story", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, g.Release(ctx, "story"))

	ok, err = g.Acquire(ctx, "story", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAcquireReportsConnectionErrors(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	g := NewRedisGuardWithClient(client)
	t.Cleanup(func() { _ = g.Close() })

	mr.Close()

	_, err := g.Acquire(context.Background(), "story", time.Minute)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "acquire publish lock")
}

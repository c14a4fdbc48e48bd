package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestMemoryBlacklistAddAndLookup(t *testing.T) {
	ctx := context.Background()
	bl := NewMemoryBlacklist()

	revoked, err := bl.IsRevoked(ctx, "unknown")
	require.NoError(t, err)
	require.False(t, revoked)

	require.NoError(t, bl.Add(ctx, "jti-1", time.Now().Add(time.Hour)))

	revoked, err = bl.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.True(t, revoked)

	size, err := bl.Size(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, size)
}

func TestMemoryBlacklistExpiredEntryIsAbsent(t *testing.T) {
	ctx := context.Background()
	bl := NewMemoryBlacklist()

	// An entry whose expiry already passed is logically absent: the
	// token would fail the expiry check anyway.
	require.NoError(t, bl.Add(ctx, "stale", time.Now().Add(-time.Second)))

	revoked, err := bl.IsRevoked(ctx, "stale")
	require.NoError(t, err)
	require.False(t, revoked)

	size, err := bl.Size(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, size)
}

func TestMemoryBlacklistSweepPrunesOnlyExpired(t *testing.T) {
	ctx := context.Background()
	bl := NewMemoryBlacklist()

	require.NoError(t, bl.Add(ctx, "live", time.Now().Add(time.Hour)))
	require.NoError(t, bl.Add(ctx, "dead", time.Now().Add(-time.Hour)))
	require.NoError(t, bl.Sweep(ctx))

	size, err := bl.Size(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, size)

	revoked, err := bl.IsRevoked(ctx, "live")
	require.NoError(t, err)
	require.True(t, revoked)
}

func TestMemoryBlacklistAddIsIdempotent(t *testing.T) {
	ctx := context.Background()
	bl := NewMemoryBlacklist()
	exp := time.Now().Add(time.Hour)

	require.NoError(t, bl.Add(ctx, "jti-1", exp))
	require.NoError(t, bl.Add(ctx, "jti-1", exp))

	size, err := bl.Size(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, size)
}

func TestMemoryBlacklistConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	bl := NewMemoryBlacklist()
	exp := time.Now().Add(time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = bl.Add(ctx, fmt.Sprintf("jti-%d-%d", n, j), exp)
			}
		}(i)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, _ = bl.IsRevoked(ctx, fmt.Sprintf("jti-%d-%d", n, j))
			}
		}(i)
	}
	wg.Wait()

	size, err := bl.Size(ctx)
	require.NoError(t, err)
	require.Equal(t, 1600, size)
}

func newTestRedisBlacklist(t *testing.T) (*miniredis.Miniredis, TokenBlacklist) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, NewRedisBlacklist(client)
}

func TestRedisBlacklistAddAndLookup(t *testing.T) {
	ctx := context.Background()
	mr, bl := newTestRedisBlacklist(t)

	require.NoError(t, bl.Add(ctx, "jti-1", time.Now().Add(time.Hour)))

	revoked, err := bl.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.True(t, revoked)

	size, err := bl.Size(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, size)

	// TTL takes the entry out on its own once the token has expired.
	mr.FastForward(2 * time.Hour)

	revoked, err = bl.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.False(t, revoked)
}

func TestRedisBlacklistSkipsAlreadyExpired(t *testing.T) {
	ctx := context.Background()
	_, bl := newTestRedisBlacklist(t)

	require.NoError(t, bl.Add(ctx, "stale", time.Now().Add(-time.Minute)))

	revoked, err := bl.IsRevoked(ctx, "stale")
	require.NoError(t, err)
	require.False(t, revoked)

	size, err := bl.Size(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, size)
}

package services

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "auth:revoked:"

// redisBlacklist is the shared-store TokenBlacklist for multi-instance
// deployments. Redis key TTLs replace the sweep: an entry disappears on
// its own when the underlying token expires.
type redisBlacklist struct {
	rdb *redis.Client
}

func NewRedisBlacklist(rdb *redis.Client) TokenBlacklist {
	return &redisBlacklist{rdb: rdb}
}

func (b *redisBlacklist) Add(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		// Already expired; the token fails the expiry check anyway.
		return nil
	}
	return b.rdb.Set(ctx, revokedKeyPrefix+jti, "1", ttl).Err()
}

func (b *redisBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := b.rdb.Exists(ctx, revokedKeyPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (b *redisBlacklist) Size(ctx context.Context) (int, error) {
	var (
		cursor uint64
		count  int
	)
	for {
		keys, next, err := b.rdb.Scan(ctx, cursor, revokedKeyPrefix+"*", 100).Result()
		if err != nil {
			return 0, err
		}
		count += len(keys)
		if next == 0 {
			return count, nil
		}
		cursor = next
	}
}

func (b *redisBlacklist) Sweep(context.Context) error {
	// Redis expires entries by TTL; there is nothing to do.
	return nil
}

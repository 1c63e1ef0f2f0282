package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/devops-autopost/pkg/logger"
)

const (
	keyPrefix         = "posted:content:"
	connectionTimeout = 2 * time.Second
)

// NewRedisClient connects and pings the server
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, connectionTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// RedisTracker keeps published hashes as expiring keys
type RedisTracker struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

// NewRedisTracker creates a tracker. Keys expire after ttl; zero keeps them forever.
func NewRedisTracker(client *redis.Client, ttl time.Duration, log *logger.Logger) *RedisTracker {
	return &RedisTracker{
		client: client,
		ttl:    ttl,
		log:    log.WithComponent("dedup").WithStore("redis"),
	}
}

func (t *RedisTracker) key(hash string) string {
	return keyPrefix + hash
}

// Seen treats redis errors as not seen
func (t *RedisTracker) Seen(ctx context.Context, hash string) bool {
	exists, err := t.client.Exists(ctx, t.key(hash)).Result()
	if err != nil {
		t.log.Warn().Err(err).Str("hash", hash).Msg("Redis error checking hash")
		return false
	}
	return exists == 1
}

// Mark stores the hash with the configured TTL
func (t *RedisTracker) Mark(ctx context.Context, hash string) error {
	if err := t.client.Set(ctx, t.key(hash), "1", t.ttl).Err(); err != nil {
		return fmt.Errorf("failed to mark hash: %w", err)
	}

	t.log.Debug().Str("hash", hash).Dur("ttl", t.ttl).Msg("Hash marked as posted")
	return nil
}

// Clear removes every tracked hash and returns how many keys were deleted
func (t *RedisTracker) Clear(ctx context.Context) (int, error) {
	const scanBatchSize = 100

	var cursor uint64
	deleted := 0
	for {
		keys, next, err := t.client.Scan(ctx, cursor, keyPrefix+"*", scanBatchSize).Result()
		if err != nil {
			return deleted, fmt.Errorf("failed to scan keys: %w", err)
		}
		if len(keys) > 0 {
			n, err := t.client.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, fmt.Errorf("failed to delete keys: %w", err)
			}
			deleted += int(n)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	t.log.Info().Int("keys_deleted", deleted).Msg("Cleared posted hashes")
	return deleted, nil
}

var _ Index = (*RedisTracker)(nil)

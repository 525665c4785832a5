package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yigit/swimdesk/internal/domain"
	"github.com/yigit/swimdesk/internal/pkg/logger"
)

const usageKeyPrefix = "session:usage:"

// ErrCacheMiss is returned when no usage snapshot is cached for a session
var ErrCacheMiss = errors.New("cache miss")

// UsageCache stores computed session usage snapshots
type UsageCache interface {
	GetUsage(ctx context.Context, sessionID int64) (*domain.CapacityResult, error)
	SetUsage(ctx context.Context, sessionID int64, usage domain.CapacityResult) error
	InvalidateUsage(ctx context.Context, sessionIDs ...int64) error
}

// NewRedisClient parses a redis:// URL and verifies the connection
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// RedisUsageCache keeps usage snapshots as JSON strings with a TTL
type RedisUsageCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisUsageCache creates a usage cache on top of client
func NewRedisUsageCache(client *redis.Client, ttl time.Duration) *RedisUsageCache {
	return &RedisUsageCache{client: client, ttl: ttl}
}

// UsageKey returns the redis key for a session's usage snapshot
func UsageKey(sessionID int64) string {
	return usageKeyPrefix + strconv.FormatInt(sessionID, 10)
}

// GetUsage returns the cached snapshot or ErrCacheMiss
func (c *RedisUsageCache) GetUsage(ctx context.Context, sessionID int64) (*domain.CapacityResult, error) {
	raw, err := c.client.Get(ctx, UsageKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get usage: %w", err)
	}

	var usage domain.CapacityResult
	if err := json.Unmarshal(raw, &usage); err != nil {
		// A corrupt entry is treated as a miss and dropped
		logger.Warn().Err(err).Int64("sessionID", sessionID).Msg("Discarding unreadable usage cache entry")
		_ = c.client.Del(ctx, UsageKey(sessionID)).Err()
		return nil, ErrCacheMiss
	}
	return &usage, nil
}

// SetUsage stores a snapshot for the configured TTL
func (c *RedisUsageCache) SetUsage(ctx context.Context, sessionID int64, usage domain.CapacityResult) error {
	raw, err := json.Marshal(usage)
	if err != nil {
		return fmt.Errorf("marshal usage: %w", err)
	}
	if err := c.client.Set(ctx, UsageKey(sessionID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set usage: %w", err)
	}
	return nil
}

// InvalidateUsage drops the snapshots of the given sessions
func (c *RedisUsageCache) InvalidateUsage(ctx context.Context, sessionIDs ...int64) error {
	if len(sessionIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(sessionIDs))
	for _, id := range sessionIDs {
		keys = append(keys, UsageKey(id))
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis invalidate usage: %w", err)
	}
	return nil
}

// NoopUsageCache is used when redis is disabled; every lookup misses
type NoopUsageCache struct{}

func (NoopUsageCache) GetUsage(context.Context, int64) (*domain.CapacityResult, error) {
	return nil, ErrCacheMiss
}

func (NoopUsageCache) SetUsage(context.Context, int64, domain.CapacityResult) error { return nil }

func (NoopUsageCache) InvalidateUsage(context.Context, ...int64) error { return nil }

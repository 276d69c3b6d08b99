// Package cache is the best-effort Redis overlay in front of the store.
// Entries are advisory: every operation must stay correct when the cache
// is absent or stale, so errors are logged and swallowed, and nothing
// reads the cache to decide ownership or existence.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

const prefix = "agenthub:"

// TTL tiers.
const (
	TTLShort    = 5 * time.Minute
	TTLMedium   = time.Hour
	TTLLong     = 24 * time.Hour
	TTLVeryLong = 7 * 24 * time.Hour
)

// Cache wraps a Redis client under a fixed key namespace. A nil *Cache is
// valid and disables every operation.
type Cache struct {
	client *redis.Client
	log    zerolog.Logger
}

// New connects to Redis. Connection failure is reported but callers may
// choose to continue without a cache.
func New(redisURL string, log zerolog.Logger) (*Cache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	log.Info().Msg("connected to Redis")
	return &Cache{client: client, log: log}, nil
}

// Get unmarshals the cached value into dest. Returns false on miss or any
// error.
func (c *Cache) Get(ctx context.Context, key string, dest any) bool {
	if c == nil {
		return false
	}
	data, err := c.client.Get(ctx, prefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn().Err(err).Str("key", key).Msg("cache get failed")
		}
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cache entry corrupt")
		return false
	}
	return true
}

// Set stores value under key for ttl.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	if c == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cache marshal failed")
		return
	}
	if err := c.client.Set(ctx, prefix+key, data, ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cache set failed")
	}
}

// Del removes keys.
func (c *Cache) Del(ctx context.Context, keys ...string) {
	if c == nil || len(keys) == 0 {
		return
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = prefix + k
	}
	if err := c.client.Del(ctx, prefixed...).Err(); err != nil {
		c.log.Warn().Err(err).Msg("cache delete failed")
	}
}

// Ping checks the Redis connection.
func (c *Cache) Ping(ctx context.Context) error {
	if c == nil {
		return fmt.Errorf("cache disabled")
	}
	return c.client.Ping(ctx).Err()
}

// Close releases the client.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}

// Key builders for the fixed namespace.

func UserKey(id string) string              { return "user:" + id }
func AgentKey(id string) string             { return "agent:" + id }
func AgentsListKey(userID string) string    { return "agents:" + userID }
func AgentTokenKey(token string) string     { return "agent:token:" + token }
func ConversationKey(id string) string      { return "conversation:" + id }
func ConversationsKey(userID string) string { return "conversations:" + userID }
func TemplateKey(id string) string          { return "template:" + id }
func PluginKey(id string) string            { return "plugin:" + id }

// Package cache provides a Redis client wrapper and the assembled course
// context cache built on it.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL is how long an assembled course context stays cached.
const DefaultTTL = time.Hour

const contextKeyPrefix = "cogniquiz:context:"

// Cache wraps a Redis client.
type Cache struct {
	Client *redis.Client
	TTL    time.Duration
}

// ParseURL validates a Redis connection URL.
func ParseURL(url string) (*redis.Options, error) {
	if url == "" {
		return nil, fmt.Errorf("cache URL is empty")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid cache URL: %w", err)
	}
	return opts, nil
}

// New creates a new cache client and verifies the connection. A ttl of
// zero selects DefaultTTL.
func New(ctx context.Context, url string, ttl time.Duration) (*Cache, error) {
	opts, err := ParseURL(url)
	if err != nil {
		return nil, err
	}

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging cache: %w", err)
	}

	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{Client: client, TTL: ttl}, nil
}

// Close shuts down the cache client.
func (c *Cache) Close() error {
	return c.Client.Close()
}

// HealthCheck verifies the cache connection is alive.
func (c *Cache) HealthCheck(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

// ContextKey is the Redis key holding a course's assembled context.
func ContextKey(courseID string) string {
	return contextKeyPrefix + courseID
}

// GetContext returns the cached context. ok is false on a miss.
func (c *Cache) GetContext(ctx context.Context, courseID string) (text string, ok bool, err error) {
	text, err = c.Client.Get(ctx, ContextKey(courseID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get context %s: %w", courseID, err)
	}
	return text, true, nil
}

// SetContext stores the assembled context with the cache TTL.
func (c *Cache) SetContext(ctx context.Context, courseID, text string) error {
	if err := c.Client.Set(ctx, ContextKey(courseID), text, c.TTL).Err(); err != nil {
		return fmt.Errorf("set context %s: %w", courseID, err)
	}
	return nil
}

// InvalidateContext drops the cached context of a course.
func (c *Cache) InvalidateContext(ctx context.Context, courseID string) error {
	if err := c.Client.Del(ctx, ContextKey(courseID)).Err(); err != nil {
		return fmt.Errorf("invalidate context %s: %w", courseID, err)
	}
	return nil
}

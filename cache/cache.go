// Package cache holds session-scoped derived state (goal snapshots, open
// channel selection) in Redis. Nothing in it is authoritative: every error
// behaves like a miss so the core keeps working with Redis absent.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client wraps redis.Client and fails safe. A nil *Client disables caching.
type Client struct {
	client *redis.Client
}

// New connects to Redis at addr.
func New(addr string) *Client {
	return &Client{client: redis.NewClient(&redis.Options{Addr: addr})}
}

// NewWithClient wraps an existing Redis client.
func NewWithClient(client *redis.Client) *Client {
	return &Client{client: client}
}

// Get returns the value, or nil on miss or any Redis failure.
func (c *Client) Get(ctx context.Context, key string) []byte {
	if c == nil || c.client == nil {
		return nil
	}
	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil
	}
	return val
}

// Set stores value with a TTL, ignoring Redis failures.
func (c *Client) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Set(ctx, key, value, ttl).Err()
}

// Delete removes keys, ignoring Redis failures.
func (c *Client) Delete(ctx context.Context, keys ...string) {
	if c == nil || c.client == nil || len(keys) == 0 {
		return
	}
	_ = c.client.Del(ctx, keys...).Err()
}

// Ping reports whether Redis is reachable.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return errors.New("cache: no client configured")
	}
	return c.client.Ping(ctx).Err()
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

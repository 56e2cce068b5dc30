package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client wraps redis.Client and fails safe: connectivity errors behave like a
// cache miss so the database remains the source of truth.
type Client struct {
	client *redis.Client
}

// New creates a new Redis client. An empty addr yields a disabled cache.
func New(addr, password string, db int) *Client {
	if addr == "" {
		return &Client{}
	}
	return &Client{client: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

// Enabled reports whether a Redis backend is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.client != nil
}

// GetJSON decodes the cached value into dst. It reports false on miss,
// decode failure or when redis is unavailable.
func (c *Client) GetJSON(ctx context.Context, key string, dst any) bool {
	if !c.Enabled() {
		return false
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

// SetJSON stores value encoded as JSON with TTL, ignoring redis errors.
func (c *Client) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) {
	if !c.Enabled() {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, key, payload, ttl).Err()
}

// AddJSON stores value only when key is absent and reports whether it did.
func (c *Client) AddJSON(ctx context.Context, key string, value any, ttl time.Duration) bool {
	if !c.Enabled() {
		return false
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return false
	}
	ok, err := c.client.SetNX(ctx, key, payload, ttl).Result()
	return err == nil && ok
}

// Delete removes a key, ignoring redis errors.
func (c *Client) Delete(ctx context.Context, key string) {
	if !c.Enabled() {
		return
	}
	_ = c.client.Del(ctx, key).Err()
}

// Claim atomically records key with TTL and reports whether this caller was
// first. Without redis every claim succeeds.
func (c *Client) Claim(ctx context.Context, key string, ttl time.Duration) bool {
	if !c.Enabled() {
		return true
	}
	ok, err := c.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		// fail open
		return true
	}
	return ok
}

// Close releases the underlying connection pool.
func (c *Client) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}

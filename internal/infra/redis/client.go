package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client wraps Redis operations for rate-limit bookkeeping.
type Client struct {
	rdb *redis.Client
}

// Config holds Redis connection configuration.
type Config struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
}

// NewClient creates a new Redis client.
func NewClient(cfg Config) (*Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	rdb := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

func limitKey(clientID string) string {
	return fmt.Sprintf("ratelimit:%s", clientID)
}

// IncrWindow increments the client's request counter and returns the new
// count. The key expires after the window so stale counters clean
// themselves up server-side.
func (c *Client) IncrWindow(ctx context.Context, clientID string, window time.Duration) (int64, error) {
	key := limitKey(clientID)

	count, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment %s: %w", key, err)
	}
	if count == 1 {
		if err := c.rdb.Expire(ctx, key, window).Err(); err != nil {
			return count, fmt.Errorf("failed to set TTL on %s: %w", key, err)
		}
	}
	return count, nil
}

// ResetClient drops the counter for one client.
func (c *Client) ResetClient(ctx context.Context, clientID string) error {
	if err := c.rdb.Del(ctx, limitKey(clientID)).Err(); err != nil {
		return fmt.Errorf("failed to reset %s: %w", clientID, err)
	}
	return nil
}

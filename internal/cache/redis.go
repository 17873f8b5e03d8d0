// Package cache wraps the Redis client used for rate limiting and caching.
//
// Open only parses REDIS_URL and builds the client; go-redis dials lazily,
// so a missing Redis never blocks startup.  Readiness is reported through
// Ping.
package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Client is a thin handle over *redis.Client.
type Client struct {
	rdb *redis.Client
}

// Open builds a client from a redis:// or rediss:// URL.
func Open(rawURL string) (*Client, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("cache: parse url: %w", err)
	}
	return &Client{rdb: redis.NewClient(opts)}, nil
}

// Addr reports host:port and DB index, for logging.
func (c *Client) Addr() (string, int) {
	o := c.rdb.Options()
	return o.Addr, o.DB
}

func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *Client) Close() error { return c.rdb.Close() }

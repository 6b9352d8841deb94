package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// DefaultSnapshotKey is the key the server stores its snapshot under.
const DefaultSnapshotKey = "teams:snapshot"

// Client wraps a Redis connection used as a snapshot backend.
type Client struct {
	rdb *goredis.Client
}

// NewClient creates a Redis client from a URL and verifies the connection.
func NewClient(redisURL string) (*Client, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}
	rdb := goredis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return &Client{rdb: rdb}, nil
}

// Ping checks the Redis connection.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// SnapshotBackend stores the encoded snapshot under a single key.
type SnapshotBackend struct {
	client *Client
	key    string
}

// SnapshotBackend returns a backend bound to key.
func (c *Client) SnapshotBackend(key string) *SnapshotBackend {
	if key == "" {
		key = DefaultSnapshotKey
	}
	return &SnapshotBackend{client: c, key: key}
}

// Get returns the stored snapshot, or nil if the key is unset.
func (b *SnapshotBackend) Get(ctx context.Context) ([]byte, error) {
	data, err := b.client.rdb.Get(ctx, b.key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting snapshot: %w", err)
	}
	return data, nil
}

// Set replaces the stored snapshot. The key never expires.
func (b *SnapshotBackend) Set(ctx context.Context, data []byte) error {
	if err := b.client.rdb.Set(ctx, b.key, data, 0).Err(); err != nil {
		return fmt.Errorf("setting snapshot: %w", err)
	}
	return nil
}

// Ping checks the underlying connection.
func (b *SnapshotBackend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx)
}

package redis

import (
	"context"
	"time"
)

// ClientInterface defines the Redis operations services depend on, so tests
// can substitute a mock.
type ClientInterface interface {
	SetWithExpiration(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	GetString(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	Close() error
}

var _ ClientInterface = (*Client)(nil)

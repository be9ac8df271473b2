package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultDialTimeout = 5 * time.Second

// Config selects the Redis instance holding the panel's local collections.
type Config struct {
	Addr     string
	Password string
	DB       int
	// DialTimeout bounds both dialing and the startup ping.
	DialTimeout time.Duration
}

// Open connects to Redis and returns the key-value store backed by it. The
// store is unusable if the startup ping fails.
func Open(ctx context.Context, cfg Config) (*KeyValueStore, error) {
	timeout := cfg.DialTimeout
	if timeout <= 0 {
		timeout = defaultDialTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		ClientName:  "taskpanel",
		DialTimeout: timeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return NewKeyValueStore(client), nil
}

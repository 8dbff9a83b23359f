package config

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient builds a client for the change stream from REDIS_URL.
func NewRedisClient(cfg ChangeStreamConfig) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	opts.PoolTimeout = 4 * time.Second
	opts.ConnMaxIdleTime = 30 * time.Minute
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}

	return redis.NewClient(opts), nil
}

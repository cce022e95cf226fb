// internal/common/database/redis.go
package database

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"voice-assistant/internal/common/config"
)

// ErrUnreadable marks a stored value that is not a float.
var ErrUnreadable = errors.New("stored value is not a number")

// RedisClient is the polarity cache connection. Values are stored as decimal strings.
type RedisClient struct {
	Client *redis.Client
}

// NewRedis builds the client without dialing; Ping checks the server.
func NewRedis(cfg config.RedisConfig) (*RedisClient, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("database.redis.address is required")
	}
	return &RedisClient{Client: redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})}, nil
}

func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

func (c *RedisClient) Close() error {
	if c.Client == nil {
		return nil
	}
	return c.Client.Close()
}

// LoadFloat returns the number under key. ok is false when the key is absent.
func (c *RedisClient) LoadFloat(ctx context.Context, key string) (value float64, ok bool, err error) {
	raw, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	value, err = strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %q under %s", ErrUnreadable, raw, key)
	}
	return value, true, nil
}

// StoreFloat writes value under key with the given expiry; zero ttl keeps it forever.
func (c *RedisClient) StoreFloat(ctx context.Context, key string, value float64, ttl time.Duration) error {
	return c.Client.Set(ctx, key, strconv.FormatFloat(value, 'g', -1, 64), ttl).Err()
}

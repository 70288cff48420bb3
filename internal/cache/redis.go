package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"rentwheels-backend/internal/config"
)

// ErrMiss is returned when a key is absent. Callers fall through to the
// repository on a miss; any other error should be logged but treated the
// same way, the cache is never authoritative.
var ErrMiss = errors.New("cache miss")

// Client wraps a redis connection with JSON helpers for the booking
// snapshot cache.
type Client struct {
	rdb         *redis.Client
	snapshotTTL time.Duration
}

func NewClient(cfg *config.RedisConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &Client{
		rdb:         rdb,
		snapshotTTL: time.Duration(cfg.SnapshotTTL) * time.Second,
	}, nil
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

func (c *Client) SnapshotTTL() time.Duration {
	return c.snapshotTTL
}

func (c *Client) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return c.rdb.Set(ctx, key, data, ttl).Err()
}

func (c *Client) GetJSON(ctx context.Context, key string, dest interface{}) error {
	data, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return ErrMiss
		}
		return fmt.Errorf("failed to read from redis: %w", err)
	}
	return json.Unmarshal([]byte(data), dest)
}

func (c *Client) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}

// BookingKey is the cache key for a single booking snapshot.
func BookingKey(bookingID string) string {
	return fmt.Sprintf("booking:%s", bookingID)
}

// OfferKey is the cache key for a single offer snapshot.
func OfferKey(offerID string) string {
	return fmt.Sprintf("offer:%s", offerID)
}

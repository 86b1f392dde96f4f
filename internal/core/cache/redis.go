package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/arzdex/arzdex/internal/core/models"
)

// PriceCache publishes the latest catalog prices for read-side consumers.
// A nil *RedisCache is a valid no-op cache.
type PriceCache interface {
	SetLatestPrice(ctx context.Context, crypto models.Cryptocurrency) error
	GetLatestPrice(ctx context.Context, cryptoID string) (*models.Cryptocurrency, error)
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(addr, password string, db int, ttl time.Duration) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisCache{client: client, ttl: ttl}, nil
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) SetLatestPrice(ctx context.Context, crypto models.Cryptocurrency) error {
	if c == nil {
		return nil
	}
	key := fmt.Sprintf("price:latest:%s", crypto.ID)
	data, err := json.Marshal(crypto)
	if err != nil {
		return fmt.Errorf("failed to marshal price: %w", err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set latest price in redis: %w", err)
	}
	return nil
}

func (c *RedisCache) GetLatestPrice(ctx context.Context, cryptoID string) (*models.Cryptocurrency, error) {
	if c == nil {
		return nil, nil
	}
	key := fmt.Sprintf("price:latest:%s", cryptoID)
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest price from redis: %w", err)
	}

	var crypto models.Cryptocurrency
	if err := json.Unmarshal(data, &crypto); err != nil {
		return nil, fmt.Errorf("failed to unmarshal price: %w", err)
	}
	return &crypto, nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

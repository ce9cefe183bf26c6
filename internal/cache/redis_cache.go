package cache

import (
	"context"
	"encoding/json"
	"time"

	redis "github.com/redis/go-redis/v9"

	"digistock/backend/internal/domain"
)

type RedisBarcodeCache struct {
	client *redis.Client
}

func NewRedisBarcodeCache(addr string, password string, db int) *RedisBarcodeCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisBarcodeCache{client: client}
}

func (c *RedisBarcodeCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisBarcodeCache) Close() error {
	return c.client.Close()
}

func cacheKey(barcode string) string {
	return "barcode:" + barcode
}

func (c *RedisBarcodeCache) Get(ctx context.Context, barcode string) (*domain.BarcodeLookup, bool, error) {
	val, err := c.client.Get(ctx, cacheKey(barcode)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var lookup domain.BarcodeLookup
	if err := json.Unmarshal([]byte(val), &lookup); err != nil {
		return nil, false, err
	}
	return &lookup, true, nil
}

func (c *RedisBarcodeCache) Set(ctx context.Context, barcode string, value *domain.BarcodeLookup, ttl time.Duration) error {
	if value == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cacheKey(barcode), payload, ttl).Err()
}

func (c *RedisBarcodeCache) Invalidate(ctx context.Context, barcode string) error {
	return c.client.Del(ctx, cacheKey(barcode)).Err()
}

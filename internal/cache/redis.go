package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/fjod/yume/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	menuKey        = "menu:catalog"
	DefaultMenuTTL = 15 * time.Minute
)

func NewRedisCache(client *redis.Client, baseTTL time.Duration) *RedisCache {
	if baseTTL <= 0 {
		baseTTL = DefaultMenuTTL
	}
	return &RedisCache{
		client:  client,
		baseTTL: baseTTL,
	}
}

type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func (r RedisCache) Get(ctx context.Context) (*domain.Menu, error) {
	data, err := r.client.Get(ctx, menuKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var menu domain.Menu
	if err := json.Unmarshal(data, &menu); err != nil {
		return nil, fmt.Errorf("unmarshal menu failed: %w", err)
	}

	return &menu, nil
}

func (r RedisCache) Set(ctx context.Context, menu *domain.Menu) error {
	data, err := json.Marshal(menu)
	if err != nil {
		return fmt.Errorf("marshal menu failed: %w", err)
	}

	if err := r.client.Set(ctx, menuKey, data, r.ttl()).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r RedisCache) Delete(ctx context.Context) error {
	if err := r.client.Del(ctx, menuKey).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}

	return nil
}

// ttl spreads expiry over baseTTL plus up to a fifth of it
func (r RedisCache) ttl() time.Duration {
	spread := int64(r.baseTTL / 5)
	if spread <= 0 {
		return r.baseTTL
	}
	return r.baseTTL + time.Duration(rand.Int63n(spread))
}

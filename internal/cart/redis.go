package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
)

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client:  client,
		baseTTL: 15 * time.Minute,
	}
}

type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func (r RedisCache) Get(ctx context.Context, email string) (*Cart, error) {
	data, err := r.client.Get(ctx, cacheKey(email)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var cart Cart
	if err2 := json.Unmarshal(data, &cart); err2 != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err2)
	}

	return &cart, nil
}

func (r RedisCache) Set(ctx context.Context, email string, cart *Cart) error {
	jsonCart, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}

	// jitter spreads expiry so a burst of carts cached together does not
	// expire together
	ttl := r.baseTTL + time.Duration(rand.Intn(5))*time.Minute
	if errSet := r.client.Set(ctx, cacheKey(email), jsonCart, ttl).Err(); errSet != nil {
		return fmt.Errorf("redis set failed: %w", errSet)
	}
	return nil
}

func (r RedisCache) Delete(ctx context.Context, email string) error {
	if err := r.client.Del(ctx, cacheKey(email)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func cacheKey(email string) string {
	return fmt.Sprintf("cart:%s", email)
}

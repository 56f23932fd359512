package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/fjod/go_cart/shop-service/domain"
	"github.com/redis/go-redis/v9"
)

const (
	maxJitterMinutes = 5
	// generationTTL outlives any in-flight Set by a wide margin.
	generationTTL = time.Hour
)

// KEYS[1] cart, KEYS[2] generation; ARGV[1] expected generation, ARGV[2] payload, ARGV[3] ttl ms.
var setIfCurrent = redis.NewScript(`
local gen = redis.call("GET", KEYS[2]) or "0"
if gen ~= ARGV[1] then
	return 0
end
redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
return 1
`)

// KEYS[1] cart, KEYS[2] generation; ARGV[1] generation ttl ms.
var invalidate = redis.NewScript(`
redis.call("DEL", KEYS[1])
local gen = redis.call("INCR", KEYS[2])
redis.call("PEXPIRE", KEYS[2], ARGV[1])
return gen
`)

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

func (r *RedisCache) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	data, err := r.client.Get(ctx, cacheKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}

	return &cart, nil
}

// Generation must be read before the cart is loaded from the store.
func (r *RedisCache) Generation(ctx context.Context, userID string) (int64, error) {
	gen, err := r.client.Get(ctx, generationKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get generation failed: %w", err)
	}
	return gen, nil
}

// Set spreads expirations over a few minutes so carts cached together do not
// all expire together.
func (r *RedisCache) Set(ctx context.Context, userID string, cart *domain.Cart, generation int64) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}

	jitter := time.Duration(rand.IntN(maxJitterMinutes)) * time.Minute
	ttl := r.baseTTL + jitter

	stored, err := setIfCurrent.Run(ctx, r.client,
		[]string{cacheKey(userID), generationKey(userID)},
		strconv.FormatInt(generation, 10), data, ttl.Milliseconds(),
	).Int()
	if err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	if stored == 0 {
		return ErrStaleCart
	}
	return nil
}

// Delete drops the cached cart and moves the generation forward.
func (r *RedisCache) Delete(ctx context.Context, userID string) error {
	err := invalidate.Run(ctx, r.client,
		[]string{cacheKey(userID), generationKey(userID)},
		generationTTL.Milliseconds(),
	).Err()
	if err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func cacheKey(userID string) string {
	return fmt.Sprintf("cart:%s", userID)
}

func generationKey(userID string) string {
	return fmt.Sprintf("cart:%s:gen", userID)
}

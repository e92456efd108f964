package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const redisKeyPrefix = "pos:cart:"

// RedisStore keeps each terminal's cart under "pos:cart:<terminal>". A
// non-zero ttl lets abandoned carts expire.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Load(ctx context.Context, terminalID string) (Cart, error) {
	raw, err := s.client.Get(ctx, redisKeyPrefix+terminalID).Bytes()
	if errors.Is(err, redis.Nil) {
		return Empty(), nil
	}
	if err != nil {
		return Empty(), fmt.Errorf("redis get cart: %w", err)
	}
	return decode(raw)
}

func (s *RedisStore) Save(ctx context.Context, terminalID string, c Cart) error {
	raw, err := encode(c)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, redisKeyPrefix+terminalID, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set cart: %w", err)
	}
	return nil
}

func (s *RedisStore) Erase(ctx context.Context, terminalID string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+terminalID).Err(); err != nil {
		return fmt.Errorf("redis del cart: %w", err)
	}
	return nil
}

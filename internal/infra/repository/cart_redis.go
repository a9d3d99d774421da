package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	repo "storefront/internal/repository"

	"github.com/redis/go-redis/v9"
)

const cartKeyPrefix = "cart:"

type CartRedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// ttl が0なら期限なし
func NewCartRedisStore(client *redis.Client, ttl time.Duration) *CartRedisStore {
	return &CartRedisStore{client: client, ttl: ttl}
}

func (s *CartRedisStore) Load(ctx context.Context, sessionID string) ([]byte, error) {
	payload, err := s.client.Get(ctx, cartKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, repo.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart from redis: %w", err)
	}
	return payload, nil
}

// 保存のたびにTTLを延長する
func (s *CartRedisStore) Save(ctx context.Context, sessionID string, payload []byte) error {
	if err := s.client.Set(ctx, cartKey(sessionID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save cart to redis: %w", err)
	}
	return nil
}

func cartKey(sessionID string) string {
	return cartKeyPrefix + sessionID
}

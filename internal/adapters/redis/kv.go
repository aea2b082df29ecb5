package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type KVStore struct {
	redis *redis.Client
}

func NewKVStore(r *redis.Client) *KVStore {
	return &KVStore{redis: r}
}

func (s *KVStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.redis.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("kv get failed: %w", err)
	}

	return v, true, nil
}

func (s *KVStore) Set(ctx context.Context, key, value string) error {
	if err := s.redis.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("kv set failed: %w", err)
	}
	return nil
}

func (s *KVStore) Delete(ctx context.Context, key string) error {
	if err := s.redis.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("kv del failed: %w", err)
	}
	return nil
}

func (s *KVStore) Close() error {
	return s.redis.Close()
}

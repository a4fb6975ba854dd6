package guardstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"reviewgate/internal/domain/review"

	"github.com/redis/go-redis/v9"
)

var _ review.StateStore = (*RedisStore)(nil)

// RedisStore persists submission guard state in Redis, one JSON value per
// identity key. Entries carry a TTL slightly longer than the guard window so
// expired windows clean themselves up; the guard treats a missing key as a
// fresh window anyway.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a new Redis-backed guard state store.
func NewRedisStore(redisAddr, password string, db int, window time.Duration) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: password,
		DB:       db,
	})

	return &RedisStore{
		client: client,
		ttl:    window + time.Minute,
	}
}

func (s *RedisStore) key(key string) string {
	return fmt.Sprintf("reviewgate:guard:%s", key)
}

// Get returns the stored state, or nil, nil when the key is absent.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading guard state: %w", err)
	}
	return val, nil
}

// Set stores the state with the configured TTL.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.key(key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("writing guard state: %w", err)
	}
	return nil
}

// Delete removes the state for the key.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("deleting guard state: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

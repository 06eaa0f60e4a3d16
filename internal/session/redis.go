package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "sentinel:session:fp:"

// RedisStore is a redis-backed session binding store for multi-instance
// deployments
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to redis at the given URL and verifies the
// connection
func NewRedisStore(ctx context.Context, redisURL string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	return &RedisStore{client: client, ttl: ttl}, nil
}

// GetFingerprint returns the fingerprint bound to the session, or "" when
// none is bound
func (s *RedisStore) GetFingerprint(ctx context.Context, sessionID string) (string, error) {
	val, err := s.client.Get(ctx, redisKeyPrefix+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading session binding: %w", err)
	}
	return val, nil
}

// BindFingerprint attaches a fingerprint to the session with the store TTL
func (s *RedisStore) BindFingerprint(ctx context.Context, sessionID, fingerprint string) error {
	if err := s.client.Set(ctx, redisKeyPrefix+sessionID, fingerprint, s.ttl).Err(); err != nil {
		return fmt.Errorf("writing session binding: %w", err)
	}
	return nil
}

// Clear removes the session's binding
func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("clearing session binding: %w", err)
	}
	return nil
}

// Close releases the redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}

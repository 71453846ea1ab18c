package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "portal:session:"

// RedisSessionStore keeps session-scoped values, one Redis key per
// session and name.
type RedisSessionStore struct {
	client *redis.Client
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func sessionKey(sessionID, key string) string {
	return sessionKeyPrefix + sessionID + ":" + key
}

func (s *RedisSessionStore) Set(ctx context.Context, sessionID, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, sessionKey(sessionID, key), value, ttl).Err()
}

func (s *RedisSessionStore) Get(ctx context.Context, sessionID, key string) ([]byte, error) {
	raw, err := s.client.Get(ctx, sessionKey(sessionID, key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return raw, nil
}

// Pop uses GETDEL so concurrent readers cannot both receive the value.
func (s *RedisSessionStore) Pop(ctx context.Context, sessionID, key string) ([]byte, error) {
	raw, err := s.client.GetDel(ctx, sessionKey(sessionID, key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return raw, nil
}

func (s *RedisSessionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

package auth

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

const sessionPrefix = "cartadmin:session:"

// RedisStore keeps scs session data in redis so sessions survive restarts
// and are shared between replicas.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: sessionPrefix}
}

func (s *RedisStore) Find(token string) ([]byte, bool, error) {
	b, err := s.client.Get(context.Background(), s.prefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (s *RedisStore) Commit(token string, b []byte, expiry time.Time) error {
	ttl := time.Until(expiry)
	if ttl <= 0 {
		return s.Delete(token)
	}
	return s.client.Set(context.Background(), s.prefix+token, b, ttl).Err()
}

func (s *RedisStore) Delete(token string) error {
	return s.client.Del(context.Background(), s.prefix+token).Err()
}

package token

import (
	"context"
	"errors"
	"fmt"
	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

const defaultRedisKey = "smartdata:token"

type RedisStore struct {
	client redis.UniversalClient
	key    string
}

var _ Store = &RedisStore{}

func NewRedisStore(client redis.UniversalClient, key string) *RedisStore {
	if key == "" {
		key = defaultRedisKey
	}
	return &RedisStore{
		client: client,
		key:    key,
	}
}

func (r *RedisStore) Get(ctx context.Context) (*CachedToken, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("unable to get cached token: %w", err)
	}

	token := &CachedToken{}
	if err := json.Unmarshal(data, token); err != nil {
		return nil, fmt.Errorf("unable to unmarshal cached token: %w", err)
	}
	return token, nil
}

// Set stores the token without a redis expiration, expiry is checked by the cache against ExpiresAt
func (r *RedisStore) Set(ctx context.Context, token CachedToken) error {
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("unable to marshal token: %w", err)
	}
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("unable to cache token: %w", err)
	}
	return nil
}

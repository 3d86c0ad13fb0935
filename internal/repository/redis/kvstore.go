package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/storefront/internal/repository"
	"github.com/utafrali/storefront/pkg/database"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

const keyPrefix = "storefront:"

// KVStore implements repository.KVStore using Redis.
type KVStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

var _ repository.KVStore = (*KVStore)(nil)

// NewKVStore creates a Redis-backed store. A zero ttl keeps keys forever.
func NewKVStore(client redis.UniversalClient, ttl time.Duration) *KVStore {
	return &KVStore{
		client: client,
		ttl:    ttl,
	}
}

// Get retrieves a value by key from Redis. The bytes are returned as stored;
// decoding, and discarding what no longer decodes, is left to the caller.
func (s *KVStore) Get(ctx context.Context, key string) (_ json.RawMessage, err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemRedis, "Get", "GET "+keyPrefix+key)
	defer func() { end(err) }()

	data, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.NotFound("key", key)
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return data, nil
}

// Set stores value under key with the configured TTL.
func (s *KVStore) Set(ctx context.Context, key string, value json.RawMessage) (err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemRedis, "Set", "SET "+keyPrefix+key)
	defer func() { end(err) }()

	if err := s.client.Set(ctx, keyPrefix+key, []byte(value), s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete removes a key from Redis.
func (s *KVStore) Delete(ctx context.Context, key string) (err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemRedis, "Delete", "DEL "+keyPrefix+key)
	defer func() { end(err) }()

	if err := s.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

func (s *KVStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

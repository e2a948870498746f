// Package store keeps the per-session parameters a catalog may reference
// (a question id, the current user's company) in Redis.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"CatalogAPI/internal/catalog"
	"CatalogAPI/internal/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "catalog:store:"

var ErrInvalidID = errors.New("invalid store id")

// HashClient is the subset of *redis.Client the store needs.
type HashClient interface {
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
	HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

type RedisStore struct {
	client HashClient
	ttl    time.Duration
}

func NewRedisStore(client HashClient, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func key(id string) string {
	return keyPrefix + id
}

// Save writes values under a fresh id and returns it. Values are JSON encoded
// one field per key.
func (s *RedisStore) Save(ctx context.Context, values map[string]any) (string, error) {
	id := uuid.NewString()
	if len(values) == 0 {
		return id, nil
	}

	fields := make(map[string]any, len(values))
	for k, v := range values {
		raw, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("encode store value %q: %w", k, err)
		}
		fields[k] = string(raw)
	}

	if err := s.client.HSet(ctx, key(id), fields).Err(); err != nil {
		return "", fmt.Errorf("redis hset: %w", err)
	}
	if s.ttl > 0 {
		if err := s.client.Expire(ctx, key(id), s.ttl).Err(); err != nil {
			return "", fmt.Errorf("redis expire: %w", err)
		}
	}
	logger.Debug("store_saved", map[string]any{"store_id": id, "keys": len(values)})
	return id, nil
}

// Load returns a read-only snapshot of the store. An unknown or expired id
// yields an empty store.
func (s *RedisStore) Load(ctx context.Context, id string) (catalog.MapStore, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	// urn and braced forms name the same store
	id = parsed.String()

	raw, err := s.client.HGetAll(ctx, key(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall: %w", err)
	}

	out := make(catalog.MapStore, len(raw))
	for k, v := range raw {
		var val any
		if err := json.Unmarshal([]byte(v), &val); err != nil {
			logger.Warn("store_value_undecodable", map[string]any{"store_id": id, "key": k, "error": err.Error()})
			continue
		}
		out[k] = normalize(val)
	}
	return out, nil
}

// normalize turns whole JSON numbers back into int64 so they bind to integer
// columns.
func normalize(v any) any {
	switch t := v.(type) {
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1<<53 {
			return int64(t)
		}
		return t
	case []any:
		for i := range t {
			t[i] = normalize(t[i])
		}
		return t
	}
	return v
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mansoorceksport/fitlog/internal/domain"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// RedisKeyValueStore implements domain.KeyValueStore using Redis
type RedisKeyValueStore struct {
	client *redis.Client
}

// NewRedisKeyValueStore creates a new Redis backed key-value store
func NewRedisKeyValueStore(client *redis.Client) *RedisKeyValueStore {
	return &RedisKeyValueStore{
		client: client,
	}
}

// Get retrieves the raw value stored under key with OTel tracing
func (r *RedisKeyValueStore) Get(ctx context.Context, key string) ([]byte, error) {
	tracer := otel.Tracer("redis")
	ctx, span := tracer.Start(ctx, "redis.Get",
		trace.WithAttributes(attribute.String("kv.key", key)),
	)
	defer span.End()

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			span.SetAttributes(attribute.String("kv.result", "miss"))
			return nil, domain.ErrKeyNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("%w: redis get: %v", domain.ErrStorageUnavailable, err)
	}

	span.SetAttributes(attribute.String("kv.result", "hit"))
	return data, nil
}

// Set stores a value with TTL and OTel tracing. A zero ttl keeps the key forever.
func (r *RedisKeyValueStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	tracer := otel.Tracer("redis")
	ctx, span := tracer.Start(ctx, "redis.Set",
		trace.WithAttributes(
			attribute.String("kv.key", key),
			attribute.Int("kv.size_bytes", len(value)),
			attribute.Int64("kv.ttl_seconds", int64(ttl.Seconds())),
		),
	)
	defer span.End()

	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("%w: redis set: %v", domain.ErrStorageUnavailable, err)
	}

	return nil
}

// SetNX stores the value only when the key does not exist yet
func (r *RedisKeyValueStore) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	tracer := otel.Tracer("redis")
	ctx, span := tracer.Start(ctx, "redis.SetNX",
		trace.WithAttributes(attribute.String("kv.key", key)),
	)
	defer span.End()

	ok, err := r.client.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("%w: redis setnx: %v", domain.ErrStorageUnavailable, err)
	}
	span.SetAttributes(attribute.Bool("kv.stored", ok))
	return ok, nil
}

// Delete removes keys with OTel tracing
func (r *RedisKeyValueStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	tracer := otel.Tracer("redis")
	ctx, span := tracer.Start(ctx, "redis.Delete",
		trace.WithAttributes(attribute.Int("kv.key_count", len(keys))),
	)
	defer span.End()

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("%w: redis delete: %v", domain.ErrStorageUnavailable, err)
	}

	return nil
}

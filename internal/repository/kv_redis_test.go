package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/mansoorceksport/fitlog/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T) (*RedisKeyValueStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisKeyValueStore(client), mr
}

func TestRedisKeyValueStore_GetSetDelete(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrKeyNotFound)

	require.NoError(t, store.Set(ctx, "k1", []byte(`[1,2]`), 0))
	require.NoError(t, store.Set(ctx, "k2", []byte(`"x"`), 0))

	got, err := store.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, `[1,2]`, string(got))

	require.NoError(t, store.Delete(ctx, "k1", "k2"))
	_, err = store.Get(ctx, "k2")
	assert.ErrorIs(t, err, domain.ErrKeyNotFound)

	assert.NoError(t, store.Delete(ctx))
}

func TestRedisKeyValueStore_TTL(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "idempotency:abc", []byte("ok"), time.Minute))
	mr.FastForward(2 * time.Minute)

	_, err := store.Get(ctx, "idempotency:abc")
	assert.ErrorIs(t, err, domain.ErrKeyNotFound)
}

func TestRedisKeyValueStore_SetNX(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	ok, err := store.SetNX(ctx, "fitlog:users:email:a@b.c", []byte("u1"), 0)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.SetNX(ctx, "fitlog:users:email:a@b.c", []byte("u2"), 0)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := store.Get(ctx, "fitlog:users:email:a@b.c")
	require.NoError(t, err)
	assert.Equal(t, "u1", string(got))

	mr.Close()
	_, err = store.SetNX(ctx, "k", []byte("v"), 0)
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
}

func TestRedisKeyValueStore_Unavailable(t *testing.T) {
	store, mr := newTestRedisStore(t)
	mr.Close()

	_, err := store.Get(context.Background(), "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrKeyNotFound)
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)

	assert.ErrorIs(t, store.Set(context.Background(), "k", []byte("v"), 0), domain.ErrStorageUnavailable)
}

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/mansoorceksport/fitlog/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// setupTestDB spins up a fresh MongoDB container. Skipped when Docker is unavailable.
func setupTestDB(t *testing.T) *mongo.Database {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping MongoDB container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	endpoint, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(endpoint))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(ctx) })

	return client.Database("fitlog_test")
}

func TestMongoKeyValueStore(t *testing.T) {
	db := setupTestDB(t)
	store := NewMongoKeyValueStore(db)
	ctx := context.Background()

	_, err := store.Get(ctx, WorkoutsKey("u1"))
	assert.ErrorIs(t, err, domain.ErrKeyNotFound)

	require.NoError(t, store.Set(ctx, WorkoutsKey("u1"), []byte(`[]`), 0))
	require.NoError(t, store.Set(ctx, WorkoutsKey("u1"), []byte(`[{"id":"a"}]`), 0))

	got, err := store.Get(ctx, WorkoutsKey("u1"))
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"a"}]`, string(got))

	t.Run("expired keys read as missing", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "idempotency:x", []byte("{}"), time.Minute))
		store.now = func() time.Time { return time.Now().Add(time.Hour) }
		defer func() { store.now = time.Now }()

		_, err := store.Get(ctx, "idempotency:x")
		assert.ErrorIs(t, err, domain.ErrKeyNotFound)
	})

	t.Run("setnx claims a key once", func(t *testing.T) {
		ok, err := store.SetNX(ctx, "fitlog:users:email:a@b.c", []byte("u1"), 0)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = store.SetNX(ctx, "fitlog:users:email:a@b.c", []byte("u2"), 0)
		require.NoError(t, err)
		assert.False(t, ok)

		got, err := store.Get(ctx, "fitlog:users:email:a@b.c")
		require.NoError(t, err)
		assert.Equal(t, "u1", string(got))
	})

	t.Run("setnx replaces an expired key", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "idempotency:y", []byte("old"), time.Minute))
		store.now = func() time.Time { return time.Now().Add(time.Hour) }
		defer func() { store.now = time.Now }()

		ok, err := store.SetNX(ctx, "idempotency:y", []byte("new"), 0)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	require.NoError(t, store.Delete(ctx, WorkoutsKey("u1")))
	_, err = store.Get(ctx, WorkoutsKey("u1"))
	assert.ErrorIs(t, err, domain.ErrKeyNotFound)
}

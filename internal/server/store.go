package server

import (
	"context"
	"fmt"
	"time"

	"github.com/mansoorceksport/fitlog/internal/config"
	"github.com/mansoorceksport/fitlog/internal/domain"
	"github.com/mansoorceksport/fitlog/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"
)

// OpenStore connects the key-value backend selected by STORE_BACKEND. The
// returned close func releases the connection.
func OpenStore(ctx context.Context, cfg *config.Config) (domain.KeyValueStore, func(), error) {
	switch cfg.Store.Backend {
	case config.BackendMongo:
		return openMongoStore(ctx, cfg)
	default:
		return openRedisStore(ctx, cfg)
	}
}

func openRedisStore(ctx context.Context, cfg *config.Config) (domain.KeyValueStore, func(), error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	logrus.WithField("addr", cfg.Redis.Addr).Info("Redis connected")

	closeFn := func() {
		if err := client.Close(); err != nil {
			logrus.WithError(err).Error("error closing Redis client")
		}
	}
	return repository.NewRedisKeyValueStore(client), closeFn, nil
}

func openMongoStore(ctx context.Context, cfg *config.Config) (domain.KeyValueStore, func(), error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	mongoOpts := options.Client().ApplyURI(cfg.MongoDB.URI)
	if cfg.OTEL.Enabled {
		mongoOpts.SetMonitor(otelmongo.NewMonitor())
	}

	client, err := mongo.Connect(connectCtx, mongoOpts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	logrus.WithField("database", cfg.MongoDB.Database).Info("MongoDB connected")

	closeFn := func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logrus.WithError(err).Error("error disconnecting from MongoDB")
		}
	}
	return repository.NewMongoKeyValueStore(client.Database(cfg.MongoDB.Database)), closeFn, nil
}

// OpenFiles returns the export bucket, or nil when object storage is not configured
func OpenFiles(ctx context.Context, cfg *config.Config) domain.FileRepository {
	if !cfg.S3.Enabled() {
		logrus.Info("S3 not configured, export publishing disabled")
		return nil
	}
	files, err := repository.NewS3FileRepository(ctx, cfg.S3)
	if err != nil {
		logrus.WithError(err).Warn("failed to initialize S3, export publishing disabled")
		return nil
	}
	return files
}

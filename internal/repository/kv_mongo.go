package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mansoorceksport/fitlog/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type kvDocument struct {
	Key       string     `bson:"_id"`
	Value     []byte     `bson:"value"`
	UpdatedAt time.Time  `bson:"updated_at"`
	ExpiresAt *time.Time `bson:"expires_at,omitempty"`
}

// MongoKeyValueStore implements domain.KeyValueStore with one document per key
type MongoKeyValueStore struct {
	collection *mongo.Collection
	now        func() time.Time
}

func NewMongoKeyValueStore(db *mongo.Database) *MongoKeyValueStore {
	coll := db.Collection("kv")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// TTL monitor reaps expired documents lazily, so Get also checks expires_at
	_, _ = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})

	return &MongoKeyValueStore{
		collection: coll,
		now:        time.Now,
	}
}

func (r *MongoKeyValueStore) Get(ctx context.Context, key string) ([]byte, error) {
	var doc kvDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrKeyNotFound
		}
		return nil, fmt.Errorf("%w: failed to get key %s: %v", domain.ErrStorageUnavailable, key, err)
	}

	if doc.ExpiresAt != nil && !doc.ExpiresAt.After(r.now()) {
		return nil, domain.ErrKeyNotFound
	}
	return doc.Value, nil
}

func (r *MongoKeyValueStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	now := r.now()
	doc := kvDocument{
		Key:       key,
		Value:     value,
		UpdatedAt: now,
	}
	if ttl > 0 {
		expiresAt := now.Add(ttl)
		doc.ExpiresAt = &expiresAt
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, bson.M{"_id": key}, doc, opts); err != nil {
		return fmt.Errorf("%w: failed to set key %s: %v", domain.ErrStorageUnavailable, key, err)
	}
	return nil
}

// SetNX inserts the document only when no live document has the key. An
// expired leftover is cleared first; a concurrent insert loses on the _id index.
func (r *MongoKeyValueStore) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	now := r.now()
	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": key, "expires_at": bson.M{"$lte": now}}); err != nil {
		return false, fmt.Errorf("%w: failed to clear expired key %s: %v", domain.ErrStorageUnavailable, key, err)
	}

	onInsert := bson.M{"value": value, "updated_at": now}
	if ttl > 0 {
		onInsert["expires_at"] = now.Add(ttl)
	}
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": key},
		bson.M{"$setOnInsert": onInsert},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, fmt.Errorf("%w: failed to setnx key %s: %v", domain.ErrStorageUnavailable, key, err)
	}
	return res.UpsertedCount == 1, nil
}

func (r *MongoKeyValueStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if _, err := r.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": keys}}); err != nil {
		return fmt.Errorf("%w: failed to delete keys: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}

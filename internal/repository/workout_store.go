package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/mansoorceksport/fitlog/internal/domain"
)

const (
	workoutsKeyPrefix  = "fitlog:workouts:"
	templatesKeyPrefix = "fitlog:templates:"
)

// WorkoutsKey is where a user's workout collection lives
func WorkoutsKey(userID string) string {
	return workoutsKeyPrefix + userID
}

// TemplatesKey is where a user's template collection lives
func TemplatesKey(userID string) string {
	return templatesKeyPrefix + userID
}

// KVWorkoutStore implements domain.WorkoutStore on top of a key-value store,
// one JSON array per user and collection
type KVWorkoutStore struct {
	kv domain.KeyValueStore
}

func NewKVWorkoutStore(kv domain.KeyValueStore) *KVWorkoutStore {
	return &KVWorkoutStore{kv: kv}
}

func (s *KVWorkoutStore) LoadWorkouts(ctx context.Context, userID string) ([]*domain.WorkoutRecord, error) {
	return s.load(ctx, WorkoutsKey(userID), userID, false)
}

func (s *KVWorkoutStore) SaveWorkouts(ctx context.Context, userID string, workouts []*domain.WorkoutRecord) error {
	return s.save(ctx, WorkoutsKey(userID), workouts)
}

func (s *KVWorkoutStore) LoadTemplates(ctx context.Context, userID string) ([]*domain.WorkoutRecord, error) {
	return s.load(ctx, TemplatesKey(userID), userID, true)
}

func (s *KVWorkoutStore) SaveTemplates(ctx context.Context, userID string, templates []*domain.WorkoutRecord) error {
	return s.save(ctx, TemplatesKey(userID), templates)
}

func (s *KVWorkoutStore) load(ctx context.Context, key, userID string, templates bool) ([]*domain.WorkoutRecord, error) {
	data, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrKeyNotFound) {
			return []*domain.WorkoutRecord{}, nil
		}
		return nil, fmt.Errorf("failed to load %s: %w", key, err)
	}
	return decodeWorkouts(data, userID, templates), nil
}

func (s *KVWorkoutStore) save(ctx context.Context, key string, records []*domain.WorkoutRecord) error {
	data, err := encodeWorkouts(records)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, key, data, 0); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

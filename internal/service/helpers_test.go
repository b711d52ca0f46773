package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mansoorceksport/fitlog/internal/domain"
)

var errStoreDown = errors.New("store down")

// memoryWorkoutStore is an in-memory domain.WorkoutStore that can be told to fail writes
type memoryWorkoutStore struct {
	mu        sync.Mutex
	workouts  map[string][]*domain.WorkoutRecord
	templates map[string][]*domain.WorkoutRecord
	failSaves bool
	saves     int
}

func newMemoryWorkoutStore() *memoryWorkoutStore {
	return &memoryWorkoutStore{
		workouts:  make(map[string][]*domain.WorkoutRecord),
		templates: make(map[string][]*domain.WorkoutRecord),
	}
}

func (m *memoryWorkoutStore) LoadWorkouts(ctx context.Context, userID string) ([]*domain.WorkoutRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneAll(m.workouts[userID]), nil
}

func (m *memoryWorkoutStore) SaveWorkouts(ctx context.Context, userID string, workouts []*domain.WorkoutRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSaves {
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, errStoreDown)
	}
	m.saves++
	m.workouts[userID] = cloneAll(workouts)
	return nil
}

func (m *memoryWorkoutStore) LoadTemplates(ctx context.Context, userID string) ([]*domain.WorkoutRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneAll(m.templates[userID]), nil
}

func (m *memoryWorkoutStore) SaveTemplates(ctx context.Context, userID string, templates []*domain.WorkoutRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSaves {
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, errStoreDown)
	}
	m.saves++
	m.templates[userID] = cloneAll(templates)
	return nil
}

func (m *memoryWorkoutStore) setFailSaves(fail bool) {
	m.mu.Lock()
	m.failSaves = fail
	m.mu.Unlock()
}

func (m *memoryWorkoutStore) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// fixedClock returns a clock that advances one minute per call
func fixedClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	t := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now := t
		t = t.Add(time.Minute)
		return now
	}
}

func workoutAt(id string, at time.Time, exercises ...domain.ExerciseEntry) *domain.WorkoutRecord {
	return &domain.WorkoutRecord{
		ID:        id,
		UserID:    "u1",
		Name:      "Workout " + id,
		Timestamp: at,
		CreatedAt: at,
		Exercises: exercises,
	}
}

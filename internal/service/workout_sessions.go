package service

import (
	"context"
	"sync"
	"time"

	"github.com/mansoorceksport/fitlog/internal/domain"
	"github.com/sirupsen/logrus"
)

// WorkoutSessions keeps exactly one WorkoutRepository per user for the life of
// the process. Login reloads it from storage, logout releases its collections,
// and requests still holding it keep writing through the same instance.
type WorkoutSessions struct {
	mu    sync.Mutex
	store domain.WorkoutStore
	loc   *time.Location
	repos map[string]*WorkoutRepository
}

func NewWorkoutSessions(store domain.WorkoutStore, loc *time.Location) *WorkoutSessions {
	return &WorkoutSessions{
		store: store,
		loc:   loc,
		repos: make(map[string]*WorkoutRepository),
	}
}

// Open reloads the user's collections from storage, creating the repository on
// first use
func (s *WorkoutSessions) Open(ctx context.Context, userID string) (*WorkoutRepository, error) {
	repo, created, err := s.repository(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !created {
		if err := repo.Reload(ctx); err != nil {
			return nil, err
		}
	}

	logrus.WithField("user_id", userID).Info("workout session opened")
	return repo, nil
}

// For returns the user's repository, loading it when it was never opened or
// has been released
func (s *WorkoutSessions) For(ctx context.Context, userID string) (*WorkoutRepository, error) {
	repo, created, err := s.repository(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !created && !repo.Loaded() {
		if err := repo.Reload(ctx); err != nil {
			return nil, err
		}
	}
	return repo, nil
}

// repository returns the user's single repository. created reports that it was
// just loaded from storage.
func (s *WorkoutSessions) repository(ctx context.Context, userID string) (*WorkoutRepository, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if repo, ok := s.repos[userID]; ok {
		return repo, false, nil
	}
	repo, err := OpenWorkoutRepository(ctx, s.store, userID, s.loc)
	if err != nil {
		return nil, false, err
	}
	s.repos[userID] = repo
	return repo, true, nil
}

// Close releases the user's in-memory collections. Stored data is untouched.
func (s *WorkoutSessions) Close(userID string) {
	s.mu.Lock()
	repo, ok := s.repos[userID]
	s.mu.Unlock()
	if ok {
		repo.release()
	}

	logrus.WithField("user_id", userID).Info("workout session closed")
}

// Len reports how many users have their collections loaded
func (s *WorkoutSessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, repo := range s.repos {
		if repo.Loaded() {
			n++
		}
	}
	return n
}
